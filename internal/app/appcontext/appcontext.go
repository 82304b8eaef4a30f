package appcontext

type Env string

const (
	// EnvServer is the environment in which the app serves public traffic.
	EnvServer Env = "server"

	// EnvCLI is the environment in which the app runs one-off CLI tasks.
	EnvCLI Env = "cli"
)

type Ctx struct {
	Env Env
}

func Declare(env Env) Ctx {
	return Ctx{
		Env: env,
	}
}
