package server

import (
	"github.com/urfave/cli/v2"

	"github.com/liveops-hq/backend/internal/app"
	"github.com/liveops-hq/backend/internal/app/appcontext"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:  "start",
		Usage: "start server",
		Action: func(c *cli.Context) error {
			app.New(appcontext.Declare(appcontext.EnvServer)).Run()
			return nil
		},
	}
}
