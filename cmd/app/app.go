package app

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/liveops-hq/backend/cmd/app/server"
	"github.com/liveops-hq/backend/internal/pkg/bininfo"
)

func Run() {
	app := &cli.App{
		Name:        "liveopsbackend",
		Description: "The liveops analytics backend: turns raw event-store data into continuously-updated experiment verdicts. Built with Go, fiber, bun and go.uber.org/fx. Uses NATS as MQ and Redis as state synchronization.",
		Version:     bininfo.Version,
		Commands: []*cli.Command{
			server.Command(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run app")
	}
}
