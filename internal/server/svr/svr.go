// Package svr owns the HTTP listeners and the versioned route groups
// controllers register themselves on.
package svr

import (
	"context"
	"net/http"
	"time"

	"github.com/felixge/fgprof"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"github.com/liveops-hq/backend/internal/app/appconfig"
	"github.com/liveops-hq/backend/internal/server/httpserver"
)

type Svr struct {
	App *fiber.App
}

type V1 struct {
	fiber.Router
}

func Create(conf *appconfig.Config) *Svr {
	return &Svr{App: httpserver.Create(conf)}
}

func CreateEndpointGroups(s *Svr) *V1 {
	return &V1{s.App.Group("/api/v1")}
}

// Serve binds the listeners to the fx lifecycle: the service listener, and
// the intra-cluster devops listener with fgprof when configured.
func Serve(lc fx.Lifecycle, conf *appconfig.Config, s *Svr) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := s.App.Listen(conf.ServiceAddress); err != nil {
					log.Error().Err(err).Msg("server: failed to listen")
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			return s.App.ShutdownWithTimeout(conf.HTTPServerShutdownTimeout)
		},
	})

	if conf.DevOpsAddress == "" {
		return
	}

	// fgprof ships a net/http handler, so the devops listener stays a plain
	// http server.
	mux := http.NewServeMux()
	mux.Handle("/debug/fgprof", fgprof.Handler())
	devops := &http.Server{
		Addr:              conf.DevOpsAddress,
		Handler:           mux,
		ReadHeaderTimeout: time.Second * 10,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := devops.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error().Err(err).Msg("server: devops listener failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return devops.Shutdown(ctx)
		},
	})
}
