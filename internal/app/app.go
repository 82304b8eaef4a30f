package app

import (
	"go.uber.org/fx"

	"github.com/liveops-hq/backend/internal/app/appconfig"
	"github.com/liveops-hq/backend/internal/app/appcontext"
	"github.com/liveops-hq/backend/internal/controller"
	"github.com/liveops-hq/backend/internal/infra"
	modelcache "github.com/liveops-hq/backend/internal/model/cache"
	"github.com/liveops-hq/backend/internal/pkg/logger"
	"github.com/liveops-hq/backend/internal/repo"
	"github.com/liveops-hq/backend/internal/server"
	"github.com/liveops-hq/backend/internal/service"
	"github.com/liveops-hq/backend/internal/workers/calcwkr"
	"github.com/liveops-hq/backend/internal/workers/eventwkr"
)

func New(ctx appcontext.Ctx, additionalOpts ...fx.Option) *fx.App {
	conf, err := appconfig.Parse(ctx)
	if err != nil {
		panic(err)
	}

	logger.Configure(conf)

	modelcache.Initialize()

	baseOpts := []fx.Option{
		fx.Supply(conf),
		fx.WithLogger(logger.Fx),
		infra.Module(),
		repo.Module(),
		service.Module(),
		server.Module(),
		controller.Module(),
		fx.Invoke(eventwkr.Start),
		fx.Invoke(calcwkr.Start),
	}

	return fx.New(append(baseOpts, additionalOpts...)...)
}
