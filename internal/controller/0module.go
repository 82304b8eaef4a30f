package controller

import (
	"go.uber.org/fx"

	v1 "github.com/liveops-hq/backend/internal/controller/v1"
)

func Module() fx.Option {
	return fx.Module("controller", fx.Invoke(
		v1.RegisterIndex,
		v1.RegisterAnalytics,
		v1.RegisterExperiment,
	))
}
