package server

import (
	"go.uber.org/fx"

	"github.com/liveops-hq/backend/internal/server/svr"
)

func Module() fx.Option {
	return fx.Module("server", fx.Provide(
		svr.Create,
		svr.CreateEndpointGroups,
	), fx.Invoke(svr.Serve))
}
