package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/liveops-hq/backend/internal/pkg/flog"
)

// Logger is the request logging chain: inject a request-scoped logger, tag it
// with the request attributes and emit one access line per request.
func Logger() []fiber.Handler {
	return []fiber.Handler{
		flog.NewHandlerMiddleware(log.Logger),
		flog.AccessHandler(func(ctx *fiber.Ctx, duration time.Duration) {
			flog.FromFiberCtx(ctx).
				Info().
				Int("status", ctx.Response().StatusCode()).
				Dur("duration", duration).
				Msg("request handled")
		}),
		flog.RemoteAddrHandler("ip"),
		flog.UserAgentHandler("userAgent"),
		flog.MethodHandler("method"),
		flog.URLHandler("url"),
	}
}
