package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"github.com/liveops-hq/backend/internal/pkg/flog"
)

func RequestID() fiber.Handler {
	return flog.RequestIDHandler("requestId", fiber.HeaderXRequestID)
}
