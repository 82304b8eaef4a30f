package httpserver

import (
	"github.com/gofiber/contrib/fibersentry"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/liveops-hq/backend/internal/pkg/apperr"
	"github.com/liveops-hq/backend/internal/pkg/flog"
)

// ErrorHandler renders every error as the apperr JSON shape. Unknown errors
// become an opaque internal error and go to sentry.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var appError *apperr.AppError
	if errors.As(err, &appError) {
		body := fiber.Map{
			"code":    appError.ErrorCode,
			"message": appError.Message,
		}
		if appError.Extras != nil {
			for k, v := range *appError.Extras {
				body[k] = v
			}
		}
		return ctx.Status(appError.StatusCode).JSON(body)
	}

	var fiberError *fiber.Error
	if errors.As(err, &fiberError) {
		return ctx.Status(fiberError.Code).JSON(fiber.Map{
			"code":    apperr.CodeInvalidRequest,
			"message": fiberError.Message,
		})
	}

	flog.FromFiberCtx(ctx).Error().Err(err).Msg("unexpected error while handling request")
	if hub := fibersentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
	}

	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"code":    apperr.CodeInternalError,
		"message": apperr.ErrInternalError.Message,
	})
}
