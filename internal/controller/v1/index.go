package v1

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"

	"github.com/liveops-hq/backend/internal/pkg/bininfo"
	"github.com/liveops-hq/backend/internal/server/svr"
	"github.com/liveops-hq/backend/internal/service"
)

type IndexController struct {
	fx.In

	HealthService *service.Health
}

func RegisterIndex(s *svr.Svr, c IndexController) {
	s.App.Get("/", c.Index)
	s.App.Get("/health", c.Health)
}

func (c *IndexController) Index(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"version":   bininfo.Version,
		"buildTime": bininfo.BuildTime,
	})
}

func (c *IndexController) Health(ctx *fiber.Ctx) error {
	if err := c.HealthService.Ping(ctx.UserContext()); err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}
	return ctx.SendStatus(fiber.StatusOK)
}
