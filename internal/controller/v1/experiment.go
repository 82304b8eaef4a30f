package v1

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"

	"github.com/liveops-hq/backend/internal/pkg/apperr"
	"github.com/liveops-hq/backend/internal/server/svr"
	"github.com/liveops-hq/backend/internal/service"
)

type ExperimentController struct {
	fx.In

	ExperimentService *service.Experiment
}

func RegisterExperiment(v1 *svr.V1, c ExperimentController) {
	group := v1.Group("/experiments")
	group.Get("/:experimentId", c.GetExperiment)
}

func (c *ExperimentController) GetExperiment(ctx *fiber.Ctx) error {
	experimentID := ctx.Params("experimentId")
	if experimentID == "" {
		return apperr.ErrInvalidReq
	}

	experiment, err := c.ExperimentService.GetExperimentByID(ctx.UserContext(), experimentID)
	if err != nil {
		return err
	}
	return ctx.JSON(experiment)
}
