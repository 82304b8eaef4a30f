package v1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/copier"
	"go.uber.org/fx"

	"github.com/liveops-hq/backend/internal/model/types"
	modelv1 "github.com/liveops-hq/backend/internal/model/v1"
	"github.com/liveops-hq/backend/internal/pkg/apperr"
	"github.com/liveops-hq/backend/internal/server/svr"
	"github.com/liveops-hq/backend/internal/service"
	"github.com/liveops-hq/backend/internal/util/rekuest"
)

type AnalyticsController struct {
	fx.In

	AnalyticsService *service.Analytics
}

func RegisterAnalytics(v1 *svr.V1, c AnalyticsController) {
	group := v1.Group("/analytics")
	group.Post("/experiments/series", c.GetExperimentSeries)
	group.Get("/experiments/:experimentId/samplesizes", c.GetSampleSizes)
	group.Post("/metrics/series", c.QueryMetricSeries)
}

func (c *AnalyticsController) GetExperimentSeries(ctx *fiber.Ctx) error {
	var req types.ExperimentSeriesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperr.ErrInvalidReq
	}
	if err := rekuest.Validate(&req); err != nil {
		return err
	}

	rows, err := c.AnalyticsService.GetExperimentSeries(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	sizes, err := c.AnalyticsService.GetSampleSizes(ctx.UserContext(), req.ExperimentID)
	if err != nil {
		return err
	}

	resp := modelv1.ExperimentSeries{
		ExperimentID: req.ExperimentID,
		SampleSizes: modelv1.SampleSizes{
			Control: sizes.Control,
			Test:    sizes.Test,
		},
		Rows: make([]modelv1.AnnotatedRow, 0, len(rows)),
	}
	if err := copier.Copy(&resp.Rows, &rows); err != nil {
		return err
	}
	return ctx.JSON(resp)
}

func (c *AnalyticsController) GetSampleSizes(ctx *fiber.Ctx) error {
	experimentID := ctx.Params("experimentId")
	if experimentID == "" {
		return apperr.ErrInvalidReq
	}

	sizes, err := c.AnalyticsService.GetSampleSizes(ctx.UserContext(), experimentID)
	if err != nil {
		return err
	}
	return ctx.JSON(modelv1.SampleSizes{
		Control: sizes.Control,
		Test:    sizes.Test,
	})
}

func (c *AnalyticsController) QueryMetricSeries(ctx *fiber.Ctx) error {
	var req types.MetricSeriesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperr.ErrInvalidReq
	}
	if err := rekuest.Validate(&req); err != nil {
		return err
	}

	points, categories, err := c.AnalyticsService.QueryMetricSeries(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	var resp modelv1.MetricSeries
	if err := copier.Copy(&resp.Points, &points); err != nil {
		return err
	}
	if err := copier.Copy(&resp.Categories, &categories); err != nil {
		return err
	}
	return ctx.JSON(resp)
}
