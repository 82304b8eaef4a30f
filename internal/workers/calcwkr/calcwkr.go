// Package calcwkr periodically recomputes the annotated series of every
// started experiment so interactive requests hit warm result caches. A
// redsync mutex elects one worker across instances per batch.
package calcwkr

import (
	"context"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"github.com/liveops-hq/backend/internal/app/appconfig"
	"github.com/liveops-hq/backend/internal/model"
	"github.com/liveops-hq/backend/internal/model/types"
	"github.com/liveops-hq/backend/internal/pkg/observability"
	"github.com/liveops-hq/backend/internal/service"
)

const mutexName = "mutex:calcwkr"

type Deps struct {
	fx.In

	Conf              *appconfig.Config
	Redsync           *redsync.Redsync
	AnalyticsService  *service.Analytics
	ExperimentService *service.Experiment
}

type worker struct {
	interval   time.Duration
	separation time.Duration
	timeout    time.Duration

	rs          *redsync.Redsync
	analytics   *service.Analytics
	experiments *service.Experiment
}

func Start(deps Deps) {
	if !deps.Conf.WorkerEnabled {
		log.Info().Msg("calcwkr: worker is disabled")
		return
	}
	(&worker{
		interval:    deps.Conf.WorkerInterval,
		separation:  deps.Conf.WorkerSeparation,
		timeout:     deps.Conf.WorkerTimeout,
		rs:          deps.Redsync,
		analytics:   deps.AnalyticsService,
		experiments: deps.ExperimentService,
	}).do(context.Background())
}

func (w *worker) do(ctx context.Context) {
	logger := log.With().Str("service", "worker:calc").Logger()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.interval):
			}

			mutex := w.rs.NewMutex(mutexName, redsync.WithExpiry(w.timeout))
			if err := mutex.Lock(); err != nil {
				logger.Debug().Err(err).Msg("another instance holds the batch lock, skipping")
				continue
			}

			w.batch(ctx, &logger)

			if _, err := mutex.Unlock(); err != nil {
				logger.Warn().Err(err).Msg("failed to release the batch lock")
			}
		}
	}()
}

func (w *worker) batch(ctx context.Context, logger *zerolog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	experiments, err := w.experiments.GetStartedExperiments(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list experiments")
		return
	}
	logger.Info().Int("count", len(experiments)).Msg("starting precompute batch")

	for _, experiment := range experiments {
		if ctx.Err() != nil {
			logger.Warn().Msg("batch timed out, stopping early")
			return
		}
		w.precompute(ctx, logger, experiment)

		// separation keeps the store from seeing a thundering herd of
		// aggregation queries
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.separation):
		}
	}
}

func (w *worker) precompute(ctx context.Context, logger *zerolog.Logger, experiment *model.Experiment) {
	start := time.Now()

	for _, observed := range experiment.Metrics {
		_, err := w.analytics.GetExperimentSeries(ctx, &types.ExperimentSeriesRequest{
			ExperimentID: experiment.ExperimentID,
			Metric:       observed.Metric,
			CupedMetric:  observed.CupedMetric,
			CupedEnabled: observed.CupedEnabled,
			CupedRange:   observed.CupedDateRange,
		})
		if err != nil {
			observability.CalcFailures.WithLabelValues(experiment.ExperimentID).Inc()
			logger.Error().Err(err).Str("experimentId", experiment.ExperimentID).Msg("failed to precompute series")
			return
		}
	}
	if _, err := w.analytics.GetSampleSizes(ctx, experiment.ExperimentID); err != nil {
		observability.CalcFailures.WithLabelValues(experiment.ExperimentID).Inc()
		logger.Error().Err(err).Str("experimentId", experiment.ExperimentID).Msg("failed to precompute sample sizes")
		return
	}

	observability.CalcDuration.WithLabelValues(experiment.ExperimentID).Observe(time.Since(start).Seconds())
}
