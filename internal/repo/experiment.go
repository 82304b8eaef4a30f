package repo

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/liveops-hq/backend/internal/model"
	"github.com/liveops-hq/backend/internal/pkg/apperr"
)

type Experiment struct {
	db *bun.DB
}

func NewExperiment(db *bun.DB) *Experiment {
	return &Experiment{db: db}
}

func (r *Experiment) GetExperimentByID(ctx context.Context, experimentID string) (*model.Experiment, error) {
	var experiment model.Experiment
	err := r.db.NewSelect().
		Model(&experiment).
		Where("ex.experiment_id = ?", experimentID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get experiment")
	}
	return &experiment, nil
}

// GetStartedExperiments lists experiments whose start date has been set, i.e.
// the ones the precompute worker has anything to calculate for.
func (r *Experiment) GetStartedExperiments(ctx context.Context) ([]*model.Experiment, error) {
	var experiments []*model.Experiment
	err := r.db.NewSelect().
		Model(&experiments).
		Where("ex.start_date IS NOT NULL").
		Order("ex.start_date DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list started experiments")
	}
	return experiments, nil
}
