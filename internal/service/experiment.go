package service

import (
	"context"
	"time"

	"github.com/liveops-hq/backend/internal/model"
	modelcache "github.com/liveops-hq/backend/internal/model/cache"
	"github.com/liveops-hq/backend/internal/pkg/cache"
	"github.com/liveops-hq/backend/internal/repo"
)

// ExperimentStore loads experiment definitions from the database.
type ExperimentStore interface {
	GetExperimentByID(ctx context.Context, experimentID string) (*model.Experiment, error)
	GetStartedExperiments(ctx context.Context) ([]*model.Experiment, error)
}

type Experiment struct {
	ExperimentRepo ExperimentStore

	started *cache.Singular[[]*model.Experiment]
}

func NewExperiment(experimentRepo *repo.Experiment) *Experiment {
	return newExperiment(experimentRepo)
}

func newExperiment(experimentRepo ExperimentStore) *Experiment {
	return &Experiment{
		ExperimentRepo: experimentRepo,
		started:        cache.NewSingular[[]*model.Experiment]("startedExperiments"),
	}
}

// Cache: experiment#experimentId; TTL: 10 mins
func (s *Experiment) GetExperimentByID(ctx context.Context, experimentID string) (*model.Experiment, error) {
	var experiment model.Experiment
	_, err := modelcache.ExperimentByID.MutexGetSet(experimentID, &experiment, func() (model.Experiment, error) {
		e, err := s.ExperimentRepo.GetExperimentByID(ctx, experimentID)
		if err != nil {
			return model.Experiment{}, err
		}
		return *e, nil
	}, time.Minute*10)
	if err != nil {
		return nil, err
	}
	return &experiment, nil
}

// Cache: (in-process) startedExperiments; TTL: 1 min
func (s *Experiment) GetStartedExperiments(ctx context.Context) ([]*model.Experiment, error) {
	var experiments []*model.Experiment
	err := s.started.MutexGetSet(&experiments, func() ([]*model.Experiment, error) {
		return s.ExperimentRepo.GetStartedExperiments(ctx)
	}, time.Minute)
	if err != nil {
		return nil, err
	}
	return experiments, nil
}
