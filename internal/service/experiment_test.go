package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"github.com/liveops-hq/backend/internal/model"
)

type fakeExperimentStore struct {
	experiments  []*model.Experiment
	startedCalls int
}

func (f *fakeExperimentStore) GetExperimentByID(ctx context.Context, experimentID string) (*model.Experiment, error) {
	for _, e := range f.experiments {
		if e.ExperimentID == experimentID {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeExperimentStore) GetStartedExperiments(ctx context.Context) ([]*model.Experiment, error) {
	f.startedCalls++
	return f.experiments, nil
}

func TestGetStartedExperimentsCachesInProcess(t *testing.T) {
	store := &fakeExperimentStore{
		experiments: []*model.Experiment{
			{ExperimentID: "e1", GameID: "g1", StartDate: null.TimeFrom(testDay(2024, 3, 1))},
		},
	}
	s := newExperiment(store)
	ctx := context.Background()

	first, err := s.GetStartedExperiments(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "e1", first[0].ExperimentID)

	second, err := s.GetStartedExperiments(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// the second read is served from the in-process cache
	assert.Equal(t, 1, store.startedCalls)
}
