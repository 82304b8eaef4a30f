package daybucket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/liveops-hq/backend/internal/model"
)

func TestNormalize(t *testing.T) {
	r := Normalize(model.DateRange{
		Start: time.Date(2026, 3, 10, 13, 45, 12, 0, time.UTC),
		End:   time.Date(2026, 3, 14, 1, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), r.End)

	// already on day boundaries: unchanged
	exact := model.DateRange{
		Start: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, exact, Normalize(exact))

	// deterministic
	assert.Equal(t, Normalize(exact), Normalize(exact))
}

func TestExperimentRange(t *testing.T) {
	start := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	now := time.Date(2026, 2, 20, 16, 0, 0, 0, time.UTC)

	r := ExperimentRange(start, nil, now)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2026, 2, 21, 0, 0, 0, 0, time.UTC), r.End)

	requested := &model.DateRange{
		Start: time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, *requested, ExperimentRange(start, requested, now))
}

func TestCupedRange(t *testing.T) {
	start := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)

	r := CupedRange(start, nil)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), r.End)

	configured := &model.DateRange{
		Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, *configured, CupedRange(start, configured))
}
