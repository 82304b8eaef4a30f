package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/liveops-hq/backend/internal/model"
)

func bucketRow(day int, control, test float64) model.AdjustedRow {
	return model.AdjustedRow{
		TimeBucketRow: model.TimeBucketRow{
			Bucket:  time.Date(2026, 5, day, 0, 0, 0, 0, time.UTC),
			Control: control,
			Test:    test,
		},
	}
}

func TestCumulativeFold(t *testing.T) {
	// deliberately unordered input
	rows := []model.AdjustedRow{
		bucketRow(3, 30, 3),
		bucketRow(1, 10, 1),
		bucketRow(2, 20, 2),
	}

	out := CumulativeFold(rows)
	assert.Len(t, out, 3)

	// sorted ascending, prefix sums accumulate in time order
	assert.Equal(t, 1, out[0].Bucket.Day())
	assert.Equal(t, 10.0, out[0].CumulativeControl)
	assert.Equal(t, 30.0, out[1].CumulativeControl)
	assert.Equal(t, 60.0, out[2].CumulativeControl)
	assert.Equal(t, 6.0, out[2].CumulativeTest)

	// daily values kept alongside
	assert.Equal(t, 20.0, out[1].Control)

	// non-decreasing for non-negative inputs
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i].CumulativeControl, out[i-1].CumulativeControl)
		assert.GreaterOrEqual(t, out[i].CumulativeTest, out[i-1].CumulativeTest)
	}

	// input slice untouched
	assert.Equal(t, 3, rows[0].Bucket.Day())
}

func TestCumulativeFoldEmpty(t *testing.T) {
	assert.Empty(t, CumulativeFold(nil))
	assert.Empty(t, CumulativeFold([]model.AdjustedRow{}))
}

func TestSortSeriesDesc(t *testing.T) {
	out := CumulativeFold([]model.AdjustedRow{
		bucketRow(1, 1, 1),
		bucketRow(3, 3, 3),
		bucketRow(2, 2, 2),
	})
	SortSeriesDesc(out)
	assert.Equal(t, 3, out[0].Bucket.Day())
	assert.Equal(t, 2, out[1].Bucket.Day())
	assert.Equal(t, 1, out[2].Bucket.Day())
}
