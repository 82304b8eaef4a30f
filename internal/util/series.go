package util

import (
	"golang.org/x/exp/slices"

	"github.com/liveops-hq/backend/internal/model"
)

// CumulativeFold sorts rows ascending by timestamp and prefix-sums the daily
// control and test values into running totals, keeping the daily values
// alongside. Sorting before the fold is a hard precondition: folding an
// unordered series corrupts every downstream statistic.
func CumulativeFold(rows []model.AdjustedRow) []*model.AnnotatedRow {
	sorted := make([]model.AdjustedRow, len(rows))
	copy(sorted, rows)
	slices.SortFunc(sorted, func(a, b model.AdjustedRow) int {
		return a.Bucket.Compare(b.Bucket)
	})

	out := make([]*model.AnnotatedRow, 0, len(sorted))
	var runControl, runTest float64
	for _, row := range sorted {
		runControl += row.Control
		runTest += row.Test
		out = append(out, &model.AnnotatedRow{
			AdjustedRow:       row,
			CumulativeControl: runControl,
			CumulativeTest:    runTest,
		})
	}
	return out
}

// SortSeriesDesc orders an annotated series newest-first for presentation.
func SortSeriesDesc(rows []*model.AnnotatedRow) {
	slices.SortFunc(rows, func(a, b *model.AnnotatedRow) int {
		return b.Bucket.Compare(a.Bucket)
	})
}
