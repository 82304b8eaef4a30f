package constant

// GranularityDay is the only granularity experiment queries are normalized to.
const GranularityDay = "day"

// DefaultCupedLookbackMonths is the default pre-experiment covariate window,
// counted back from the experiment start date.
const DefaultCupedLookbackMonths = 1

// DefaultSeriesLookbackDays bounds a generic analytics query when the caller
// supplies no date range.
const DefaultSeriesLookbackDays = 30
