package constant

// Aggregation methods accepted in a metric descriptor.
const (
	AggregationSum         = "sum"
	AggregationMean        = "mean"
	AggregationCount       = "count"
	AggregationPercentile  = "percentile"
	AggregationMostCommon  = "mostCommon"
	AggregationLeastCommon = "leastCommon"
)

// Filter predicates.
const (
	PredicateIs    = "is"
	PredicateIsNot = "isNot"
)

// SegmentEveryone is the sentinel segment reference meaning "no segment
// restriction" for an experiment arm.
const SegmentEveryone = "everyone"

// ParticipationSegmentPrefix prefixes the test id to form the segment that
// marks clients enrolled in an experiment.
const ParticipationSegmentPrefix = "abtest_"
