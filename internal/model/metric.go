package model

// MetricDescriptor declares what to measure: which event, which value slot,
// how to aggregate it, and which filters gate the rows. It is supplied by the
// caller per analysis request and treated as immutable.
type MetricDescriptor struct {
	EventID           string   `json:"eventId" validate:"required" example:"offer_purchased"`
	TargetValueID     string   `json:"targetValueId" example:"field3"`
	AggregationMethod string   `json:"aggregationMethod" validate:"required,oneof=sum mean count percentile mostCommon leastCommon"`
	CategoryFilters   []Filter `json:"categoryFilters,omitempty"`
	ValueFilters      []Filter `json:"valueFilters,omitempty"`
	Percentile        float64  `json:"percentile,omitempty" validate:"gte=0,lte=100"`
}

// Filter is a single field comparison. Category filters address session
// fields; value filters address event payload fields.
type Filter struct {
	Field     string `json:"field" validate:"required"`
	Predicate string `json:"predicate" validate:"required,oneof=is isNot"`
	Value     string `json:"value" validate:"required"`
}

// FieldKind distinguishes a physical events column from a payload lookup.
type FieldKind int

const (
	FieldColumn FieldKind = iota
	FieldPayload
)

// FieldRef is a resolved reference into the event store: either a whitelisted
// column or a payload key.
type FieldRef struct {
	Kind FieldKind
	Name string
}

// ResolvedFilter carries a filter whose field has been resolved against the
// schema and whose comparison value has passed entity lookup.
type ResolvedFilter struct {
	Field     FieldRef
	Predicate string
	Value     string
}

// ResolvedMetric is the Query Synthesizer's input: every identifier validated,
// every value ready to bind.
type ResolvedMetric struct {
	EventID           string
	Target            FieldRef
	AggregationMethod string
	Percentile        float64
	CategoryFilters   []ResolvedFilter
	ValueFilters      []ResolvedFilter
}
