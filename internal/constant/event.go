package constant

// Reserved event identifiers. Events outside this set are studio-defined
// ("design") events whose value slots resolve through the event schema.
const (
	EventSessionStart   = "session_start"
	EventSessionEnd     = "session_end"
	EventOfferShown     = "offer_shown"
	EventOfferPurchased = "offer_purchased"
	EventCurrencySink   = "currency_sink"
	EventCurrencySource = "currency_source"
	EventAdWatched      = "ad_watched"
	EventCrash          = "crash"
)

// ReservedEventFields maps a reserved event id to its static slot table
// (target value id -> physical events column). Design events are absent here.
var ReservedEventFields = map[string]map[string]string{
	EventOfferShown: {
		"field1": "offer_id",
		"field2": "currency_id",
		"field3": "amount",
	},
	EventOfferPurchased: {
		"field1": "offer_id",
		"field2": "currency_id",
		"field3": "amount",
	},
	EventCurrencySink: {
		"field1": "currency_id",
		"field2": "amount",
	},
	EventCurrencySource: {
		"field1": "currency_id",
		"field2": "amount",
	},
	EventAdWatched: {
		"field1": "amount",
	},
	EventSessionStart: {},
	EventSessionEnd: {
		"field1": "amount",
	},
	EventCrash: {},
}

// ReservedEventColumns is the whitelist of physical events columns a resolved
// target value or value filter may address directly.
var ReservedEventColumns = map[string]struct{}{
	"offer_id":    {},
	"currency_id": {},
	"amount":      {},
}

// SessionCategoryFields maps a category filter field name to its sessions
// column. Category filters outside this table are rejected by the resolver.
var SessionCategoryFields = map[string]string{
	"country":       "country",
	"platform":      "platform",
	"device":        "device",
	"appVersion":    "app_version",
	"engineVersion": "engine_version",
}

// Filter fields whose comparison values go through entity lookup before
// being bound into the query.
const (
	FilterFieldOfferID    = "offerID"
	FilterFieldCurrency   = "currency"
	FilterFieldCurrencyID = "currencyID"
)

// FilterFieldColumns maps the studio-facing names of reserved value slots to
// their physical events columns. Schema value ids resolving to one of these
// names address the column rather than the payload.
var FilterFieldColumns = map[string]string{
	FilterFieldOfferID:    "offer_id",
	FilterFieldCurrency:   "currency_id",
	FilterFieldCurrencyID: "currency_id",
	"amount":              "amount",
}
