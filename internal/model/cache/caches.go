package cache

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/liveops-hq/backend/internal/model"
	"github.com/liveops-hq/backend/internal/pkg/cache"
)

// Caches backed by redis. Result caches are keyed by the xxh3 hash of the
// rendered query text; schema and experiment caches by their natural keys.
var (
	ExperimentByID   *cache.Set[model.Experiment]
	EventSchemaByKey *cache.Set[model.EventSchema]

	ExperimentResultByQuery *cache.Set[[]model.TimeBucketRow]
	DaySeriesResultByQuery  *cache.Set[[]model.DayValue]
	SampleSizesByQuery      *cache.Set[model.SampleSizes]
	CategoryCountsByQuery   *cache.Set[[]model.CategoryCount]

	once sync.Once

	SetMap map[string]Flushable
)

// Flushable is any cache set that can drop all of its keys.
type Flushable interface {
	Flush() error
}

func Initialize() {
	once.Do(func() {
		initializeCaches()
		initializeFlushableMap()
	})
}

func initializeCaches() {
	ExperimentByID = cache.NewSet[model.Experiment]("experiment#experimentId")
	EventSchemaByKey = cache.NewSet[model.EventSchema]("eventSchema#gameId|branch|eventId")

	ExperimentResultByQuery = cache.NewSet[[]model.TimeBucketRow]("experimentResult#queryHash")
	DaySeriesResultByQuery = cache.NewSet[[]model.DayValue]("daySeriesResult#queryHash")
	SampleSizesByQuery = cache.NewSet[model.SampleSizes]("sampleSizes#queryHash")
	CategoryCountsByQuery = cache.NewSet[[]model.CategoryCount]("categoryCounts#queryHash")
}

func initializeFlushableMap() {
	SetMap = map[string]Flushable{
		"experiment#experimentId":           ExperimentByID,
		"eventSchema#gameId|branch|eventId": EventSchemaByKey,
		"experimentResult#queryHash":        ExperimentResultByQuery,
		"daySeriesResult#queryHash":         DaySeriesResultByQuery,
		"sampleSizes#queryHash":             SampleSizesByQuery,
		"categoryCounts#queryHash":          CategoryCountsByQuery,
	}
}

// Flush drops a named cache set entirely.
func Flush(name string) error {
	if c, ok := SetMap[name]; ok {
		return c.Flush()
	}
	return errors.Errorf("cache set %s not found", name)
}
