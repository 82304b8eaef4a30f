package repo

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/zeebo/xxh3"
	"golang.org/x/exp/slices"

	"github.com/liveops-hq/backend/internal/app/appconfig"
	"github.com/liveops-hq/backend/internal/constant"
	"github.com/liveops-hq/backend/internal/model"
	modelcache "github.com/liveops-hq/backend/internal/model/cache"
	"github.com/liveops-hq/backend/internal/pkg/apperr"
)

// sessionColumns is the whitelist of sessions columns a category filter or a
// group-by key may address.
var sessionColumns = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, col := range constant.SessionCategoryFields {
		m[col] = struct{}{}
	}
	return m
}()

// Event synthesizes and executes aggregation queries against the event store.
// Every query is built as a bun AST: identifiers pass whitelists and are
// quoted via bun.Ident, values are always bound parameters. Results are
// memoized by the xxh3 hash of the rendered query text, so synthesizing the
// same inputs twice must yield byte-identical SQL.
type Event struct {
	db   *bun.DB
	conf *appconfig.Config
}

func NewEvent(db *bun.DB, conf *appconfig.Config) *Event {
	return &Event{db: db, conf: conf}
}

// ExperimentSeriesQuery describes one control-vs-test day series.
type ExperimentSeriesQuery struct {
	GameID string
	Branch string
	Metric model.ResolvedMetric
	Range  model.DateRange

	// ParticipationSegment marks clients enrolled in the experiment
	// (abtest_<testID>). Arm segments may be the "everyone" sentinel.
	ParticipationSegment string
	ControlSegment       string
	TestSegment          string
}

// SampleSizesQuery describes the distinct-audience count per arm.
type SampleSizesQuery struct {
	GameID string
	Branch string
	Range  model.DateRange

	ParticipationSegment string
	ControlSegment       string
	TestSegment          string
}

// DaySeriesQuery describes a single-arm day series, used for the CUPED
// pre-experiment fetch and the generic analytics path.
type DaySeriesQuery struct {
	GameID string
	Branch string
	Metric model.ResolvedMetric
	Range  model.DateRange

	// SegmentID restricts the audience; empty or "everyone" means no
	// restriction.
	SegmentID string
}

// CategoryCountsQuery describes a grouped count, either over the metric value
// (mostCommon, leastCommon) or over a session category column.
type CategoryCountsQuery struct {
	GameID string
	Branch string
	Metric model.ResolvedMetric
	Range  model.DateRange

	SegmentID string

	// GroupColumn, when set, groups by this sessions column instead of the
	// metric value.
	GroupColumn string
}

// CalcExperimentSeries runs the full experiment query shape: session scope
// and filtered events CTEs, one day-grouped aggregation pass per arm, and a
// FULL OUTER JOIN on day with missing days coalesced to zero, newest first.
func (r *Event) CalcExperimentSeries(ctx context.Context, q *ExperimentSeriesQuery) ([]model.TimeBucketRow, error) {
	if err := r.validateMetric(q.Metric); err != nil {
		return nil, err
	}

	final := r.buildExperimentSeries(q)

	text, err := r.renderQuery(final)
	if err != nil {
		return nil, err
	}

	var rows []model.TimeBucketRow
	_, err = modelcache.ExperimentResultByQuery.MutexGetSet(queryKey(text), &rows, func() ([]model.TimeBucketRow, error) {
		out := make([]model.TimeBucketRow, 0)
		if err := r.scan(ctx, final, &out); err != nil {
			return nil, err
		}
		return out, nil
	}, r.conf.ResultCacheTTL)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CalcSampleSizes counts distinct clients per arm over the elapsed interval.
func (r *Event) CalcSampleSizes(ctx context.Context, q *SampleSizesQuery) (*model.SampleSizes, error) {
	final := r.buildSampleSizes(q)

	text, err := r.renderQuery(final)
	if err != nil {
		return nil, err
	}

	var sizes model.SampleSizes
	_, err = modelcache.SampleSizesByQuery.MutexGetSet(queryKey(text), &sizes, func() (model.SampleSizes, error) {
		var out model.SampleSizes
		if err := r.scan(ctx, final, &out); err != nil {
			return model.SampleSizes{}, err
		}
		return out, nil
	}, r.conf.ResultCacheTTL)
	if err != nil {
		return nil, err
	}
	return &sizes, nil
}

// CalcDaySeries runs a single aggregation pass grouped by day, oldest first.
func (r *Event) CalcDaySeries(ctx context.Context, q *DaySeriesQuery) ([]model.DayValue, error) {
	if err := r.validateMetric(q.Metric); err != nil {
		return nil, err
	}

	final := r.buildDaySeries(q)

	text, err := r.renderQuery(final)
	if err != nil {
		return nil, err
	}

	var rows []model.DayValue
	_, err = modelcache.DaySeriesResultByQuery.MutexGetSet(queryKey(text), &rows, func() ([]model.DayValue, error) {
		out := make([]model.DayValue, 0)
		if err := r.scan(ctx, final, &out); err != nil {
			return nil, err
		}
		return out, nil
	}, r.conf.ResultCacheTTL)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CalcCategoryCounts runs a grouped count over the whole interval, most
// frequent first. Most/least common selection happens on the caller's side.
func (r *Event) CalcCategoryCounts(ctx context.Context, q *CategoryCountsQuery) ([]model.CategoryCount, error) {
	if err := r.validateMetric(q.Metric); err != nil {
		return nil, err
	}
	if q.GroupColumn != "" {
		if _, ok := sessionColumns[q.GroupColumn]; !ok {
			return nil, apperr.ErrInvalidReq.Msg("unknown group column: %s", q.GroupColumn)
		}
	}

	final := r.buildCategoryCounts(q)

	text, err := r.renderQuery(final)
	if err != nil {
		return nil, err
	}

	var rows []model.CategoryCount
	_, err = modelcache.CategoryCountsByQuery.MutexGetSet(queryKey(text), &rows, func() ([]model.CategoryCount, error) {
		out := make([]model.CategoryCount, 0)
		if err := r.scan(ctx, final, &out); err != nil {
			return nil, err
		}
		return out, nil
	}, r.conf.ResultCacheTTL)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// InsertEvents batch-inserts normalized event records.
func (r *Event) InsertEvents(ctx context.Context, events []*model.Event) error {
	if len(events) == 0 {
		return nil
	}
	_, err := r.db.NewInsert().
		Model(&events).
		Exec(ctx)
	return errors.Wrap(err, "failed to insert events")
}

// buildExperimentSeries assembles the experiment query shape: session scope
// and filtered events CTEs, one day-grouped aggregation pass per arm, and a
// FULL OUTER JOIN on day coalescing missing days to zero.
func (r *Event) buildExperimentSeries(q *ExperimentSeriesQuery) *bun.SelectQuery {
	scope := r.sessionScope(q.GameID, q.Branch, q.Range, categoryColumns(q.Metric, ""))
	events := r.filteredEvents(q.GameID, q.Branch, q.Metric, q.Range)

	controlAgg := r.handleArmScope(r.dayAggregate(q.Metric), "fe", q.GameID, q.ParticipationSegment, q.ControlSegment, q.TestSegment)
	testAgg := r.handleArmScope(r.dayAggregate(q.Metric), "fe", q.GameID, q.ParticipationSegment, q.TestSegment, q.ControlSegment)

	return r.db.NewSelect().
		With("session_scope", scope).
		With("filtered_events", events).
		With("control_agg", controlAgg).
		With("test_agg", testAgg).
		TableExpr("control_agg AS c").
		Join("FULL OUTER JOIN test_agg AS t ON t.bucket = c.bucket").
		ColumnExpr("COALESCE(c.bucket, t.bucket) AS bucket").
		ColumnExpr("COALESCE(c.value, 0) AS control").
		ColumnExpr("COALESCE(t.value, 0) AS test").
		OrderExpr("COALESCE(c.bucket, t.bucket) DESC")
}

func (r *Event) buildSampleSizes(q *SampleSizesQuery) *bun.SelectQuery {
	scope := r.sessionScope(q.GameID, q.Branch, q.Range, nil)

	control := r.handleArmScope(
		r.db.NewSelect().
			TableExpr("session_scope AS ssc").
			ColumnExpr("COUNT(DISTINCT ssc.client_id)"),
		"ssc", q.GameID, q.ParticipationSegment, q.ControlSegment, q.TestSegment)
	test := r.handleArmScope(
		r.db.NewSelect().
			TableExpr("session_scope AS ssc").
			ColumnExpr("COUNT(DISTINCT ssc.client_id)"),
		"ssc", q.GameID, q.ParticipationSegment, q.TestSegment, q.ControlSegment)

	return r.db.NewSelect().
		With("session_scope", scope).
		ColumnExpr("(?) AS control", control).
		ColumnExpr("(?) AS test", test)
}

func (r *Event) buildDaySeries(q *DaySeriesQuery) *bun.SelectQuery {
	scope := r.sessionScope(q.GameID, q.Branch, q.Range, categoryColumns(q.Metric, ""))
	events := r.filteredEvents(q.GameID, q.Branch, q.Metric, q.Range)

	agg := r.dayAggregate(q.Metric)
	if q.SegmentID != "" && q.SegmentID != constant.SegmentEveryone {
		agg = r.handleSegmentMember(agg, "fe", q.GameID, q.SegmentID, true)
	}

	return r.db.NewSelect().
		With("session_scope", scope).
		With("filtered_events", events).
		TableExpr("(?) AS a", agg).
		ColumnExpr("a.bucket AS bucket").
		ColumnExpr("a.value AS value").
		OrderExpr("a.bucket ASC")
}

func (r *Event) buildCategoryCounts(q *CategoryCountsQuery) *bun.SelectQuery {
	scope := r.sessionScope(q.GameID, q.Branch, q.Range, categoryColumns(q.Metric, q.GroupColumn))
	events := r.filteredEvents(q.GameID, q.Branch, q.Metric, q.Range)
	groupExpr := "CAST(fe.value AS text)"
	if q.GroupColumn != "" {
		events = events.ColumnExpr("ss.? AS grouped", bun.Ident(q.GroupColumn))
		groupExpr = "CAST(fe.grouped AS text)"
	}

	grouped := r.db.NewSelect().
		TableExpr("filtered_events AS fe").
		ColumnExpr(groupExpr + " AS value").
		ColumnExpr("COUNT(*) AS count").
		GroupExpr(groupExpr).
		OrderExpr("COUNT(*) DESC")
	if q.SegmentID != "" && q.SegmentID != constant.SegmentEveryone {
		grouped = r.handleSegmentMember(grouped, "fe", q.GameID, q.SegmentID, true)
	}

	return r.db.NewSelect().
		With("session_scope", scope).
		With("filtered_events", events).
		TableExpr("(?) AS a", grouped).
		ColumnExpr("a.value AS value").
		ColumnExpr("a.count AS count")
}

// sessionScope builds the session_scope CTE: sessions within the interval for
// the game (and branch, when scoped), carrying the requested category columns.
func (r *Event) sessionScope(gameID, branch string, rng model.DateRange, categoryCols []string) *bun.SelectQuery {
	q := r.db.NewSelect().
		Model((*model.Session)(nil)).
		Column("ss.client_id", "ss.session_id").
		Where("ss.game_id = ?", gameID).
		Where("ss.started_at >= ?", rng.Start).
		Where("ss.started_at < ?", rng.End)
	if branch != "" {
		q = q.Where("ss.branch = ?", branch)
	}
	for _, col := range categoryCols {
		q = q.ColumnExpr("ss.?", bun.Ident(col))
	}
	return q
}

// filteredEvents builds the filtered_events CTE: events within the interval
// joined to session_scope on (client_id, session_id), gated by event type,
// category filters against session columns and value filters against event
// columns or payload fields.
func (r *Event) filteredEvents(gameID, branch string, metric model.ResolvedMetric, rng model.DateRange) *bun.SelectQuery {
	q := r.db.NewSelect().
		Model((*model.Event)(nil)).
		ColumnExpr("ev.client_id").
		ColumnExpr("ev.received_at").
		Join("JOIN session_scope AS ss ON ss.client_id = ev.client_id AND ss.session_id = ev.session_id").
		Where("ev.game_id = ?", gameID).
		Where("ev.event_id = ?", metric.EventID).
		Where("ev.received_at >= ?", rng.Start).
		Where("ev.received_at < ?", rng.End)
	if branch != "" {
		q = q.Where("ev.branch = ?", branch)
	}

	if needsValue(metric.AggregationMethod) {
		if metric.Target.Kind == model.FieldColumn {
			q = q.ColumnExpr("ev.? AS value", bun.Ident(metric.Target.Name))
		} else {
			q = q.ColumnExpr("ev.payload->>? AS value", metric.Target.Name)
		}
	}

	for _, f := range metric.CategoryFilters {
		q = handleFilter(q, "ss", f)
	}
	for _, f := range metric.ValueFilters {
		q = handleFilter(q, "ev", f)
	}
	return q
}

// dayAggregate builds one aggregation pass over filtered_events grouped by day.
func (r *Event) dayAggregate(metric model.ResolvedMetric) *bun.SelectQuery {
	q := r.db.NewSelect().
		TableExpr("filtered_events AS fe").
		ColumnExpr("date_trunc('day', fe.received_at) AS bucket").
		GroupExpr("date_trunc('day', fe.received_at)")

	switch metric.AggregationMethod {
	case constant.AggregationSum:
		q = q.ColumnExpr("SUM(CAST(fe.value AS decimal)) AS value")
	case constant.AggregationMean:
		q = q.ColumnExpr("AVG(CAST(fe.value AS decimal)) AS value")
	case constant.AggregationCount:
		q = q.ColumnExpr("COUNT(*) AS value")
	case constant.AggregationPercentile:
		q = q.ColumnExpr("PERCENTILE_CONT(?) WITHIN GROUP (ORDER BY CAST(fe.value AS decimal)) AS value", metric.Percentile/100)
	}
	return q
}

// handleArmScope gates a pass to one experiment arm: enrolled in the
// participation segment, and a member of the arm's own segment. When the own
// segment is the "everyone" sentinel the arm is everyone not in the other
// arm's segment.
func (r *Event) handleArmScope(q *bun.SelectQuery, alias, gameID, participation, own, other string) *bun.SelectQuery {
	if participation != "" {
		q = r.handleSegmentMember(q, alias, gameID, participation, true)
	}
	if own != constant.SegmentEveryone {
		return r.handleSegmentMember(q, alias, gameID, own, true)
	}
	if other != constant.SegmentEveryone {
		return r.handleSegmentMember(q, alias, gameID, other, false)
	}
	return q
}

func (r *Event) handleSegmentMember(q *bun.SelectQuery, alias, gameID, segmentID string, member bool) *bun.SelectQuery {
	sub := r.db.NewSelect().
		Model((*model.SegmentMember)(nil)).
		ColumnExpr("1").
		Where("sm.game_id = ?", gameID).
		Where("sm.segment_id = ?", segmentID).
		Where("sm.client_id = ?.client_id", bun.Ident(alias))
	if member {
		return q.Where("EXISTS (?)", sub)
	}
	return q.Where("NOT EXISTS (?)", sub)
}

func handleFilter(q *bun.SelectQuery, alias string, f model.ResolvedFilter) *bun.SelectQuery {
	op := "="
	if f.Predicate == constant.PredicateIsNot {
		op = "!="
	}
	if f.Field.Kind == model.FieldColumn {
		return q.Where("CAST(?.? AS text) "+op+" ?", bun.Ident(alias), bun.Ident(f.Field.Name), f.Value)
	}
	return q.Where("?.payload->>? "+op+" ?", bun.Ident(alias), f.Field.Name, f.Value)
}

func (r *Event) validateMetric(metric model.ResolvedMetric) error {
	switch metric.AggregationMethod {
	case constant.AggregationSum, constant.AggregationMean, constant.AggregationCount,
		constant.AggregationPercentile, constant.AggregationMostCommon, constant.AggregationLeastCommon:
	default:
		return apperr.ErrInvalidReq.Msg("unknown aggregation method: %s", metric.AggregationMethod)
	}
	if needsValue(metric.AggregationMethod) && metric.Target.Kind == model.FieldColumn {
		if _, ok := constant.ReservedEventColumns[metric.Target.Name]; !ok {
			return apperr.ErrInvalidReq.Msg("unknown event column: %s", metric.Target.Name)
		}
	}
	for _, f := range metric.CategoryFilters {
		if f.Field.Kind != model.FieldColumn {
			return apperr.ErrInvalidReq.Msg("category filter must address a session column: %s", f.Field.Name)
		}
		if _, ok := sessionColumns[f.Field.Name]; !ok {
			return apperr.ErrInvalidReq.Msg("unknown category column: %s", f.Field.Name)
		}
	}
	for _, f := range metric.ValueFilters {
		if f.Field.Kind == model.FieldColumn {
			if _, ok := constant.ReservedEventColumns[f.Field.Name]; !ok {
				return apperr.ErrInvalidReq.Msg("unknown event column: %s", f.Field.Name)
			}
		}
	}
	return nil
}

// needsValue reports whether the aggregation reads a value column at all.
func needsValue(method string) bool {
	return method != constant.AggregationCount
}

// categoryColumns collects the sessions columns the query references, sorted
// and deduplicated so the rendered SQL stays deterministic.
func categoryColumns(metric model.ResolvedMetric, groupColumn string) []string {
	var cols []string
	for _, f := range metric.CategoryFilters {
		cols = append(cols, f.Field.Name)
	}
	if groupColumn != "" {
		cols = append(cols, groupColumn)
	}
	slices.Sort(cols)
	return slices.Compact(cols)
}

// renderQuery renders the final SQL text. The text doubles as the cache
// identity of the query, so rendering must be deterministic.
func (r *Event) renderQuery(q *bun.SelectQuery) (string, error) {
	b, err := q.AppendQuery(r.db.Formatter(), nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to render query")
	}
	return string(b), nil
}

func queryKey(text string) string {
	return strconv.FormatUint(xxh3.HashString(text), 16)
}

func (r *Event) scan(ctx context.Context, q *bun.SelectQuery, dest interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, r.conf.StoreQueryTimeout)
	defer cancel()
	if err := q.Scan(ctx, dest); err != nil {
		return errors.Wrap(err, "failed to execute aggregation query")
	}
	return nil
}
