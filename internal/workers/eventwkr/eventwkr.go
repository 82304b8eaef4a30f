// Package eventwkr consumes normalized event records from NATS, applies the
// studio's reject rules and batch-inserts the survivors into the event store.
package eventwkr

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"go.uber.org/fx"
	"gopkg.in/guregu/null.v3"

	"github.com/liveops-hq/backend/internal/app/appconfig"
	"github.com/liveops-hq/backend/internal/model"
	"github.com/liveops-hq/backend/internal/pkg/observability"
	"github.com/liveops-hq/backend/internal/repo"
	"github.com/liveops-hq/backend/internal/util/eventverifs"
)

const (
	subject    = "liveops.events.normalized"
	queueGroup = "eventwkr"
)

type Deps struct {
	fx.In

	Conf           *appconfig.Config
	NatsConn       *nats.Conn
	EventRepo      *repo.Event
	RejectRuleRepo *repo.RejectRule
}

type worker struct {
	conf      *appconfig.Config
	eventRepo *repo.Event
	checker   *eventverifs.RejectChecker
}

func Start(deps Deps) error {
	ctx := context.Background()

	checker, err := eventverifs.NewRejectChecker(ctx, deps.RejectRuleRepo)
	if err != nil {
		return err
	}

	w := &worker{
		conf:      deps.Conf,
		eventRepo: deps.EventRepo,
		checker:   checker,
	}

	ch := make(chan *nats.Msg, deps.Conf.EventWorkerBatchSize*2)
	sub, err := deps.NatsConn.ChanQueueSubscribe(subject, queueGroup, ch)
	if err != nil {
		return err
	}
	sub.SetPendingLimits(-1, -1)

	go w.loop(ctx, ch)
	log.Info().Str("subject", subject).Msg("eventwkr: started consuming")
	return nil
}

// loop buffers records and flushes on batch size or after the flush interval,
// whichever comes first.
func (w *worker) loop(ctx context.Context, ch <-chan *nats.Msg) {
	batch := make([]*model.Event, 0, w.conf.EventWorkerBatchSize)
	ticker := time.NewTicker(w.conf.EventWorkerFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-ch:
			if event := w.normalize(msg.Data); event != nil {
				batch = append(batch, event)
			}
			if len(batch) >= w.conf.EventWorkerBatchSize {
				w.flush(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				w.flush(ctx, batch)
				batch = batch[:0]
			}
		case <-ctx.Done():
			return
		}
	}
}

// normalize turns one wire record into an event row, or nil when the record
// is malformed or matches a reject rule.
func (w *worker) normalize(data []byte) *model.Event {
	if !gjson.ValidBytes(data) {
		observability.EventsIngested.WithLabelValues("malformed").Inc()
		return nil
	}
	fields := gjson.GetManyBytes(data,
		"gameId", "branch", "eventId", "clientId", "sessionId",
		"receivedAt", "offerId", "currencyId", "amount", "payload")

	event := &model.Event{
		ID:        ulid.Make().String(),
		GameID:    fields[0].String(),
		Branch:    fields[1].String(),
		EventID:   fields[2].String(),
		ClientID:  fields[3].String(),
		SessionID: fields[4].String(),
	}
	if event.GameID == "" || event.EventID == "" || event.ClientID == "" {
		observability.EventsIngested.WithLabelValues("malformed").Inc()
		return nil
	}

	event.ReceivedAt = time.Now().UTC()
	if fields[5].Exists() {
		if ts, err := time.Parse(time.RFC3339, fields[5].String()); err == nil {
			event.ReceivedAt = ts.UTC()
		}
	}
	if fields[6].Exists() {
		event.OfferID = null.StringFrom(fields[6].String())
	}
	if fields[7].Exists() {
		event.CurrencyID = null.StringFrom(fields[7].String())
	}
	if fields[8].Exists() {
		event.Amount = null.FloatFrom(fields[8].Float())
	}
	if fields[9].Exists() {
		event.Payload = []byte(fields[9].Raw)
	}

	if rejected, ruleID := w.checker.ShouldReject(eventverifs.EventFacts{
		GameID:    event.GameID,
		Branch:    event.Branch,
		EventID:   event.EventID,
		ClientID:  event.ClientID,
		SessionID: event.SessionID,
		Amount:    event.Amount.ValueOrZero(),
	}); rejected {
		if l := log.Debug(); l.Enabled() {
			l.Int("ruleId", ruleID).Str("eventId", event.EventID).Msg("eventwkr: rejected event")
		}
		observability.EventsIngested.WithLabelValues("rejected").Inc()
		return nil
	}

	observability.EventsIngested.WithLabelValues("accepted").Inc()
	return event
}

func (w *worker) flush(ctx context.Context, batch []*model.Event) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, w.conf.EventWorkerFlushInterval*2)
	defer cancel()

	if err := w.eventRepo.InsertEvents(ctx, batch); err != nil {
		log.Error().Err(err).Int("batchSize", len(batch)).Msg("eventwkr: failed to insert batch")
		return
	}
	observability.EventFlushDuration.Observe(time.Since(start).Seconds())
}
