package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/courtroom/internal/domain"
	"github.com/SARVESHVARADKAR123/courtroom/internal/observability"
)

const (
	syncBufferSize = 1024
	syncTimeout    = 2 * time.Second
)

var ErrSyncBufferFull = errors.New("record sync buffer full")

// syncedMessage is what the sync knows about one core message. recordID is zero
// until the record has been created.
type syncedMessage struct {
	recordID int64
	level    domain.Severity
	resolved bool
}

// merge folds m into st. Core messages only ever move up in severity and into
// resolved, so the merge is monotonic and event order does not matter.
func (st syncedMessage) merge(m *domain.Message) syncedMessage {
	if st.level == "" || m.Severity.Rank() > st.level.Rank() {
		st.level = m.Severity
	}
	st.resolved = st.resolved || m.Resolved
	return st
}

// RecordSync mirrors core messages into the record store: one record per created
// message, updated on escalation and resolution. Records outlive a reset.
//
// HandleEvent only queues; Run writes to the store from its own goroutine so a
// slow database never holds up a tick or a user action.
type RecordSync struct {
	records *RecordService
	queue   chan Event
	log     *zap.Logger

	mu    sync.Mutex
	state map[string]syncedMessage // message id -> state
}

func NewRecordSync(records *RecordService, log *zap.Logger) *RecordSync {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecordSync{
		records: records,
		queue:   make(chan Event, syncBufferSize),
		log:     log,
		state:   make(map[string]syncedMessage),
	}
}

func (rs *RecordSync) Name() string { return "record_sync" }

// HandleEvent queues ev. It never blocks.
func (rs *RecordSync) HandleEvent(ctx context.Context, ev Event) error {
	switch ev.Type {
	case EventMessageCreated, EventMessageEscalated, EventMessageResolved, EventMessageTerminated, EventReset:
	default:
		return nil
	}
	select {
	case rs.queue <- ev:
		return nil
	default:
		return fmt.Errorf("%w: dropped %s", ErrSyncBufferFull, ev.Type)
	}
}

// Run applies queued events until ctx is done, then flushes what is left.
func (rs *RecordSync) Run(ctx context.Context) error {
	rs.log.Info("record sync started")
	for {
		select {
		case <-ctx.Done():
			rs.Flush(context.WithoutCancel(ctx))
			rs.log.Info("record sync stopping")
			return nil
		case ev := <-rs.queue:
			rs.handle(ctx, ev)
		}
	}
}

// Flush applies every queued event and returns once the queue is empty.
func (rs *RecordSync) Flush(ctx context.Context) {
	for {
		select {
		case ev := <-rs.queue:
			rs.handle(ctx, ev)
		default:
			return
		}
	}
}

func (rs *RecordSync) handle(ctx context.Context, ev Event) {
	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	if err := rs.apply(ctx, ev); err != nil {
		observability.ListenerFailuresTotal.WithLabelValues(rs.Name()).Inc()
		rs.log.Error("record sync failed",
			zap.String("event", string(ev.Type)),
			zap.String("message_id", ev.Key()),
			zap.Error(err),
		)
	}
}

func (rs *RecordSync) apply(ctx context.Context, ev Event) error {
	if ev.Type == EventReset {
		rs.mu.Lock()
		clear(rs.state)
		rs.mu.Unlock()
		return nil
	}
	if ev.Message == nil {
		return nil
	}
	m := ev.Message

	rs.mu.Lock()
	prev, seen := rs.state[m.ID]
	st := prev.merge(m)
	rs.state[m.ID] = st
	rs.mu.Unlock()

	if ev.Type == EventMessageCreated {
		if seen && prev.recordID != 0 {
			return nil
		}
		from := m.Origin
		rec, err := rs.records.Create(ctx, CreateRecordCommand{
			Text:      m.Text,
			From:      &from,
			Level:     m.Severity,
			Timestamp: m.CreatedAt,
		})
		if err != nil {
			return err
		}
		rs.mu.Lock()
		st = rs.state[m.ID]
		st.recordID = rec.ID
		rs.state[m.ID] = st
		rs.mu.Unlock()

		// Escalations or a resolution that arrived before the create.
		if st.level == rec.Level && st.resolved == rec.Resolved {
			return nil
		}
		return rs.patch(ctx, st)
	}

	// Unknown record: the state is kept and applied once the create arrives.
	if st.recordID == 0 || st == prev {
		return nil
	}
	return rs.patch(ctx, st)
}

func (rs *RecordSync) patch(ctx context.Context, st syncedMessage) error {
	level := st.level
	resolved := st.resolved
	_, err := rs.records.Update(ctx, st.recordID, domain.RecordPatch{Level: &level, Resolved: &resolved})
	return err
}

// RecordID returns the record mirroring a message, if any.
func (rs *RecordSync) RecordID(messageID string) (int64, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	st, ok := rs.state[messageID]
	return st.recordID, ok && st.recordID != 0
}
