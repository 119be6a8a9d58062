// Package engine implements the replay streaming core: a wall-clock-paced,
// pausable, speed-adjustable pipeline that reads time-windowed slices of fire
// detections from a store and delivers them, in strict time order, to a
// subscriber transport through a bounded channel.
//
// Two long-lived goroutines run per session: the scheduler (producer) owns
// the simulated clock and queries the store once per tick; the dispatcher
// (consumer) drains the channel and publishes consolidated updates. The
// channel is strictly FIFO and single-producer/single-consumer, and the
// scheduler enqueues windows in increasing time order, so published batches
// are observed in non-decreasing window order.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/scott4ai/ukraine-fire-tracking/internal/domain"
	"github.com/scott4ai/ukraine-fire-tracking/internal/observability"
)

const (
	// pollInterval keeps the scheduler responsive to commands without
	// busy-spinning between ticks.
	pollInterval = 10 * time.Millisecond

	// tickInterval is the wall-clock cadence of simulated time advancement.
	tickInterval = time.Second

	// lookaheadWindow is how far past an empty tick the scheduler probes to
	// distinguish a transient gap from genuine end-of-data.
	lookaheadWindow = 30 * 24 * time.Hour
)

// Store is the query surface over the timestamp-indexed detection store.
// Intervals are half-open: start exclusive, end inclusive, so a record
// exactly on a tick boundary is never counted twice.
type Store interface {
	// QueryInterval returns all detections with startExclusive < t <= endInclusive,
	// ascending by time, with no result-size limit.
	QueryInterval(ctx context.Context, startExclusive, endInclusive time.Time) ([]domain.FireEvent, error)

	// CountInterval returns the number of detections in the same half-open interval.
	CountInterval(ctx context.Context, startExclusive, endInclusive time.Time) (int64, error)
}

// Publisher pushes consolidated updates to remote subscribers.
type Publisher interface {
	PublishBatch(ctx context.Context, update domain.BatchUpdate) error
	PublishSessionEnded(ctx context.Context, ended domain.SessionEnded) error
}

// OverflowPolicy names the scheduler's behavior when the replay channel is
// full. Blocking favors completeness over timing precision: a slow consumer
// stretches the tick cadence but never loses data. The drop policies favor
// cadence and count what they discard.
type OverflowPolicy string

const (
	OverflowBlock      OverflowPolicy = "block"
	OverflowDropOldest OverflowPolicy = "drop_oldest"
	OverflowDropNewest OverflowPolicy = "drop_newest"
)

// ParseOverflowPolicy validates a policy name from configuration.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch OverflowPolicy(s) {
	case OverflowBlock, OverflowDropOldest, OverflowDropNewest:
		return OverflowPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown overflow policy %q", s)
	}
}

// Engine owns the single playback session and its two workers. Commands are
// validated synchronously; at most one session is active at a time.
type Engine struct {
	store     Store
	publisher Publisher
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
	policy    OverflowPolicy

	// mu guards only session creation and replacement. The playback path
	// never takes it; the session's single-writer atomic fields carry all
	// cross-goroutine state.
	mu      sync.Mutex
	current *session
}

// New creates an Engine. The clock is injected so tests can drive the tick
// cadence deterministically.
func New(store Store, publisher Publisher, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, policy OverflowPolicy) *Engine {
	return &Engine{
		store:     store,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
		policy:    policy,
	}
}

// Start begins a new playback session over [rangeStart, rangeEnd] at the
// given speed tier. It returns ErrSessionActive if a session is already
// running or paused.
func (e *Engine) Start(rangeStart, rangeEnd time.Time, speedKey string) error {
	tier, ok := domain.SpeedTierFor(speedKey)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSpeed, speedKey)
	}
	if rangeStart.IsZero() || rangeEnd.IsZero() || !rangeEnd.After(rangeStart) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidRange, rangeStart, rangeEnd)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current != nil && e.current.active() {
		return ErrSessionActive
	}

	s := newSession(rangeStart.UTC(), rangeEnd.UTC(), tier)
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	// Capacity comes from the tier at session start and is never resized;
	// a later speed change keeps the original capacity.
	ch := make(chan domain.Batch, tier.Capacity)

	go e.runScheduler(ctx, s, ch)
	go e.runDispatcher(ctx, s, ch)

	e.current = s
	e.metrics.SessionsStarted.Inc()
	e.metrics.SessionRunning.Set(1)
	e.logger.Info("playback session started",
		"session_id", s.id,
		"range_start", rangeStart,
		"range_end", rangeEnd,
		"speed", tier.Key,
		"channel_capacity", tier.Capacity,
	)
	return nil
}

// Pause suspends tick advancement. A no-op unless a session is Running.
func (e *Engine) Pause() {
	s := e.activeSession()
	if s == nil || s.paused.Load() {
		return
	}
	s.paused.Store(true)
	e.metrics.SessionPaused.Set(1)
	e.logger.Info("playback paused", "session_id", s.id, "cursor", s.cursorTime())
}

// Resume continues ticking from the unchanged cursor. No records are skipped
// or replayed. A no-op unless a session is Paused.
func (e *Engine) Resume() {
	s := e.activeSession()
	if s == nil || !s.paused.Load() {
		return
	}
	s.paused.Store(false)
	e.metrics.SessionPaused.Set(0)
	e.logger.Info("playback resumed", "session_id", s.id, "cursor", s.cursorTime())
}

// Stop terminates the session. Buffered, unconsumed channel contents are
// discarded. A no-op if no session is active.
func (e *Engine) Stop() {
	e.mu.Lock()
	s := e.current
	e.mu.Unlock()

	if s == nil || !s.active() {
		return
	}
	s.running.Store(false)
	s.cancel()
	e.logger.Info("playback stopped", "session_id", s.id, "cursor", s.cursorTime())
}

// ChangeSpeed switches the active tier. The change takes effect on the next
// tick and does not alter already-emitted batch boundaries or the channel
// capacity. Rejected for keys not in the catalog; a no-op without a session.
func (e *Engine) ChangeSpeed(speedKey string) error {
	tier, ok := domain.SpeedTierFor(speedKey)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSpeed, speedKey)
	}
	s := e.activeSession()
	if s == nil {
		return nil
	}
	s.speed.Store(&tier)
	e.logger.Info("playback speed changed", "session_id", s.id, "speed", tier.Key)
	return nil
}

// Statistics returns a synchronous snapshot of the session and dispatcher
// counters. With no session it reports an idle state.
func (e *Engine) Statistics() domain.Statistics {
	e.mu.Lock()
	s := e.current
	e.mu.Unlock()

	if s == nil {
		return domain.Statistics{}
	}
	return s.statistics()
}

func (e *Engine) activeSession() *session {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current != nil && e.current.active() {
		return e.current
	}
	return nil
}
