package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/scott4ai/ukraine-fire-tracking/internal/domain"
)

// session is the one mutable long-lived entity of a playback run. Every field
// has exactly one writer: commands write running/paused/speed, the scheduler
// writes cursor/ended and its counters, the dispatcher writes its own totals.
// Atomics make the single-writer fields safely readable from the other two
// parties without locks; that split is a design constraint, not an
// optimization.
type session struct {
	id         string
	rangeStart time.Time // immutable after start
	rangeEnd   time.Time // immutable after start

	// Command-owned.
	speed   atomic.Pointer[domain.SpeedTier]
	running atomic.Bool
	paused  atomic.Bool

	// Scheduler-owned.
	cursor       atomic.Int64 // simulated time, unix nanos
	ended        atomic.Bool  // natural end-of-data reached
	totalRecords atomic.Int64
	emitted      atomic.Int64

	// Dispatcher-owned.
	published   atomic.Int64 // cumulative fires published
	activeFires atomic.Int64
	lastWindow  atomic.Int64 // unix nanos of last published window end, 0 before the first batch

	cancel context.CancelFunc
	done   chan struct{} // closed when the dispatcher exits
}

func newSession(rangeStart, rangeEnd time.Time, tier domain.SpeedTier) *session {
	s := &session{
		id:         uuid.NewString(),
		rangeStart: rangeStart,
		rangeEnd:   rangeEnd,
		done:       make(chan struct{}),
	}
	s.speed.Store(&tier)
	s.running.Store(true)
	s.cursor.Store(rangeStart.UnixNano())
	return s
}

// active reports whether the session is still Running or Paused. A session
// retires when it is stopped or when the dispatcher exits after end-of-data.
func (s *session) active() bool {
	select {
	case <-s.done:
		return false
	default:
	}
	return s.running.Load() && !s.ended.Load()
}

func (s *session) cursorTime() time.Time {
	return time.Unix(0, s.cursor.Load()).UTC()
}

// statistics assembles a snapshot of the scheduler's and dispatcher's
// counters. Reads cross goroutines but every field is atomic, so the snapshot
// is field-wise consistent without a lock.
func (s *session) statistics() domain.Statistics {
	cursor := s.cursorTime()
	st := domain.Statistics{
		SessionID:        s.id,
		Running:          s.active(),
		Paused:           s.active() && s.paused.Load(),
		Speed:            s.speed.Load().Key,
		CurrentDatetime:  &cursor,
		TotalRecords:     s.totalRecords.Load(),
		ProcessedRecords: s.emitted.Load(),
		TotalFires:       s.published.Load(),
		ActiveFires:      s.activeFires.Load(),
	}
	if lw := s.lastWindow.Load(); lw != 0 {
		t := time.Unix(0, lw).UTC()
		st.CurrentTime = &t
	}
	return st
}
