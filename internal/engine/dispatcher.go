package engine

import (
	"context"

	"github.com/scott4ai/ukraine-fire-tracking/internal/domain"
)

// runDispatcher is the consumer loop. It drains the replay channel in FIFO
// order, maintains the running totals, and republishes each batch as one
// consolidated update. A closed channel is the end-of-data sentinel: the
// dispatcher publishes a single session-ended event and exits. Context
// cancellation (stop) exits immediately, discarding anything still buffered.
func (e *Engine) runDispatcher(ctx context.Context, s *session, in <-chan domain.Batch) {
	defer func() {
		// A replacement session may already be running by the time this
		// dispatcher drains out; the gauges belong to it then.
		e.mu.Lock()
		current := e.current == s
		e.mu.Unlock()
		if current {
			e.metrics.SessionRunning.Set(0)
			e.metrics.SessionPaused.Set(0)
		}
		close(s.done)
	}()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("dispatcher stopping", "session_id", s.id, "reason", ctx.Err())
			return
		case b, ok := <-in:
			if !ok {
				// The scheduler also closes the channel when a stop cancels
				// it; only a natural end-of-data close publishes the
				// session-ended event.
				if s.ended.Load() {
					e.publishEnded(ctx, s)
				}
				return
			}
			e.publishBatch(ctx, s, b)
		}
	}
}

func (e *Engine) publishBatch(ctx context.Context, s *session, b domain.Batch) {
	s.published.Add(int64(len(b.Records)))
	s.lastWindow.Store(b.WindowEnd.UnixNano())
	// Fires from the previous window have faded by the time this one is
	// published, so the latest batch size is the active-marker estimate.
	s.activeFires.Store(int64(len(b.Records)))

	tier, _ := domain.SpeedTierFor(b.Speed)
	update := domain.BatchUpdate{
		SessionID:   s.id,
		Fires:       b.Records,
		Timestamp:   b.WindowEnd,
		Speed:       b.Speed,
		FadeSeconds: tier.FadeSeconds(),
		Statistics:  s.statistics(),
	}
	if err := e.publisher.PublishBatch(ctx, update); err != nil {
		// One bad batch never terminates the session.
		e.logger.Warn("publish batch failed, continuing",
			"session_id", s.id, "window_end", b.WindowEnd, "error", err)
		e.metrics.PublishErrors.Inc()
	}
}

func (e *Engine) publishEnded(ctx context.Context, s *session) {
	ended := domain.SessionEnded{
		SessionID:  s.id,
		EndedAt:    s.cursorTime(),
		Statistics: s.statistics(),
	}
	if err := e.publisher.PublishSessionEnded(ctx, ended); err != nil {
		e.logger.Warn("publish session ended failed", "session_id", s.id, "error", err)
		e.metrics.PublishErrors.Inc()
	}
	e.logger.Info("playback session ended",
		"session_id", s.id,
		"emitted_records", s.emitted.Load(),
		"published_records", s.published.Load(),
	)
}
