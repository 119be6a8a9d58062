package engine

import (
	"context"
	"time"

	"github.com/scott4ai/ukraine-fire-tracking/internal/domain"
)

// runScheduler is the producer loop. It polls every pollInterval, advances
// the simulated cursor by the active tier once per tickInterval of wall time,
// queries the store over the half-open window, and pushes the batch onto the
// replay channel. Closing the channel is the end-of-data sentinel; it happens
// exactly once, on natural completion or on genuine end-of-data.
func (e *Engine) runScheduler(ctx context.Context, s *session, out chan domain.Batch) {
	defer close(out)

	if total, err := e.store.CountInterval(ctx, s.rangeStart, s.rangeEnd); err != nil {
		e.logger.Warn("counting session records failed", "session_id", s.id, "error", err)
		e.metrics.StoreErrors.Inc()
	} else {
		s.totalRecords.Store(total)
		e.logger.Info("scheduler started", "session_id", s.id, "total_records", total)
	}

	lastTick := e.clock.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.clock.After(pollInterval):
		}
		if !s.running.Load() {
			return
		}
		// Pause skips the whole tick body: no query, no cursor advance, and
		// no end-of-data probe. Termination can never fire while paused.
		if s.paused.Load() {
			continue
		}
		if e.clock.Since(lastTick) < tickInterval {
			continue
		}

		cursor := s.cursorTime()
		tier := s.speed.Load()
		next := cursor.Add(tier.Advance)
		if next.After(s.rangeEnd) {
			next = s.rangeEnd
		}

		records := e.queryInterval(ctx, s, cursor, next)
		if ctx.Err() != nil {
			return
		}

		// An empty window mid-range is either a transient gap or the end of
		// available data. Probe a much wider window to tell them apart.
		if len(records) == 0 && cursor.Before(s.rangeEnd) {
			probeEnd := cursor.Add(lookaheadWindow)
			if probeEnd.After(s.rangeEnd) {
				probeEnd = s.rangeEnd
			}
			probe := e.queryInterval(ctx, s, cursor, probeEnd)
			if ctx.Err() != nil {
				return
			}
			if len(probe) == 0 {
				s.ended.Store(true)
				e.logger.Info("no detections beyond cursor, ending replay",
					"session_id", s.id, "cursor", cursor)
				return
			}
		}

		batch := domain.Batch{
			SessionID:   s.id,
			Records:     records,
			WindowStart: cursor,
			WindowEnd:   next,
			Speed:       tier.Key,
		}
		if !e.push(ctx, out, batch) {
			return
		}

		s.cursor.Store(next.UnixNano())
		s.emitted.Add(int64(len(records)))
		e.metrics.BatchesEmitted.Inc()
		e.metrics.RecordsEmitted.Add(float64(len(records)))
		e.metrics.BatchSize.Observe(float64(len(records)))
		lastTick = e.clock.Now()

		if !next.Before(s.rangeEnd) {
			s.ended.Store(true)
			e.logger.Info("replay reached end of range", "session_id", s.id)
			return
		}
	}
}

// queryInterval applies the engine's store-fault policy: an error is logged
// and counted, then treated as "no data this tick". A persistent fault is
// therefore indistinguishable from genuinely sparse data and can trigger an
// end-of-data transition; the fault never escalates past the session.
func (e *Engine) queryInterval(ctx context.Context, s *session, start, end time.Time) []domain.FireEvent {
	began := time.Now()
	records, err := e.store.QueryInterval(ctx, start, end)
	e.metrics.QueryDuration.Observe(time.Since(began).Seconds())
	if err != nil {
		if ctx.Err() == nil {
			e.logger.Error("store query failed, treating interval as empty",
				"session_id", s.id,
				"window_start", start,
				"window_end", end,
				"error", err,
			)
			e.metrics.StoreErrors.Inc()
		}
		return []domain.FireEvent{}
	}
	if records == nil {
		records = []domain.FireEvent{}
	}
	return records
}

// push applies the configured overflow policy. Under OverflowBlock the
// scheduler waits for channel space (true backpressure); a sustained slow
// consumer stretches the tick cadence but never loses data. Returns false
// when the session context is cancelled mid-push.
func (e *Engine) push(ctx context.Context, out chan domain.Batch, b domain.Batch) bool {
	switch e.policy {
	case OverflowDropNewest:
		select {
		case <-ctx.Done():
			return false
		case out <- b:
			return true
		default:
			e.metrics.DroppedBatches.Inc()
			e.logger.Warn("replay channel full, dropping newest batch",
				"window_end", b.WindowEnd, "records", len(b.Records))
			return true
		}
	case OverflowDropOldest:
		for {
			select {
			case <-ctx.Done():
				return false
			case out <- b:
				return true
			default:
			}
			// Make room by discarding the oldest buffered batch, then retry.
			select {
			case dropped := <-out:
				e.metrics.DroppedBatches.Inc()
				e.logger.Warn("replay channel full, dropping oldest batch",
					"window_end", dropped.WindowEnd, "records", len(dropped.Records))
			default:
			}
		}
	default: // OverflowBlock
		select {
		case <-ctx.Done():
			return false
		case out <- b:
			return true
		}
	}
}
