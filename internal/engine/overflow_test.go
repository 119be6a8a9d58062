package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/scott4ai/ukraine-fire-tracking/internal/domain"
	"github.com/scott4ai/ukraine-fire-tracking/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOverflowPolicy(t *testing.T) {
	for _, valid := range []string{"block", "drop_oldest", "drop_newest"} {
		p, err := ParseOverflowPolicy(valid)
		require.NoError(t, err)
		assert.Equal(t, OverflowPolicy(valid), p)
	}

	_, err := ParseOverflowPolicy("drop_everything")
	assert.Error(t, err)
}

func policyEngine(policy OverflowPolicy) *Engine {
	return &Engine{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: observability.NewMetricsForTesting(),
		policy:  policy,
	}
}

func batchEndingAt(end time.Time) domain.Batch {
	return domain.Batch{WindowEnd: end, Records: []domain.FireEvent{}}
}

func TestPush_BlockWaitsForSpace(t *testing.T) {
	e := policyEngine(OverflowBlock)
	ch := make(chan domain.Batch, 1)
	ch <- batchEndingAt(time.Unix(1, 0))

	// Free a slot shortly after the push starts blocking.
	go func() {
		time.Sleep(20 * time.Millisecond)
		<-ch
	}()

	ok := e.push(context.Background(), ch, batchEndingAt(time.Unix(2, 0)))
	assert.True(t, ok)

	got := <-ch
	assert.Equal(t, time.Unix(2, 0), got.WindowEnd)
}

func TestPush_BlockAbortsOnCancel(t *testing.T) {
	e := policyEngine(OverflowBlock)
	ch := make(chan domain.Batch, 1)
	ch <- batchEndingAt(time.Unix(1, 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, e.push(ctx, ch, batchEndingAt(time.Unix(2, 0))))
}

func TestPush_DropNewestDiscardsIncoming(t *testing.T) {
	e := policyEngine(OverflowDropNewest)
	ch := make(chan domain.Batch, 1)
	ch <- batchEndingAt(time.Unix(1, 0))

	ok := e.push(context.Background(), ch, batchEndingAt(time.Unix(2, 0)))
	assert.True(t, ok, "drop_newest reports success after discarding")

	// The buffered batch is untouched; the new one was dropped.
	got := <-ch
	assert.Equal(t, time.Unix(1, 0), got.WindowEnd)
	assert.Empty(t, ch)
}

func TestPush_DropOldestMakesRoom(t *testing.T) {
	e := policyEngine(OverflowDropOldest)
	ch := make(chan domain.Batch, 2)
	ch <- batchEndingAt(time.Unix(1, 0))
	ch <- batchEndingAt(time.Unix(2, 0))

	ok := e.push(context.Background(), ch, batchEndingAt(time.Unix(3, 0)))
	assert.True(t, ok)

	// Oldest batch was discarded; FIFO order of the rest is preserved.
	assert.Equal(t, time.Unix(2, 0), (<-ch).WindowEnd)
	assert.Equal(t, time.Unix(3, 0), (<-ch).WindowEnd)
}
