package kafka

import (
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scott4ai/ukraine-fire-tracking/internal/domain"
)

func headerValue(t *testing.T, msg kafkago.Message, key string) string {
	t.Helper()
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	t.Fatalf("header %q not found", key)
	return ""
}

func TestSerializeToMessage_Batch(t *testing.T) {
	now := time.Date(2023, 2, 24, 6, 0, 0, 0, time.UTC)
	update := domain.BatchUpdate{
		SessionID: "sess-1",
		Fires: []domain.FireEvent{
			{ID: 7, Time: now.Add(-30 * time.Minute), Lat: 48.45, Lon: 35.02, Confidence: domain.ConfidenceHigh},
		},
		Timestamp:   now,
		Speed:       "slow",
		FadeSeconds: 2,
	}

	msg, err := serializeToMessage(update.SessionID, eventTypeBatch, update.Timestamp, update)
	require.NoError(t, err)

	assert.Equal(t, []byte("sess-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"speed":"slow"`)
	assert.Contains(t, string(msg.Value), `"fade_duration":2`)
	assert.Equal(t, "fire_batch", headerValue(t, msg, "event_type"))
	assert.Equal(t, "2023-02-24T06:00:00Z", headerValue(t, msg, "simulated_at"))
}

func TestSerializeToMessage_SessionEnded(t *testing.T) {
	now := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	ended := domain.SessionEnded{
		SessionID: "sess-1",
		EndedAt:   now,
		Statistics: domain.Statistics{
			SessionID:    "sess-1",
			TotalRecords: 42,
			TotalFires:   42,
		},
	}

	msg, err := serializeToMessage(ended.SessionID, eventTypeSessionEnded, ended.EndedAt, ended)
	require.NoError(t, err)

	assert.Equal(t, []byte("sess-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"total_records":42`)
	assert.Equal(t, "session_ended", headerValue(t, msg, "event_type"))
}
