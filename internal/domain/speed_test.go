package domain_test

import (
	"testing"
	"time"

	"github.com/scott4ai/ukraine-fire-tracking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpeedTierFor(t *testing.T) {
	tier, ok := domain.SpeedTierFor("normal")
	require.True(t, ok)
	assert.Equal(t, 72*time.Hour, tier.Advance)
	assert.Equal(t, 500, tier.Capacity)
	assert.Equal(t, time.Second, tier.Fade)
	assert.Equal(t, "3 days/sec", tier.Label)

	_, ok = domain.SpeedTierFor("ludicrous")
	assert.False(t, ok)
}

func TestSpeedTiers_OrderedAndConsistent(t *testing.T) {
	tiers := domain.SpeedTiers()
	require.Len(t, tiers, 5)

	for i := 1; i < len(tiers); i++ {
		assert.Greater(t, tiers[i].Advance, tiers[i-1].Advance, "tiers must be ordered slowest to fastest")
		assert.GreaterOrEqual(t, tiers[i].Capacity, tiers[i-1].Capacity, "faster tiers buffer at least as much")
		assert.LessOrEqual(t, tiers[i].Fade, tiers[i-1].Fade, "faster tiers fade at least as quickly")
	}

	for _, tier := range tiers {
		assert.Equal(t, tier.Advance, time.Duration(tier.Hours)*time.Hour, "Hours must mirror Advance")
	}

	_, ok := domain.SpeedTierFor(domain.DefaultSpeed)
	assert.True(t, ok, "default speed must be in the catalog")
}

func TestDefaultRange(t *testing.T) {
	now := time.Date(2023, 8, 15, 10, 30, 0, 0, time.FixedZone("EEST", 3*60*60))

	start, end := domain.DefaultRange(now)
	assert.Equal(t, now.UTC(), end)
	assert.Equal(t, end.AddDate(0, 0, -730), start)
	assert.Equal(t, time.UTC, start.Location())
}

func TestSpeedTiers_ReturnsCopy(t *testing.T) {
	tiers := domain.SpeedTiers()
	tiers[0].Capacity = 9999

	again := domain.SpeedTiers()
	assert.Equal(t, 100, again[0].Capacity)
}
