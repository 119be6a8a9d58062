package domain

import "time"

// SpeedTier is one named playback speed. Each tier fixes the simulated time
// advanced per wall-clock second, the replay channel capacity, and the marker
// fade duration as a single immutable bundle; the three are never configured
// independently.
type SpeedTier struct {
	Key      string        `json:"key"`
	Label    string        `json:"label"`
	Advance  time.Duration `json:"-"`             // simulated time per tick
	Hours    int           `json:"hours_per_sec"` // Advance in hours, for the UI
	Capacity int           `json:"-"`             // replay channel capacity
	Fade     time.Duration `json:"-"`             // marker fade duration
}

// FadeSeconds returns the fade duration in seconds for the wire payload.
func (t SpeedTier) FadeSeconds() float64 { return t.Fade.Seconds() }

// DefaultSpeed is the tier used when a start command omits one.
const DefaultSpeed = "slow"

// speedCatalog is ordered slowest to fastest. Faster tiers get larger channel
// capacities because each tick covers more simulated time and so buffers more
// records, and shorter fades so markers keep up with the map.
var speedCatalog = []SpeedTier{
	{Key: "slowest", Label: "6 hrs/sec", Advance: 6 * time.Hour, Hours: 6, Capacity: 100, Fade: 2 * time.Second},
	{Key: "slow", Label: "1 day/sec", Advance: 24 * time.Hour, Hours: 24, Capacity: 100, Fade: 2 * time.Second},
	{Key: "normal", Label: "3 days/sec", Advance: 72 * time.Hour, Hours: 72, Capacity: 500, Fade: time.Second},
	{Key: "fast", Label: "1 week/sec", Advance: 168 * time.Hour, Hours: 168, Capacity: 1000, Fade: 500 * time.Millisecond},
	{Key: "fastest", Label: "2 weeks/sec", Advance: 336 * time.Hour, Hours: 336, Capacity: 2000, Fade: 250 * time.Millisecond},
}

// defaultRangeDays is how far back the clients' initial date range reaches.
const defaultRangeDays = 730

// DefaultRange returns the playback range clients start with: the two years
// ending at now.
func DefaultRange(now time.Time) (start, end time.Time) {
	end = now.UTC()
	return end.AddDate(0, 0, -defaultRangeDays), end
}

// SpeedTierFor looks up a tier by key.
func SpeedTierFor(key string) (SpeedTier, bool) {
	for _, t := range speedCatalog {
		if t.Key == key {
			return t, true
		}
	}
	return SpeedTier{}, false
}

// SpeedTiers returns the catalog ordered slowest to fastest. The returned
// slice is a copy; the catalog itself is immutable.
func SpeedTiers() []SpeedTier {
	out := make([]SpeedTier, len(speedCatalog))
	copy(out, speedCatalog)
	return out
}
