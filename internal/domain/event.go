package domain

import (
	"time"
)

// Confidence is the normalized detection confidence shared by VIIRS and MODIS
// records. See [NormalizeConfidence] for the mapping from raw instrument values.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Correlation holds the annotation produced by the offline matching job that
// links a fire detection to a documented violent incident. It is present only
// on records the job has matched; unmatched records carry a nil pointer.
type Correlation struct {
	Confidence string `json:"confidence"`
	EventType  string `json:"event_type"`
	PlaceName  string `json:"place_name,omitempty"`
}

// FireEvent is one satellite fire detection as stored in the fire_events table.
type FireEvent struct {
	ID            int64      `json:"id"`
	Time          time.Time  `json:"datetime_utc"`
	Lat           float64    `json:"latitude"`
	Lon           float64    `json:"longitude"`
	Brightness    float64    `json:"brightness"`
	BrightT31     float64    `json:"bright_t31"` // background brightness temperature (channel 31)
	FRP           float64    `json:"frp"`        // fire radiative power, MW
	Confidence    Confidence `json:"confidence"`
	Scan          float64    `json:"scan"`
	Track         float64    `json:"track"`
	Satellite     string     `json:"satellite"`
	Instrument    string     `json:"instrument"`
	DayNight      string     `json:"daynight"`
	DetectionType int        `json:"type"`
	Version       string     `json:"version"`

	// Match is resolved once at the store-reader boundary; consumers test the
	// pointer rather than re-checking sparse columns.
	Match *Correlation `json:"match,omitempty"`
}

// Matched reports whether the offline correlation job annotated this detection.
func (e FireEvent) Matched() bool { return e.Match != nil }

// Batch is one tick's worth of detections. Records all lie in the half-open
// window (WindowStart, WindowEnd]. Batches from one session are contiguous:
// each batch's WindowStart equals the previous batch's WindowEnd.
type Batch struct {
	SessionID   string      `json:"session_id"`
	Records     []FireEvent `json:"records"`
	WindowStart time.Time   `json:"window_start"`
	WindowEnd   time.Time   `json:"window_end"`
	Speed       string      `json:"speed"`
}

// Statistics is a merged snapshot of the scheduler's session counters and the
// dispatcher's running totals.
type Statistics struct {
	SessionID        string     `json:"session_id,omitempty"`
	Running          bool       `json:"is_running"`
	Paused           bool       `json:"is_paused"`
	Speed            string     `json:"speed,omitempty"`
	CurrentDatetime  *time.Time `json:"current_datetime,omitempty"` // simulated cursor
	TotalRecords     int64      `json:"total_records"`              // store count over the session range
	ProcessedRecords int64      `json:"processed_records"`          // records pushed by the scheduler
	TotalFires       int64      `json:"total_fires"`                // records published by the dispatcher
	ActiveFires      int64      `json:"active_count"`               // fires lit on the map before fade
	CurrentTime      *time.Time `json:"current_time,omitempty"`     // last published window end
}

// BatchUpdate is the consolidated per-tick event published to subscribers.
type BatchUpdate struct {
	SessionID   string      `json:"session_id"`
	Fires       []FireEvent `json:"fires"`
	Timestamp   time.Time   `json:"timestamp"` // window end
	Speed       string      `json:"speed"`
	FadeSeconds float64     `json:"fade_duration"`
	Statistics  Statistics  `json:"statistics"`
}

// SessionEnded is published exactly once when a session runs out of data or
// reaches the end of its range.
type SessionEnded struct {
	SessionID  string     `json:"session_id"`
	EndedAt    time.Time  `json:"ended_at"` // final simulated cursor
	Statistics Statistics `json:"statistics"`
}
