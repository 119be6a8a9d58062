package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// earthRadiusKm is the mean Earth radius used by the great-circle distance.
const earthRadiusKm = 6371

// Incident is one conflict-event record from a VIINA export, the candidate
// side of fire-to-incident matching.
type Incident struct {
	Time      time.Time
	Lat       float64
	Lon       float64
	PlaceName string
	EventType string
	Headline  string
}

// RawIncident is an incident as the JSON exports carry it.
type RawIncident struct {
	Datetime  string  `json:"datetime"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	PlaceName string  `json:"place_name"`
	EventType string  `json:"event_type"`
	Headline  string  `json:"headline"`
}

var incidentTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseRawIncident converts a raw incident record. Records with no event type
// default to "loc": every export row at least carries a location.
func ParseRawIncident(raw RawIncident) (Incident, error) {
	var t time.Time
	var err error
	for _, layout := range incidentTimeLayouts {
		t, err = time.ParseInLocation(layout, strings.TrimSpace(raw.Datetime), time.UTC)
		if err == nil {
			break
		}
	}
	if err != nil {
		return Incident{}, fmt.Errorf("parse incident time %q: %w", raw.Datetime, err)
	}
	return Incident{
		Time:      t,
		Lat:       raw.Lat,
		Lon:       raw.Lon,
		PlaceName: raw.PlaceName,
		EventType: defaultString(raw.EventType, "loc"),
		Headline:  raw.Headline,
	}, nil
}

// HaversineKm returns the great-circle distance between two points in
// kilometers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// MatchConfidence grades a fire-to-incident match by spatial and temporal
// proximity: within 1km and 2h is high, within 2km and 6h is medium,
// anything else that matched at all is low.
func MatchConfidence(distanceKm float64, timeDiff time.Duration) string {
	switch {
	case distanceKm <= 1 && timeDiff <= 2*time.Hour:
		return "high"
	case distanceKm <= 2 && timeDiff <= 6*time.Hour:
		return "medium"
	default:
		return "low"
	}
}

// MatchIncident finds the annotation for one detection: the first incident
// within maxDistanceKm and ±window of the detection wins. Reports false when
// no incident qualifies.
func MatchIncident(e FireEvent, incidents []Incident, maxDistanceKm float64, window time.Duration) (Correlation, bool) {
	for _, inc := range incidents {
		diff := e.Time.Sub(inc.Time)
		if diff < 0 {
			diff = -diff
		}
		if diff > window {
			continue
		}
		distance := HaversineKm(e.Lat, e.Lon, inc.Lat, inc.Lon)
		if distance > maxDistanceKm {
			continue
		}
		return Correlation{
			Confidence: MatchConfidence(distance, diff),
			EventType:  inc.EventType,
			PlaceName:  inc.PlaceName,
		}, true
	}
	return Correlation{}, false
}
