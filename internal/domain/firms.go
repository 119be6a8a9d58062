package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RawFIRMSRecord is one detection as exported by the NASA FIRMS archive, all
// fields as strings the way the JSON exports carry them. acq_date and acq_time
// are the acquisition date ("2023-08-01") and HHMM UTC time ("0106").
type RawFIRMSRecord struct {
	AcqDate    string `json:"acq_date"`
	AcqTime    string `json:"acq_time"`
	Latitude   string `json:"latitude"`
	Longitude  string `json:"longitude"`
	Brightness string `json:"brightness"`
	BrightT31  string `json:"bright_t31"`
	FRP        string `json:"frp"`
	Confidence string `json:"confidence"`
	Scan       string `json:"scan"`
	Track      string `json:"track"`
	Satellite  string `json:"satellite"`
	Instrument string `json:"instrument"`
	DayNight   string `json:"daynight"`
	Type       string `json:"type"`
	Version    string `json:"version"`
}

// NormalizeConfidence maps raw instrument confidence values onto the shared
// three-level scale.
//
// VIIRS reports letters: "n" (nominal) and "l" (low) map to low, "h" to high.
// MODIS reports a 0-100 percentage: ≤30 low, ≤70 medium, above that high.
// Anything unparseable defaults to low.
func NormalizeConfidence(raw, instrument string) Confidence {
	if strings.EqualFold(instrument, "VIIRS") {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "h":
			return ConfidenceHigh
		default:
			return ConfidenceLow
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return ConfidenceLow
	}
	switch {
	case v <= 30:
		return ConfidenceLow
	case v <= 70:
		return ConfidenceMedium
	default:
		return ConfidenceHigh
	}
}

// ParseAcquisition combines a FIRMS acquisition date and HHMM time into a UTC
// timestamp. Three-digit times are zero-padded ("930" → "0930").
func ParseAcquisition(acqDate, acqTime string) (time.Time, error) {
	acqTime = strings.TrimSpace(acqTime)
	if len(acqTime) == 3 {
		acqTime = "0" + acqTime
	}
	if len(acqTime) != 4 {
		return time.Time{}, fmt.Errorf("parse acquisition time %q: want HHMM", acqTime)
	}
	t, err := time.Parse("2006-01-02 1504", strings.TrimSpace(acqDate)+" "+acqTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse acquisition %q %q: %w", acqDate, acqTime, err)
	}
	return t, nil
}

// ParseRawFIRMS converts a raw FIRMS record into a FireEvent, applying the
// archive's documented defaults for absent fields. The caller assigns the ID.
func ParseRawFIRMS(raw RawFIRMSRecord) (FireEvent, error) {
	t, err := ParseAcquisition(raw.AcqDate, raw.AcqTime)
	if err != nil {
		return FireEvent{}, err
	}

	instrument := raw.Instrument
	if instrument == "" {
		instrument = "UNKNOWN"
	}
	satellite := raw.Satellite
	if satellite == "" {
		satellite = "UNKNOWN"
	}

	return FireEvent{
		Time:          t,
		Lat:           parseFloatOrZero(raw.Latitude),
		Lon:           parseFloatOrZero(raw.Longitude),
		Brightness:    parseFloatOrZero(raw.Brightness),
		BrightT31:     parseFloatOrZero(raw.BrightT31),
		FRP:           parseFloatOrZero(raw.FRP),
		Confidence:    NormalizeConfidence(raw.Confidence, instrument),
		Scan:          parseFloatOrDefault(raw.Scan, 1.0),
		Track:         parseFloatOrDefault(raw.Track, 1.0),
		Satellite:     satellite,
		Instrument:    instrument,
		DayNight:      normalizeDayNight(raw.DayNight),
		DetectionType: parseIntOrZero(raw.Type),
		Version:       defaultString(raw.Version, "1.0"),
	}, nil
}

// normalizeDayNight reduces the flag to "D", "N", or "U" for unknown.
func normalizeDayNight(raw string) string {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return "U"
	}
	switch raw[:1] {
	case "D", "N":
		return raw[:1]
	default:
		return "U"
	}
}

func parseFloatOrZero(s string) float64 {
	return parseFloatOrDefault(s, 0)
}

func parseFloatOrDefault(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

func parseIntOrZero(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}

func defaultString(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
