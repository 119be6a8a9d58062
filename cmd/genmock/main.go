// Command genmock generates a deterministic mock detection database for local
// development and demos. Detections are spread over a date range inside the
// Ukraine bounding box with a fixed random seed, so repeated runs produce the
// same database.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -db fire_data.db \
//	  -start 2023-02-24 -days 30 \
//	  -per-day 40
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/scott4ai/ukraine-fire-tracking/internal/adapter/sqlite"
	"github.com/scott4ai/ukraine-fire-tracking/internal/domain"
)

// Ukraine bounding box, matching the map viewport the mock data is meant for.
const (
	latMin = 44.0
	latMax = 52.5
	lonMin = 22.0
	lonMax = 40.5
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dbPath := flag.String("db", "fire_data.db", "path to the SQLite detection store to create")
	start := flag.String("start", "2023-02-24", "first day of mock data (YYYY-MM-DD)")
	days := flag.Int("days", 30, "number of days to cover")
	perDay := flag.Int("per-day", 40, "average detections per day")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	startDay, err := time.ParseInLocation("2006-01-02", *start, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}
	if *days <= 0 || *perDay <= 0 {
		return fmt.Errorf("-days and -per-day must be positive")
	}

	events := generate(rand.New(rand.NewSource(*seed)), startDay, *days, *perDay)

	store, err := sqlite.Open(*dbPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	if err := store.InsertBatch(context.Background(), events); err != nil {
		return fmt.Errorf("inserting mock detections: %w", err)
	}

	log.Printf("wrote %d mock detections to %s (%s, %d days)",
		len(events), *dbPath, *start, *days)
	return nil
}

func generate(rng *rand.Rand, startDay time.Time, days, perDay int) []domain.FireEvent {
	var events []domain.FireEvent
	id := int64(1)

	for day := 0; day < days; day++ {
		// Vary the daily count ±50% so replay has quiet and busy windows.
		count := perDay/2 + rng.Intn(perDay+1)
		for i := 0; i < count; i++ {
			events = append(events, mockDetection(rng, id, startDay.AddDate(0, 0, day)))
			id++
		}
	}

	// Minute offsets are random within each day; restore global time order
	// before assigning positions in the store.
	for i := 1; i < len(events); i++ {
		for j := i; j > 0 && events[j].Time.Before(events[j-1].Time); j-- {
			events[j], events[j-1] = events[j-1], events[j]
		}
	}
	for i := range events {
		events[i].ID = int64(i + 1)
	}
	return events
}

func mockDetection(rng *rand.Rand, id int64, day time.Time) domain.FireEvent {
	minute := rng.Intn(24 * 60)
	ts := day.Add(time.Duration(minute) * time.Minute)

	instrument, satellite := "VIIRS", "N"
	if rng.Intn(3) == 0 {
		instrument, satellite = "MODIS", "Terra"
	}

	confidence := domain.ConfidenceLow
	switch rng.Intn(3) {
	case 1:
		confidence = domain.ConfidenceMedium
	case 2:
		confidence = domain.ConfidenceHigh
	}

	dayNight := "N"
	if minute >= 6*60 && minute < 18*60 {
		dayNight = "D"
	}

	return domain.FireEvent{
		ID:         id,
		Time:       ts,
		Lat:        latMin + rng.Float64()*(latMax-latMin),
		Lon:        lonMin + rng.Float64()*(lonMax-lonMin),
		Brightness: 300 + rng.Float64()*80,
		BrightT31:  280 + rng.Float64()*25,
		FRP:        rng.Float64() * 60,
		Confidence: confidence,
		Scan:       0.3 + rng.Float64()*0.5,
		Track:      0.3 + rng.Float64()*0.4,
		Satellite:  satellite,
		Instrument: instrument,
		DayNight:   dayNight,
		Version:    "2.0NRT",
	}
}
