// Command correlate annotates stored fire detections with conflict incidents
// from VIINA JSON exports. Each detection is matched to the first incident
// within the distance and time thresholds; the match is written back to the
// store with a confidence grade derived from how close the pair is in space
// and time.
//
// Usage:
//
//	go run ./cmd/correlate \
//	  -db fire_data.db \
//	  -distance 5 -window 12h \
//	  data/viina_2023.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/scott4ai/ukraine-fire-tracking/internal/adapter/sqlite"
	"github.com/scott4ai/ukraine-fire-tracking/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dbPath := flag.String("db", "fire_data.db", "path to the SQLite detection store")
	distance := flag.Float64("distance", 5, "maximum match distance in kilometers")
	window := flag.Duration("window", 12*time.Hour, "maximum time difference between fire and incident")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return fmt.Errorf("at least one VIINA JSON export is required")
	}
	if *distance <= 0 || *window <= 0 {
		return fmt.Errorf("-distance and -window must be positive")
	}

	var incidents []domain.Incident
	var skipped int
	for _, path := range flag.Args() {
		loaded, bad, err := loadIncidents(path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		incidents = append(incidents, loaded...)
		skipped += bad
		log.Printf("%s: %d incidents (%d unparseable skipped)", path, len(loaded), bad)
	}
	if len(incidents) == 0 {
		return fmt.Errorf("no parseable incidents in input files")
	}

	store, err := sqlite.Open(*dbPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	matched, processed, byConfidence, err := annotate(context.Background(), store, incidents, *distance, *window)
	if err != nil {
		return err
	}

	log.Printf("matched %d of %d detections (thresholds: <=%.1fkm, +/-%s)",
		matched, processed, *distance, *window)
	fmt.Println("\n=== Match confidence distribution ===")
	fmt.Printf("high=%d, medium=%d, low=%d\n",
		byConfidence["high"], byConfidence["medium"], byConfidence["low"])
	return nil
}

// annotate matches every stored detection in the incidents' time span and
// writes the annotations back. Already-annotated detections are left alone.
func annotate(ctx context.Context, store *sqlite.Store, incidents []domain.Incident, distanceKm float64, window time.Duration) (matched, processed int, byConfidence map[string]int, err error) {
	spanStart, spanEnd := incidentSpan(incidents)

	// Only detections within the incident span widened by the window can
	// match. The query's lower bound is exclusive, so back off one more
	// second to keep a detection exactly on the boundary.
	events, err := store.QueryInterval(ctx,
		spanStart.Add(-window).Add(-time.Second),
		spanEnd.Add(window))
	if err != nil {
		return 0, 0, nil, fmt.Errorf("querying detections: %w", err)
	}

	byConfidence = map[string]int{}
	for _, e := range events {
		if e.Matched() {
			continue
		}
		processed++
		c, ok := domain.MatchIncident(e, incidents, distanceKm, window)
		if !ok {
			continue
		}
		if err := store.MarkCorrelated(ctx, e.ID, c); err != nil {
			return matched, processed, byConfidence, fmt.Errorf("annotating detection %d: %w", e.ID, err)
		}
		matched++
		byConfidence[c.Confidence]++
	}
	return matched, processed, byConfidence, nil
}

func incidentSpan(incidents []domain.Incident) (start, end time.Time) {
	start, end = incidents[0].Time, incidents[0].Time
	for _, inc := range incidents[1:] {
		if inc.Time.Before(start) {
			start = inc.Time
		}
		if inc.Time.After(end) {
			end = inc.Time
		}
	}
	return start, end
}

// loadIncidents parses one VIINA JSON export. Unparseable records are skipped
// and counted rather than aborting the run.
func loadIncidents(path string) ([]domain.Incident, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	var raws []domain.RawIncident
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, 0, fmt.Errorf("parse JSON: %w", err)
	}

	var incidents []domain.Incident
	var skipped int
	for i, raw := range raws {
		inc, err := domain.ParseRawIncident(raw)
		if err != nil {
			log.Printf("%s record %d: %v", path, i, err)
			skipped++
			continue
		}
		incidents = append(incidents, inc)
	}
	return incidents, skipped, nil
}
