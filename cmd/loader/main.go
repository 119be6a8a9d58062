// Command loader imports NASA FIRMS archive JSON exports into the SQLite
// detection store the replay service reads from. Records from all input files
// are merged, sorted by acquisition time, assigned sequential IDs, and written
// in batches.
//
// Usage:
//
//	go run ./cmd/loader \
//	  -db fire_data.db \
//	  -batch-size 500 \
//	  data/viirs_ukraine_2023.json data/modis_ukraine_2023.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
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
	batchSize := flag.Int("batch-size", 500, "insert transaction size")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return fmt.Errorf("at least one FIRMS JSON export is required")
	}
	if *batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive")
	}

	var events []domain.FireEvent
	var skipped int
	for _, path := range flag.Args() {
		loaded, bad, err := loadExport(path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		events = append(events, loaded...)
		skipped += bad
		log.Printf("%s: %d records (%d unparseable skipped)", path, len(loaded), bad)
	}
	if len(events) == 0 {
		return fmt.Errorf("no parseable detections in input files")
	}

	// The replay scheduler assumes time-ordered storage; sort before assigning
	// IDs so record order and ID order agree.
	sort.SliceStable(events, func(i, j int) bool { return events[i].Time.Before(events[j].Time) })
	for i := range events {
		events[i].ID = int64(i + 1)
	}

	store, err := sqlite.Open(*dbPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	for start := 0; start < len(events); start += *batchSize {
		end := min(start+*batchSize, len(events))
		if err := store.InsertBatch(ctx, events[start:end]); err != nil {
			return fmt.Errorf("inserting records %d-%d: %w", start+1, end, err)
		}
	}

	log.Printf("loaded %d detections into %s (%s to %s)",
		len(events), *dbPath,
		events[0].Time.Format(time.RFC3339),
		events[len(events)-1].Time.Format(time.RFC3339))
	printStats(events)
	return nil
}

// loadExport parses one FIRMS JSON export. Unparseable records are skipped and
// counted rather than aborting the import.
func loadExport(path string) ([]domain.FireEvent, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	var raws []domain.RawFIRMSRecord
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, 0, fmt.Errorf("parse JSON: %w", err)
	}

	var events []domain.FireEvent
	var skipped int
	for i, raw := range raws {
		event, err := domain.ParseRawFIRMS(raw)
		if err != nil {
			log.Printf("%s record %d: %v", path, i, err)
			skipped++
			continue
		}
		events = append(events, event)
	}
	return events, skipped, nil
}

func printStats(events []domain.FireEvent) {
	byInstrument := map[string]int{}
	byConfidence := map[domain.Confidence]int{}
	byDay := map[string]int{}
	for i := range events {
		byInstrument[events[i].Instrument]++
		byConfidence[events[i].Confidence]++
		byDay[events[i].DayNight]++
	}

	fmt.Println("\n=== Import summary ===")
	fmt.Printf("Total: %d\n", len(events))
	fmt.Printf("By instrument:")
	for instrument, n := range byInstrument {
		fmt.Printf(" %s=%d", instrument, n)
	}
	fmt.Printf("\nBy confidence: low=%d, medium=%d, high=%d\n",
		byConfidence[domain.ConfidenceLow], byConfidence[domain.ConfidenceMedium], byConfidence[domain.ConfidenceHigh])
	fmt.Printf("Day/night: D=%d, N=%d, U=%d\n", byDay["D"], byDay["N"], byDay["U"])
}
