// Package domain models NASA FIRMS fire detection data and the replay
// engine's wire types.
//
// # Data Source
//
// Detections originate from NASA FIRMS (Fire Information for Resource
// Management System) archive exports for the VIIRS and MODIS satellite
// instruments, covering Ukraine and western Russia. The loader command
// ingests the JSON exports into the SQLite fire_events table that the replay
// engine reads.
//
// # FIRMS Data Conventions
//
// Time format:
//
//	acq_date is "YYYY-MM-DD", acq_time is HHMM in 24-hour UTC notation,
//	e.g. "0106" = 01:06 UTC. Three-digit values are zero-padded:
//	"930" → "0930". Combined by [ParseAcquisition].
//
// Confidence encoding (varies by instrument):
//
//	VIIRS: letters — "l" (low), "n" (nominal), "h" (high).
//	MODIS: a 0–100 percentage.
//	Both are normalized to the three-level scale low/medium/high by
//	[NormalizeConfidence]: VIIRS l/n → low, h → high; MODIS ≤30 low,
//	≤70 medium, >70 high. Unparseable values default to low.
//
// Intensity metrics:
//
//	brightness  — fire pixel brightness temperature (Kelvin)
//	bright_t31  — background brightness temperature, channel 31 (Kelvin)
//	frp         — fire radiative power (megawatts); drives marker size
//
// Defaults for absent fields follow the archive documentation: frp 0.0,
// confidence low, scan/track 1.0, daynight "U", type 0, version "1.0".
//
// # Correlation Annotations
//
// An offline matching job (external to this service) correlates detections
// with documented violent incidents by spatial and temporal proximity and
// writes its verdict into nullable columns on fire_events. The store reader
// resolves those columns into the optional [Correlation] sub-record exactly
// once; everything downstream tests FireEvent.Match for nil instead of
// re-interpreting sparse columns.
//
// # Speed Catalog
//
// Playback speed is a closed set of named tiers (see [SpeedTiers]), each a
// deterministic bundle of simulated-hours-per-second, replay channel
// capacity, and marker fade duration. Tiers are process-wide constants; a
// client selects a tier by key and never configures the parts independently.
package domain
