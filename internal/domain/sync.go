package domain

import (
	"errors"
	"time"
)

// ErrMalformedItem marks a scraped item missing a title, link or an
// extractable platform id. Such items are skipped, never fatal.
var ErrMalformedItem = errors.New("malformed item")

// SyncStats holds statistics about one pipeline run.
type SyncStats struct {
	RunID     string
	Fetched   int
	New       int
	Malformed int
	Batches   int
	Published int
	Ambiguous bool
	Degraded  bool
	Duration  time.Duration
}
