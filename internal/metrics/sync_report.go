package metrics

import (
	"fmt"
	"time"
)

// SyncReport summarises a local-to-durable synchronisation run.
type SyncReport struct {
	StartTime time.Time `json:"-"`
	LatencyMs float64   `json:"latencyMs"`
	Scanned   int       `json:"scanned"`
	Inserted  int       `json:"inserted"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	Indexed   int       `json:"indexed"`
}

func NewSyncReport() *SyncReport {
	return &SyncReport{StartTime: time.Now()}
}

// Finish stops the timer.
func (r *SyncReport) Finish() {
	r.LatencyMs = float64(time.Since(r.StartTime).Microseconds()) / 1000.0
}

// Success reports whether every scanned project ended up in the durable store.
func (r *SyncReport) Success() bool {
	return r.Failed == 0
}

// GetSummary returns a human-readable summary of the run.
func (r *SyncReport) GetSummary() string {
	return fmt.Sprintf(
		"Sync Summary: %d scanned, %d inserted, %d already present, %d failed, %d indexed (%.2f ms)",
		r.Scanned, r.Inserted, r.Skipped, r.Failed, r.Indexed, r.LatencyMs,
	)
}
