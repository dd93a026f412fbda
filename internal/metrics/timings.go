package metrics

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// AnalysisTimings collects per-facet latencies of a single analysis run.
// Facets are timed from concurrent goroutines.
type AnalysisTimings struct {
	mu sync.Mutex

	ProjectID int64
	start     time.Time
	TotalMs   float64
	Facets    map[string]float64
}

// NewAnalysisTimings starts timing an analysis of the given project.
func NewAnalysisTimings(projectID int64) *AnalysisTimings {
	return &AnalysisTimings{
		ProjectID: projectID,
		start:     time.Now(),
		Facets:    make(map[string]float64),
	}
}

// Track runs fn and records how long it took under facet.
func (t *AnalysisTimings) Track(facet string, fn func()) time.Duration {
	begin := time.Now()
	fn()
	d := time.Since(begin)

	t.mu.Lock()
	t.Facets[facet] = float64(d.Microseconds()) / 1000.0
	t.mu.Unlock()
	return d
}

// Finalize stops the total timer and returns the total duration.
func (t *AnalysisTimings) Finalize() time.Duration {
	d := time.Since(t.start)
	t.mu.Lock()
	t.TotalMs = float64(d.Microseconds()) / 1000.0
	t.mu.Unlock()
	return d
}

// Slowest returns the facet that took the longest.
func (t *AnalysisTimings) Slowest() (string, float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var name string
	var ms float64
	for facet, v := range t.Facets {
		if name == "" || v > ms {
			name, ms = facet, v
		}
	}
	return name, ms
}

// LogAttrs renders the timings as structured log attributes.
func (t *AnalysisTimings) LogAttrs() []any {
	t.mu.Lock()
	defer t.mu.Unlock()

	names := make([]string, 0, len(t.Facets))
	for facet := range t.Facets {
		names = append(names, facet)
	}
	sort.Strings(names)

	attrs := make([]any, 0, len(names)+2)
	attrs = append(attrs, slog.Int64("project_id", t.ProjectID), slog.String("total_ms", formatFloat(t.TotalMs)))
	for _, facet := range names {
		attrs = append(attrs, slog.String(facet+"_ms", formatFloat(t.Facets[facet])))
	}
	return attrs
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}
