package perf

import (
	"sort"
	"sync"
)

// sampleCap bounds the request-duration reservoir used for percentiles.
// Once full, oldest samples are overwritten.
const sampleCap = 8192

// PathStat aggregates timings for one HTTP path or one store operation.
type PathStat struct {
	Path    string
	Count   int
	TotalMs float64
	MaxMs   float64
	AvgMs   float64
}

// Snapshot is the aggregated view rendered by the admin perf page.
type Snapshot struct {
	TotalRequests  int64
	TotalQueries   int64
	RequestP50Ms   float64
	RequestP95Ms   float64
	RequestP99Ms   float64
	SlowestPaths   []PathStat
	SlowestQueries []PathStat
}

// Collector accumulates request and query timings since process start.
// Writes hold the mutex for a map bump only; aggregation cost is paid
// on Snapshot.
type Collector struct {
	mu        sync.Mutex
	requests  map[string]*PathStat
	queries   map[string]*PathStat
	samples   []float64
	pos       int
	nRequests int64
	nQueries  int64
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{
		requests: make(map[string]*PathStat),
		queries:  make(map[string]*PathStat),
		samples:  make([]float64, 0, sampleCap),
	}
}

// RecordRequest adds one HTTP request timing.
// POST: request totals and the percentile reservoir are updated
func (c *Collector) RecordRequest(path string, durationMs float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nRequests++
	bump(c.requests, path, durationMs)
	if len(c.samples) < sampleCap {
		c.samples = append(c.samples, durationMs)
		return
	}
	c.samples[c.pos] = durationMs
	c.pos = (c.pos + 1) % sampleCap
}

// RecordQuery adds one store operation timing.
func (c *Collector) RecordQuery(op string, durationMs float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nQueries++
	bump(c.queries, op, durationMs)
}

func bump(stats map[string]*PathStat, path string, ms float64) {
	s, ok := stats[path]
	if !ok {
		s = &PathStat{Path: path}
		stats[path] = s
	}
	s.Count++
	s.TotalMs += ms
	if ms > s.MaxMs {
		s.MaxMs = ms
	}
}

// TotalRecorded returns the number of requests recorded so far.
func (c *Collector) TotalRecorded() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nRequests
}

// Snapshot computes the aggregated view: request percentiles plus the
// topN slowest paths and store operations by average duration. Sorts,
// so keep it off hot paths.
func (c *Collector) Snapshot(topN int) Snapshot {
	c.mu.Lock()
	snap := Snapshot{
		TotalRequests:  c.nRequests,
		TotalQueries:   c.nQueries,
		SlowestPaths:   topByAvg(c.requests, topN),
		SlowestQueries: topByAvg(c.queries, topN),
	}
	sorted := make([]float64, len(c.samples))
	copy(sorted, c.samples)
	c.mu.Unlock()

	if len(sorted) > 0 {
		sort.Float64s(sorted)
		snap.RequestP50Ms = percentile(sorted, 50)
		snap.RequestP95Ms = percentile(sorted, 95)
		snap.RequestP99Ms = percentile(sorted, 99)
	}
	return snap
}

// percentile returns the p-th percentile from a sorted slice, with
// linear interpolation between neighbours.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p / 100) * float64(len(sorted)-1)
	lo := int(rank)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}

// topByAvg returns up to n stats sorted by average duration, slowest
// first. Averages are computed here so callers see consistent values.
func topByAvg(byKey map[string]*PathStat, n int) []PathStat {
	top := make([]PathStat, 0, len(byKey))
	for _, s := range byKey {
		copied := *s
		copied.AvgMs = copied.TotalMs / float64(copied.Count)
		top = append(top, copied)
	}
	sort.Slice(top, func(i, j int) bool {
		return top[i].AvgMs > top[j].AvgMs
	})
	if len(top) > n {
		top = top[:n]
	}
	return top
}
