package llm

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"
)

type sample struct {
	at         time.Time
	durationMs int64
	failed     bool
}

// StatsSnapshot aggregates the model calls inside the window.
type StatsSnapshot struct {
	Count  int     `json:"count"`
	Failed int     `json:"failed"`
	MinMs  int64   `json:"min_ms"`
	MaxMs  int64   `json:"max_ms"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
}

// Stats keeps model call latencies for a rolling window.
type Stats struct {
	mu      sync.Mutex
	samples []sample
	window  time.Duration
}

func NewStats(window time.Duration) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	return &Stats{window: window}
}

// Record adds one call. Negative durations count as zero.
func (s *Stats) Record(d time.Duration, failed bool) {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)
	s.samples = append(s.samples, sample{at: now, durationMs: ms, failed: failed})
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(time.Now())
	if len(s.samples) == 0 {
		return StatsSnapshot{}
	}

	snap := StatsSnapshot{Count: len(s.samples)}
	values := make([]int64, 0, len(s.samples))
	var sum int64
	for _, sm := range s.samples {
		values = append(values, sm.durationMs)
		sum += sm.durationMs
		if sm.failed {
			snap.Failed++
		}
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	return snap
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	i := 0
	for i < len(s.samples) && s.samples[i].at.Before(cutoff) {
		i++
	}
	s.samples = s.samples[i:]
}

// percentile interpolates linearly between the closest ranks.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	index := float64(len(sorted)-1) * pct / 100
	lower := int(index)
	if lower+1 >= len(sorted) {
		return float64(sorted[lower])
	}
	lo, hi := float64(sorted[lower]), float64(sorted[lower+1])
	return lo + (hi-lo)*(index-float64(lower))
}

// Timed records every call of the wrapped Completer and logs failures.
type Timed struct {
	next  Completer
	stats *Stats
	log   *slog.Logger
}

func NewTimed(next Completer, stats *Stats, log *slog.Logger) *Timed {
	return &Timed{next: next, stats: stats, log: log}
}

func (t *Timed) Model() string {
	return t.next.Model()
}

func (t *Timed) Stats() *Stats {
	return t.stats
}

func (t *Timed) Complete(ctx context.Context, system, prompt string) (string, error) {
	start := time.Now()
	out, err := t.next.Complete(ctx, system, prompt)
	elapsed := time.Since(start)
	t.stats.Record(elapsed, err != nil)

	if err != nil {
		attrs := []any{"model", t.next.Model(), "duration_ms", elapsed.Milliseconds(), "error", err}
		var se *StatusError
		if errors.As(err, &se) {
			attrs = append(attrs, "status", se.StatusCode, "transient", se.Transient())
		}
		t.log.Warn("llm call failed", attrs...)
		return "", err
	}
	t.log.Debug("llm call", "model", t.next.Model(), "duration_ms", elapsed.Milliseconds(), "chars", len(out))
	return out, nil
}
