package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestStatsSnapshotPercentiles(t *testing.T) {
	stats := NewStats(time.Hour)
	for _, ms := range []int64{500, 100, 300, 200, 400} {
		stats.Record(time.Duration(ms)*time.Millisecond, false)
	}

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
}

func TestStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewStats(10 * time.Millisecond)
	stats.Record(100*time.Millisecond, true)
	time.Sleep(25 * time.Millisecond)

	if snap := stats.Snapshot(); snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	stats.Record(200*time.Millisecond, false)
	snap := stats.Snapshot()
	if snap.Count != 1 || snap.Failed != 0 {
		t.Fatalf("expected one fresh successful sample, got %+v", snap)
	}
}

func TestStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.Record(-10*time.Millisecond, false)
	snap := stats.Snapshot()
	if snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

type stubCompleter struct {
	out string
	err error
}

func (s stubCompleter) Complete(context.Context, string, string) (string, error) { return s.out, s.err }
func (s stubCompleter) Model() string                                             { return "stub" }

func TestTimedRecordsFailures(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	stats := NewStats(time.Hour)

	ok := NewTimed(stubCompleter{out: "{}"}, stats, log)
	if out, err := ok.Complete(context.Background(), "s", "p"); err != nil || out != "{}" {
		t.Fatalf("unexpected result %q, %v", out, err)
	}

	boom := errors.New("boom")
	bad := NewTimed(stubCompleter{err: &StatusError{StatusCode: 503, Message: "down"}}, stats, log)
	_, err := bad.Complete(context.Background(), "s", "p")
	var se *StatusError
	if !errors.As(err, &se) || !se.Transient() {
		t.Fatalf("expected transient StatusError, got %v", err)
	}
	if _, err := NewTimed(stubCompleter{err: boom}, stats, log).Complete(context.Background(), "s", "p"); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	snap := stats.Snapshot()
	if snap.Count != 3 || snap.Failed != 2 {
		t.Fatalf("expected 3 calls with 2 failures, got %+v", snap)
	}
	if bad.Model() != "stub" {
		t.Errorf("expected model passthrough, got %q", bad.Model())
	}
}
