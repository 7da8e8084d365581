package datadog

import (
	"testing"

	"github.com/siddharth-krishna/xl2times/internal/metrics"
)

func TestNewBackend_RequiresAddr(t *testing.T) {
	if _, err := NewBackend(Config{}); err == nil {
		t.Fatal("expected error for empty Addr")
	}
}

func TestNewBackend_WithOptions(t *testing.T) {
	// DogStatsD is UDP; construction succeeds without a running agent.
	b, err := NewBackend(Config{
		Addr:       "127.0.0.1:8125",
		Namespace:  "dd2csv.",
		GlobalTags: []string{"env:test"},
	})
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}

	b.IncCounter("dd2csv_records_total", 1, metrics.Labels{"kind": "set"})
	b.ObserveDuration("dd2csv_step_duration_seconds", 0.1, metrics.Labels{"step": "parse", "status": "success"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
}

func TestLabelsToTags(t *testing.T) {
	if got := labelsToTags(nil); got != nil {
		t.Fatalf("expected nil tags for empty labels, got %v", got)
	}
	tags := labelsToTags(metrics.Labels{"kind": "parameter"})
	if len(tags) != 1 || tags[0] != "kind:parameter" {
		t.Fatalf("unexpected tags: %v", tags)
	}
}
