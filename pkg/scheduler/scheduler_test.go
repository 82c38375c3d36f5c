package scheduler

import (
	"strings"
	"testing"
	"time"
)

func TestAddJobValidExpression(t *testing.T) {
	s := NewService()

	if err := s.AddJob("retrain", "0 3 * * *", func() {}); err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}

	s.Start()
	defer s.Stop()

	next, ok := s.NextRun("retrain")
	if !ok {
		t.Fatal("NextRun did not find the registered job")
	}
	if next.IsZero() {
		t.Error("next run time not computed after Start")
	}
	if !next.After(time.Now()) {
		t.Errorf("next run %v is not in the future", next)
	}
}

func TestAddJobInvalidExpression(t *testing.T) {
	s := NewService()

	err := s.AddJob("retrain", "not a cron expr", func() {})
	if err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
	if !strings.Contains(err.Error(), "invalid cron expression") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNextRunUnknownJob(t *testing.T) {
	s := NewService()

	if _, ok := s.NextRun("missing"); ok {
		t.Error("NextRun reported an unregistered job")
	}
}

func TestStopWaitsForCompletion(t *testing.T) {
	s := NewService()
	if err := s.AddJob("noop", "@every 1h", func() {}); err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}

	s.Start()
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}
