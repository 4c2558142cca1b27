package cron

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestListReportsRegisteredJobs(t *testing.T) {
	s := New(zap.NewNop())
	s.Register(Job{
		Name:        "retention",
		Description: "delete old posts",
		Interval:    time.Hour,
		Fn:          func(ctx context.Context) error { return nil },
	})

	items := s.List()
	if len(items) != 1 {
		t.Fatalf("List() returned %d jobs, want 1", len(items))
	}
	if items[0].Name != "retention" || items[0].Status != StatusIdle {
		t.Errorf("job = %+v, want idle retention", items[0])
	}
	if items[0].LastRunAt != nil {
		t.Error("unrun job has a last-run timestamp")
	}
}

func TestRunTriggersJob(t *testing.T) {
	s := New(zap.NewNop())
	ran := make(chan struct{})
	s.Register(Job{
		Name:     "sweep",
		Interval: time.Hour,
		Fn: func(ctx context.Context) error {
			close(ran)
			return nil
		},
	})

	if err := s.Run(context.Background(), "sweep"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not execute")
	}
}

func TestRunUnknownJob(t *testing.T) {
	s := New(zap.NewNop())
	if err := s.Run(context.Background(), "missing"); err == nil {
		t.Error("Run accepted an unregistered job name")
	}
}
