package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestIntervalJobRunsWhenDue(t *testing.T) {
	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s := New(zap.NewNop(), func() time.Time { return clock })

	runs := 0
	s.AddInterval("sweep", 5*time.Minute, false, func(ctx context.Context) error {
		runs++
		return nil
	})

	s.runDue(context.Background())
	if runs != 0 {
		t.Fatalf("runs = %d before the interval elapsed, want 0", runs)
	}

	clock = clock.Add(5 * time.Minute)
	s.runDue(context.Background())
	if runs != 1 {
		t.Fatalf("runs = %d after one interval, want 1", runs)
	}

	// Not due again until another interval passes.
	s.runDue(context.Background())
	if runs != 1 {
		t.Fatalf("runs = %d immediately after a run, want 1", runs)
	}

	clock = clock.Add(5 * time.Minute)
	s.runDue(context.Background())
	if runs != 2 {
		t.Fatalf("runs = %d after second interval, want 2", runs)
	}
}

func TestImmediateJobRunsOnFirstPass(t *testing.T) {
	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s := New(zap.NewNop(), func() time.Time { return clock })

	runs := 0
	s.AddInterval("sweep", time.Hour, true, func(ctx context.Context) error {
		runs++
		return nil
	})

	s.runDue(context.Background())
	if runs != 1 {
		t.Fatalf("runs = %d on first pass of immediate job, want 1", runs)
	}
}

func TestFailingJobIsRescheduled(t *testing.T) {
	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s := New(zap.NewNop(), func() time.Time { return clock })

	runs := 0
	s.AddInterval("flaky", time.Minute, true, func(ctx context.Context) error {
		runs++
		return errors.New("boom")
	})

	s.runDue(context.Background())
	s.runDue(context.Background())
	if runs != 1 {
		t.Fatalf("runs = %d, failing job must not hot-loop", runs)
	}

	clock = clock.Add(time.Minute)
	s.runDue(context.Background())
	if runs != 2 {
		t.Fatalf("runs = %d, failing job should run again next interval", runs)
	}
}

func TestCronJobSchedule(t *testing.T) {
	clock := time.Date(2025, 6, 1, 2, 59, 0, 0, time.UTC)
	s := New(zap.NewNop(), func() time.Time { return clock })

	runs := 0
	if err := s.AddCron("backup", "0 3 * * *", func(ctx context.Context) error {
		runs++
		return nil
	}); err != nil {
		t.Fatalf("add cron: %v", err)
	}

	s.runDue(context.Background())
	if runs != 0 {
		t.Fatalf("runs = %d before 03:00, want 0", runs)
	}

	clock = clock.Add(time.Minute)
	s.runDue(context.Background())
	if runs != 1 {
		t.Fatalf("runs = %d at 03:00, want 1", runs)
	}

	status, ok := s.JobStatus("backup")
	if !ok {
		t.Fatal("job status missing")
	}
	wantNext := time.Date(2025, 6, 2, 3, 0, 0, 0, time.UTC)
	if !status.NextRun.Equal(wantNext) {
		t.Fatalf("next run = %s, want %s", status.NextRun, wantNext)
	}
}

func TestAddCronRejectsBadExpression(t *testing.T) {
	s := New(zap.NewNop(), nil)
	if err := s.AddCron("bad", "not a cron", func(ctx context.Context) error { return nil }); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}

func TestJobsIntrospection(t *testing.T) {
	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s := New(zap.NewNop(), func() time.Time { return clock })

	s.AddInterval("b_sweep", 5*time.Minute, false, func(ctx context.Context) error { return nil })
	s.AddInterval("a_backup", time.Hour, false, func(ctx context.Context) error { return nil })

	jobs := s.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("jobs = %d, want 2", len(jobs))
	}
	if jobs[0].ID != "a_backup" || jobs[1].ID != "b_sweep" {
		t.Fatalf("jobs not sorted by id: %s, %s", jobs[0].ID, jobs[1].ID)
	}
	if jobs[0].LastRun != nil {
		t.Fatal("last run should be nil before the first run")
	}
	if jobs[1].Schedule != "every 5m0s" {
		t.Fatalf("schedule = %q", jobs[1].Schedule)
	}

	if _, ok := s.JobStatus("missing"); ok {
		t.Fatal("unknown job id should not resolve")
	}
}
