package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestJob_TryRun(t *testing.T) {
	t.Run("runs the task and records the pass", func(t *testing.T) {
		var calls atomic.Int32
		job := NewJob("test", time.Minute, func(ctx context.Context) error {
			calls.Add(1)
			return nil
		})

		if !job.TryRun(context.Background()) {
			t.Fatal("Expected TryRun to run an idle job")
		}

		if calls.Load() != 1 {
			t.Errorf("Expected 1 call, got %d", calls.Load())
		}
		status := job.Status()
		if status.Passes != 1 || status.Running {
			t.Errorf("Expected 1 finished pass, got %+v", status)
		}
		if status.LastStarted == nil || status.LastFinished == nil {
			t.Error("Expected start and finish times to be recorded")
		}
	})

	t.Run("drops a tick while a pass is running", func(t *testing.T) {
		release := make(chan struct{})
		started := make(chan struct{})
		var calls atomic.Int32

		job := NewJob("overlap", time.Minute, func(ctx context.Context) error {
			calls.Add(1)
			close(started)
			<-release
			return nil
		})

		done := make(chan bool)
		go func() {
			done <- job.TryRun(context.Background())
		}()
		<-started

		if !job.Running() {
			t.Error("Expected job to report running during a pass")
		}

		// Overlapping ticks must be dropped, not queued.
		for i := 0; i < 3; i++ {
			if job.TryRun(context.Background()) {
				t.Fatal("Expected overlapping TryRun to be skipped")
			}
		}

		close(release)
		if !<-done {
			t.Error("Expected first TryRun to report it ran")
		}

		if calls.Load() != 1 {
			t.Errorf("Expected exactly one active pass, got %d task calls", calls.Load())
		}
		status := job.Status()
		if status.Passes != 1 {
			t.Errorf("Expected 1 pass, got %d", status.Passes)
		}
		if status.Skipped != 3 {
			t.Errorf("Expected 3 skipped ticks, got %d", status.Skipped)
		}
		if job.Running() {
			t.Error("Expected running flag to clear after the pass")
		}
	})

	t.Run("concurrent ticks start at most one pass", func(t *testing.T) {
		var active, maxActive, calls atomic.Int32
		job := NewJob("race", time.Minute, func(ctx context.Context) error {
			n := active.Add(1)
			for {
				m := maxActive.Load()
				if n <= m || maxActive.CompareAndSwap(m, n) {
					break
				}
			}
			calls.Add(1)
			time.Sleep(20 * time.Millisecond)
			active.Add(-1)
			return nil
		})

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				job.TryRun(context.Background())
			}()
		}
		wg.Wait()

		if maxActive.Load() != 1 {
			t.Errorf("Expected at most 1 concurrent pass, got %d", maxActive.Load())
		}
		status := job.Status()
		if int64(calls.Load()) != status.Passes {
			t.Errorf("Expected passes (%d) to match task calls (%d)", status.Passes, calls.Load())
		}
		if status.Passes+status.Skipped != 10 {
			t.Errorf("Expected every tick to be run or skipped, got %+v", status)
		}
	})

	t.Run("task error is recorded and does not escape", func(t *testing.T) {
		job := NewJob("failing", time.Minute, func(ctx context.Context) error {
			return errors.New("store unavailable")
		})

		if !job.TryRun(context.Background()) {
			t.Fatal("Expected TryRun to run")
		}

		if got := job.Status().LastError; got != "store unavailable" {
			t.Errorf("Expected last error to be recorded, got %q", got)
		}
		if job.Running() {
			t.Error("Expected running flag to clear after a failed pass")
		}
	})

	t.Run("task panic is recovered", func(t *testing.T) {
		job := NewJob("panicking", time.Minute, func(ctx context.Context) error {
			panic("boom")
		})

		job.TryRun(context.Background())

		if job.Status().LastError == "" {
			t.Error("Expected panic to be recorded as an error")
		}
		if job.Running() {
			t.Error("Expected running flag to clear after a panic")
		}
	})
}

func TestScheduler_Lifecycle(t *testing.T) {
	t.Run("rejects non-positive periods", func(t *testing.T) {
		s := New(context.Background())
		job := NewJob("bad", 0, func(ctx context.Context) error { return nil })

		if err := s.Add(job, false); err == nil {
			t.Error("Expected error for zero period")
		}
	})

	t.Run("runs run-on-start jobs immediately", func(t *testing.T) {
		s := New(context.Background())
		ran := make(chan struct{}, 1)
		job := NewJob("warmup", time.Hour, func(ctx context.Context) error {
			ran <- struct{}{}
			return nil
		})
		if err := s.Add(job, true); err != nil {
			t.Fatalf("Add() returned unexpected error: %v", err)
		}

		s.Start()
		defer s.Stop(context.Background()) //nolint:errcheck // cleanup

		select {
		case <-ran:
		case <-time.After(2 * time.Second):
			t.Fatal("Expected initial pass to run without waiting for the timer")
		}
	})

	t.Run("does not run other jobs before their first tick", func(t *testing.T) {
		s := New(context.Background())
		var calls atomic.Int32
		job := NewJob("lazy", time.Hour, func(ctx context.Context) error {
			calls.Add(1)
			return nil
		})
		if err := s.Add(job, false); err != nil {
			t.Fatalf("Add() returned unexpected error: %v", err)
		}

		s.Start()
		time.Sleep(50 * time.Millisecond)
		if err := s.Stop(context.Background()); err != nil {
			t.Fatalf("Stop() returned unexpected error: %v", err)
		}

		if calls.Load() != 0 {
			t.Errorf("Expected no passes, got %d", calls.Load())
		}
	})

	t.Run("stop waits for an in-flight pass", func(t *testing.T) {
		s := New(context.Background())
		started := make(chan struct{})
		var finished atomic.Bool
		job := NewJob("slow", time.Hour, func(ctx context.Context) error {
			close(started)
			time.Sleep(100 * time.Millisecond)
			finished.Store(true)
			return nil
		})
		if err := s.Add(job, true); err != nil {
			t.Fatalf("Add() returned unexpected error: %v", err)
		}

		s.Start()
		<-started

		if err := s.Stop(context.Background()); err != nil {
			t.Fatalf("Stop() returned unexpected error: %v", err)
		}
		if !finished.Load() {
			t.Error("Expected Stop to return only after the pass finished")
		}
	})

	t.Run("stop cancels passes when its context expires", func(t *testing.T) {
		s := New(context.Background())
		started := make(chan struct{})
		cancelled := make(chan struct{})
		job := NewJob("hung", time.Hour, func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			close(cancelled)
			return ctx.Err()
		})
		if err := s.Add(job, true); err != nil {
			t.Fatalf("Add() returned unexpected error: %v", err)
		}

		s.Start()
		<-started

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		if err := s.Stop(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Expected deadline exceeded, got %v", err)
		}

		select {
		case <-cancelled:
		case <-time.After(2 * time.Second):
			t.Error("Expected in-flight pass to observe cancellation")
		}
	})

	t.Run("reports status of registered jobs", func(t *testing.T) {
		s := New(context.Background())
		for _, name := range []string{"fetch", "alerts"} {
			if err := s.Add(NewJob(name, time.Minute, func(ctx context.Context) error { return nil }), false); err != nil {
				t.Fatalf("Add() returned unexpected error: %v", err)
			}
		}

		statuses := s.Statuses()
		if len(statuses) != 2 {
			t.Fatalf("Expected 2 statuses, got %d", len(statuses))
		}
		if statuses[0].Name != "fetch" || statuses[1].Name != "alerts" {
			t.Errorf("Expected registration order, got %+v", statuses)
		}
		if statuses[0].Period != "1m0s" {
			t.Errorf("Expected period 1m0s, got %s", statuses[0].Period)
		}
	})
}
