package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler owns the timers of a set of jobs and their lifecycle.
type Scheduler struct {
	cron       *cron.Cron
	jobs       []*Job
	runOnStart []*Job

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Scheduler. Passes run with a context derived from parent that is
// cancelled only when Stop gives up waiting for them.
func New(parent context.Context) *Scheduler {
	ctx, cancel := context.WithCancel(parent)
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cron.PrintfLogger(log.New(os.Stderr, "cron: ", log.LstdFlags))),
		),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers job to tick every job.Period(). With runOnStart the job also
// runs one pass as soon as Start is called, independent of its timer.
func (s *Scheduler) Add(job *Job, runOnStart bool) error {
	if job.Period() <= 0 {
		return fmt.Errorf("job %s: period must be positive, got %s", job.Name(), job.Period())
	}

	s.cron.Schedule(cron.Every(job.Period()), cron.FuncJob(func() {
		job.TryRun(s.ctx)
	}))

	s.jobs = append(s.jobs, job)
	if runOnStart {
		s.runOnStart = append(s.runOnStart, job)
	}
	return nil
}

// Start starts the timers and fires the run-on-start passes.
func (s *Scheduler) Start() {
	s.cron.Start()
	for _, job := range s.runOnStart {
		s.wg.Add(1)
		go func(j *Job) {
			defer s.wg.Done()
			j.TryRun(s.ctx)
		}(job)
	}
	log.Printf("[INFO] scheduler started with %d jobs", len(s.jobs))
}

// Stop cancels all pending ticks and waits for in-flight passes to finish.
// If ctx expires first, the passes' context is cancelled and ctx.Err() is returned.
func (s *Scheduler) Stop(ctx context.Context) error {
	cronDone := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		log.Println("[INFO] scheduler stopped")
		return nil
	case <-ctx.Done():
		s.cancel()
		log.Println("[WARN] scheduler stop timed out, cancelling in-flight passes")
		return ctx.Err()
	}
}

// Statuses returns the status of every registered job.
func (s *Scheduler) Statuses() []JobStatus {
	statuses := make([]JobStatus, 0, len(s.jobs))
	for _, job := range s.jobs {
		statuses = append(statuses, job.Status())
	}
	return statuses
}
