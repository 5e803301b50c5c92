// Package scheduler runs periodic background passes with strict non-reentrancy:
// a tick that arrives while the previous pass of the same job is still running
// is dropped, never queued.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Task is the work performed by one pass of a job.
type Task func(ctx context.Context) error

// Job is a named periodic task guarded by a running flag.
type Job struct {
	name   string
	period time.Duration
	task   Task

	running atomic.Bool

	mu           sync.Mutex
	passes       int64
	skipped      int64
	lastStarted  time.Time
	lastFinished time.Time
	lastErr      error
}

// JobStatus is a point-in-time view of a job for health reporting.
type JobStatus struct {
	Name         string     `json:"name"`
	Period       string     `json:"period"`
	Running      bool       `json:"running"`
	Passes       int64      `json:"passes"`
	Skipped      int64      `json:"skipped"`
	LastStarted  *time.Time `json:"lastStarted,omitempty"`
	LastFinished *time.Time `json:"lastFinished,omitempty"`
	LastError    string     `json:"lastError,omitempty"`
}

// NewJob creates a job that runs task every period once registered with a Scheduler.
func NewJob(name string, period time.Duration, task Task) *Job {
	return &Job{
		name:   name,
		period: period,
		task:   task,
	}
}

// Name returns the job name used in logs.
func (j *Job) Name() string {
	return j.name
}

// Period returns the interval between ticks.
func (j *Job) Period() time.Duration {
	return j.period
}

// Running reports whether a pass is in flight.
func (j *Job) Running() bool {
	return j.running.Load()
}

// TryRun executes one pass unless a pass of this job is already running, in which
// case it returns false immediately without running the task.
// Errors and panics from the task are logged here and do not escape.
func (j *Job) TryRun(ctx context.Context) bool {
	if !j.running.CompareAndSwap(false, true) {
		j.mu.Lock()
		j.skipped++
		j.mu.Unlock()
		log.Printf("[INFO] %s: previous pass still running, skipping", j.name)
		return false
	}
	defer j.running.Store(false)

	start := time.Now()
	j.mu.Lock()
	j.lastStarted = start
	j.mu.Unlock()

	err := j.run(ctx)

	j.mu.Lock()
	j.passes++
	j.lastFinished = time.Now()
	j.lastErr = err
	j.mu.Unlock()

	if err != nil {
		log.Printf("[ERROR] %s: pass failed after %s: %v", j.name, time.Since(start).Round(time.Millisecond), err)
	} else {
		log.Printf("[INFO] %s: pass completed in %s", j.name, time.Since(start).Round(time.Millisecond))
	}
	return true
}

func (j *Job) run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return j.task(ctx)
}

// Status returns the job's current status.
func (j *Job) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()

	status := JobStatus{
		Name:    j.name,
		Period:  j.period.String(),
		Running: j.running.Load(),
		Passes:  j.passes,
		Skipped: j.skipped,
	}
	if !j.lastStarted.IsZero() {
		t := j.lastStarted
		status.LastStarted = &t
	}
	if !j.lastFinished.IsZero() {
		t := j.lastFinished
		status.LastFinished = &t
	}
	if j.lastErr != nil {
		status.LastError = j.lastErr.Error()
	}
	return status
}
