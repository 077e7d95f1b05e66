// Package schedule runs the dashboard cycle on a fixed cadence.
package schedule

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Job is one cycle.
type Job func(ctx context.Context) error

// Scheduler runs a Job every interval, starting immediately. A run that is
// still going when the next one is due delays it rather than overlapping.
type Scheduler struct {
	scheduler *gocron.Scheduler
	job       Job
	interval  time.Duration
	timeout   time.Duration
}

// New creates a Scheduler. Each run is given at most timeout, or the interval
// if timeout is zero.
func New(loc *time.Location, interval, timeout time.Duration, job Job) *Scheduler {
	if timeout <= 0 {
		timeout = interval
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		job:       job,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start schedules the job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 6
	}

	_, err := s.scheduler.Every(minutes).Minutes().SingletonMode().Do(s.run)
	if err != nil {
		return err
	}

	log.Printf("scheduler: running every %d minutes", minutes)
	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.job(ctx); err != nil {
		log.Printf("scheduler: cycle finished with errors after %s: %v", time.Since(start).Round(time.Millisecond), err)
		return
	}
	log.Printf("scheduler: cycle finished after %s", time.Since(start).Round(time.Millisecond))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
