// Package scheduler runs maintenance jobs on cron schedules.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a unit of background work
type Job interface {
	Run() error
	Name() string
}

// Scheduler runs registered jobs on their schedules. A job whose previous
// run is still in progress is skipped rather than run concurrently.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New creates a scheduler whose schedules carry a leading seconds field,
// e.g. "0 0 3 * * *" for 03:00 daily. Descriptors such as "@hourly" and
// "@every 30s" are also accepted.
func New(log zerolog.Logger) *Scheduler {
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	return &Scheduler{
		cron: c,
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// Start begins dispatching jobs in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", s.Len()).Msg("Scheduler started")
}

// Stop halts dispatching and blocks until in-flight jobs return
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers job under schedule
func (s *Scheduler) AddJob(schedule string, job Job) error {
	if _, err := s.cron.AddJob(schedule, loggedJob{job: job, log: s.log}); err != nil {
		return fmt.Errorf("failed to schedule %s with %q: %w", job.Name(), schedule, err)
	}
	s.log.Info().Str("job", job.Name()).Str("schedule", schedule).Msg("Job registered")
	return nil
}

// RunNow runs job synchronously, outside its schedule
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job on demand")
	return job.Run()
}

// Len is the number of registered jobs
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// loggedJob adapts a Job to cron.Job and logs its outcome
type loggedJob struct {
	job Job
	log zerolog.Logger
}

func (l loggedJob) Run() {
	start := time.Now()
	err := l.job.Run()
	event := l.log.Debug()
	if err != nil {
		event = l.log.Error().Err(err)
	}
	event.Str("job", l.job.Name()).Dur("took", time.Since(start)).Msg("Job finished")
}
