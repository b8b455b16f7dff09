// Package scheduler runs the periodic sweep that marks elapsed reading
// sessions as missed. The state machine owns the transition itself; this
// package only decides when to trigger it.
package scheduler

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"
)

// DefaultSweepIntervalMinutes is how often the missed-session sweep runs
// unless SWEEP_INTERVAL_MINUTES overrides it.
const DefaultSweepIntervalMinutes = 60

// Sweeper is the part of the khatm service the scheduler drives.
type Sweeper interface {
	MarkMissed(ctx context.Context) (int, error)
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	sweeper   Sweeper
}

// New creates a new scheduler instance
func New(sweeper Sweeper) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		sweeper:   sweeper,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	interval := DefaultSweepIntervalMinutes
	if v := os.Getenv("SWEEP_INTERVAL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			interval = n
		}
	}

	s.scheduler.Every(interval).Minutes().Do(s.sweepMissedSessions)

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// RunSweepNow forces an immediate sweep, outside the periodic cadence.
func (s *Scheduler) RunSweepNow(ctx context.Context) (int, error) {
	return s.sweeper.MarkMissed(ctx)
}

func (s *Scheduler) sweepMissedSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	marked, err := s.sweeper.MarkMissed(ctx)
	if err != nil {
		log.Printf("Error sweeping missed sessions: %v", err)
		return
	}
	if marked > 0 {
		log.Printf("Marked %d elapsed sessions as missed", marked)
	}
}
