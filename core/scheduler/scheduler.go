package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/kilianp07/balancemkt/core/logger"
)

// Task is one step executed in every timeslot.
type Task interface {
	RunTimeslot(ctx context.Context, timeslot int) error
}

// TaskFunc adapts a function to Task.
type TaskFunc func(ctx context.Context, timeslot int) error

func (f TaskFunc) RunTimeslot(ctx context.Context, timeslot int) error { return f(ctx, timeslot) }

// Scheduler advances the timeslot clock and runs its tasks in order. A
// failing task is logged and skips the remaining tasks of that slot only.
type Scheduler struct {
	cfg     Config
	tasks   []Task
	logger  logger.Logger
	current atomic.Int64
	done    atomic.Int64
}

func New(cfg Config, log logger.Logger, tasks ...Task) (*Scheduler, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("scheduler: no task")
	}
	s := &Scheduler{cfg: cfg, tasks: tasks, logger: logger.OrNop(log)}
	s.current.Store(int64(cfg.FirstTimeslot))
	return s, nil
}

// Timeslot returns the slot being run, or the next one between slots.
func (s *Scheduler) Timeslot() int { return int(s.current.Load()) }

// Completed returns the number of slots run so far.
func (s *Scheduler) Completed() int { return int(s.done.Load()) }

// Run executes timeslots until the configured count is reached or ctx is
// cancelled. Cancellation is only observed between slots.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Tick())
	defer ticker.Stop()
	for slot := s.cfg.FirstTimeslot; s.cfg.Timeslots == 0 || slot < s.cfg.FirstTimeslot+s.cfg.Timeslots; slot++ {
		if ctx.Err() != nil {
			return nil
		}
		s.current.Store(int64(slot))
		s.runSlot(context.WithoutCancel(ctx), slot)
		s.done.Add(1)
		s.current.Store(int64(slot + 1))
		if s.cfg.Timeslots != 0 && slot+1 >= s.cfg.FirstTimeslot+s.cfg.Timeslots {
			break
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	s.logger.Infof("scheduler finished after %d timeslots", s.Completed())
	return nil
}

func (s *Scheduler) runSlot(ctx context.Context, slot int) {
	start := time.Now()
	for i, t := range s.tasks {
		if err := t.RunTimeslot(ctx, slot); err != nil {
			s.logger.Errorf("timeslot %d: task %d failed: %v", slot, i, err)
			return
		}
	}
	s.logger.Debugf("timeslot %d done in %s", slot, time.Since(start))
}
