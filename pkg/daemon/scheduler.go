package daemon

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// TaskFunc represents a runnable task.
type TaskFunc func() error

// Scheduler runs a task on a cron schedule. One task, one schedule; an
// empty spec disables it. Used for periodic automatic recalibration.
type Scheduler struct {
	task   TaskFunc
	parser cron.Parser

	mu       sync.Mutex
	schedule cron.Schedule
	nextRun  time.Time

	recalcCh chan struct{}
	stopCh   chan struct{}
}

func NewScheduler(task TaskFunc) *Scheduler {
	if task == nil {
		panic("task function cannot be nil")
	}

	return &Scheduler{
		task:     task,
		parser:   cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		recalcCh: make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
	}
}

// SetSpec replaces the schedule. An empty spec disables the scheduler
// until a new one is set.
func (s *Scheduler) SetSpec(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if spec == "" {
		s.schedule = nil
		s.nextRun = time.Time{}
	} else {
		schedule, err := s.parser.Parse(spec)
		if err != nil {
			return err
		}
		s.schedule = schedule
		s.nextRun = schedule.Next(time.Now())
		logrus.WithFields(logrus.Fields{
			"spec":    spec,
			"nextRun": s.nextRun.Format(time.RFC3339),
		}).Info("recalibration schedule set")
	}

	// Wake the run loop so it picks up the new schedule.
	select {
	case s.recalcCh <- struct{}{}:
	default:
	}
	return nil
}

// NextRun returns the next scheduled run time (zero if disabled).
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRun
}

func (s *Scheduler) Start() {
	go s.run()
}

func (s *Scheduler) Stop() {
	select {
	case <-s.stopCh: // already closed
	default:
		close(s.stopCh)
	}
}

func (s *Scheduler) run() {
	for {
		s.mu.Lock()
		next := s.nextRun
		s.mu.Unlock()

		var timer *time.Timer
		var timerCh <-chan time.Time
		if !next.IsZero() {
			timer = time.NewTimer(time.Until(next))
			timerCh = timer.C
		}

		select {
		case <-s.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-s.recalcCh:
			if timer != nil {
				timer.Stop()
			}
			continue
		case <-timerCh:
		}

		if err := s.task(); err != nil {
			logrus.Errorf("scheduled task failed: %v", err)
		}

		s.mu.Lock()
		if s.schedule != nil {
			s.nextRun = s.schedule.Next(time.Now())
		}
		s.mu.Unlock()
	}
}
