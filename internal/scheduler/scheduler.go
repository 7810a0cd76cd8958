// Package scheduler runs the periodic jobs of the tracker: state flushes,
// the morning greeting and the daily reminders.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	ErrDuplicateTask = errors.New("duplicate task")
	ErrStarted       = errors.New("scheduler already started")
)

type TaskFunc func(ctx context.Context) error

type task struct {
	name     string
	schedule Schedule
	run      TaskFunc
}

// Scheduler runs every task in its own goroutine until Stop is called.
type Scheduler struct {
	mu      sync.Mutex
	tasks   []task
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	now func() time.Time
}

func New() *Scheduler {
	return &Scheduler{
		now: time.Now,
	}
}

// Add registers a task. Tasks can only be added before Start.
func (s *Scheduler) Add(name string, schedule Schedule, run TaskFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("add [%s]: %w", name, ErrStarted)
	}
	for _, t := range s.tasks {
		if t.name == name {
			return fmt.Errorf("%w: %s", ErrDuplicateTask, name)
		}
	}
	s.tasks = append(s.tasks, task{name: name, schedule: schedule, run: run})
	return nil
}

func (s *Scheduler) Tasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.tasks))
	for _, t := range s.tasks {
		names = append(names, t.name)
	}
	return names
}

// Start launches all registered tasks. They stop when ctx is done or Stop
// is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrStarted
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	for _, t := range s.tasks {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.loop(ctx, t)
		}()
		log.Debugf("scheduler: task [%s] started, %s", t.name, t.schedule)
	}
	return nil
}

// Stop cancels all tasks and waits for running ones to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	log.Debugln("scheduler: stopped")
}

func (s *Scheduler) loop(ctx context.Context, t task) {
	for {
		next := t.schedule.Next(s.now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if delay := s.now().Sub(next); delay > t.schedule.Tolerance() {
			log.Warnf("scheduler: skipping task [%s], late by %s", t.name, delay)
			continue
		}
		s.runTask(ctx, t)
	}
}

func (s *Scheduler) runTask(ctx context.Context, t task) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("scheduler: task [%s] panicked: %v\n%s", t.name, r, debug.Stack())
		}
	}()

	begin := time.Now()
	if err := t.run(ctx); err != nil {
		log.Errorf("scheduler: task [%s]: %s", t.name, err)
		return
	}
	log.Tracef("scheduler: task [%s] done in %s", t.name, time.Since(begin))
}
