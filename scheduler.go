package bthread

import (
	"errors"
	"log/slog"
	"time"
)

var (
	// ErrInterrupted is returned by [Scheduler.ShouldStop] when it is called
	// from the main task, which has no scheduler above it to yield to.
	ErrInterrupted = errors.New("bthread: interrupted")

	// ErrStopRequested is returned by yielding calls made by a task that has
	// been asked to stop.
	ErrStopRequested = errors.New("bthread: stop requested")
)

// A Scheduler runs [Task]s cooperatively on a single thread of execution.
//
// Tasks are kept in a circular list anchored by the main task.
// [Scheduler.Reschedule] walks the list starting just after the running
// task and switches to the first task that is awake.
// This gives approximate round-robin fairness: every task that stays
// awake is eventually visited, but there is no aging or priority.
//
// On its way, Reschedule frees any task that has stopped after being
// canceled.
//
// A Scheduler must only be used by the goroutine that called [New] and by
// the tasks it spawns. It needs no locking: only the running task ever
// touches its state.
type Scheduler struct {
	main      Task
	current   *Task
	reg       registry
	departed  Stack
	stackSize int
	alloc     Allocator
	hook      SwitchHook
	logger    *slog.Logger
	now       func() time.Time
	ps        panicstack
}

// New creates a [Scheduler]. The calling goroutine becomes its main task.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		stackSize: DefaultStackSize,
		alloc:     heapAllocator{},
		hook:      nopHook{},
		logger:    slog.New(slog.DiscardHandler),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.main = Task{
		sched: s,
		name:  "main",
		ctx:   newExecContext(),
		flag:  flagAwake,
	}
	s.current = &s.main
	s.reg.tasks = []*Task{&s.main}

	return s
}

// Main returns the main task of s.
func (s *Scheduler) Main() *Task {
	return &s.main
}

// Current returns the running task.
func (s *Scheduler) Current() *Task {
	return s.current
}

// Reschedule yields the running task to the next awake task, if any.
//
// If no other task is awake, Reschedule returns immediately. Otherwise it
// returns when some task switches back to the caller, which only happens
// while the caller is awake, or when the caller is the main task and
// another task has just stopped.
func (s *Scheduler) Reschedule() {
	s.yield()
}

// yield is Reschedule, reporting whether a switch took place.
func (s *Scheduler) yield() bool {
	t := s.pick()
	if t == nil {
		return false
	}
	s.switchTo(t)
	return true
}

// pick scans the registry from the successor of the running task for
// the first awake task, freeing canceled zombies on its way.
// It returns nil if there is none other than the running task.
func (s *Scheduler) pick() *Task {
	r := &s.reg
	if r.len() == 1 {
		return nil
	}

	cur := s.current
	i := r.index(cur)

	for {
		j := r.next(i)
		t := r.tasks[j]

		if t == cur {
			return nil
		}

		if t.flag&(flagHasStopped|flagShouldClean|flagStopping) == flagHasStopped|flagShouldClean {
			s.free(t)
			if j < i {
				i--
			}
			continue
		}

		if t.flag&flagAwake != 0 {
			return t
		}

		i = j
	}
}

// free unlinks a stopped task and gives its memory back.
func (s *Scheduler) free(t *Task) {
	s.reg.remove(t)

	s.alloc.Free(t.stack.buf)
	s.alloc.Free(t.block)

	t.stack = Stack{}
	t.block = nil
	t.entry = nil
	t.data = nil
	t.flag |= flagFreed

	s.logger.Debug("bthread: task freed", "name", t.name)
}

// ShouldStop yields the running task once, then reports whether it has
// been asked to stop by returning [ErrStopRequested].
// It returns nil if the task should keep going.
//
// Called from the main task, ShouldStop returns [ErrInterrupted] at once
// without yielding.
//
// Task bodies are expected to call ShouldStop regularly:
//
//	for s.ShouldStop() == nil {
//		// Do a bit of work.
//	}
func (s *Scheduler) ShouldStop() error {
	cur := s.current
	if cur == &s.main {
		return ErrInterrupted
	}

	s.yield()

	if cur.flag&flagShouldStop != 0 {
		return ErrStopRequested
	}

	return nil
}

// Sleep yields repeatedly until d has elapsed on the clock of s.
//
// Called from a task, Sleep yields through [Scheduler.ShouldStop] and
// returns its error as soon as the task is asked to stop.
// Called from the main task, Sleep keeps rescheduling and always returns
// nil.
func (s *Scheduler) Sleep(d time.Duration) error {
	deadline := s.now().Add(d)

	for s.now().Before(deadline) {
		if s.current == &s.main {
			s.yield()
			continue
		}
		if err := s.ShouldStop(); err != nil {
			return err
		}
	}

	return nil
}
