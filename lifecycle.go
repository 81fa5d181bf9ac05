package bthread

import "fmt"

// Create creates a suspended [Task] that calls entry when it first runs.
// The name of the task is fmt.Sprintf(format, args...). The task is
// linked right after the running task, and stays asleep until woken with
// [Task.Wake].
//
// The task's stack and control block are charged to the [Allocator] of s.
// If either allocation fails, Create gives back whatever it got and
// returns an error wrapping the allocator's; s is left unchanged.
func (s *Scheduler) Create(entry func(t *Task), data any, format string, args ...any) (*Task, error) {
	if entry == nil {
		panic("bthread: nil entry function")
	}

	name := fmt.Sprintf(format, args...)

	stack, err := s.alloc.Alloc(s.stackSize)
	if err != nil {
		return nil, fmt.Errorf("bthread: allocate stack for %q: %w", name, err)
	}

	block, err := s.alloc.Alloc(controlBlockSize + len(name))
	if err != nil {
		s.alloc.Free(stack)
		return nil, fmt.Errorf("bthread: allocate control block for %q: %w", name, err)
	}

	t := &Task{
		sched: s,
		name:  name,
		data:  data,
		entry: entry,
		stack: Stack{buf: stack},
		block: block,
		ctx:   newExecContext(),
	}

	s.reg.insertAfter(s.current, t)

	go t.trampoline()

	s.logger.Debug("bthread: task created", "name", name, "stack", len(stack))

	return t, nil
}

// Spawn is like [Scheduler.Create], but the task is awake from the start.
func (s *Scheduler) Spawn(entry func(t *Task), data any, format string, args ...any) (*Task, error) {
	t, err := s.Create(entry, data, format, args...)
	if err != nil {
		return nil, err
	}
	t.Wake()
	return t, nil
}

func (t *Task) mustNotBeFreed() {
	if t.flag&flagFreed != 0 {
		panic("bthread: task has been freed")
	}
}

// Wake marks t eligible to be scheduled. It does not yield.
// Waking a task that has stopped has no effect.
func (t *Task) Wake() {
	t.mustNotBeFreed()
	if t.flag&flagHasStopped != 0 {
		return
	}
	t.flag |= flagAwake
}

// Suspend marks t ineligible to be scheduled. It does not yield.
//
// A task typically suspends itself and then yields, to block until some
// other task wakes it.
func (t *Task) Suspend() {
	t.mustNotBeFreed()
	t.flag &^= flagAwake
}

// Cancel asks t to stop, and has it freed automatically once it stops.
//
// Cancel does not interrupt t. The request is noticed the next time t
// calls [Scheduler.ShouldStop]; t is expected to return from its entry
// function then. A task that is suspended does not notice the request
// until it is woken.
func (t *Task) Cancel() {
	t.mustNotBeFreed()
	if t.IsMain() {
		panic("bthread: cannot cancel the main task")
	}
	t.flag |= flagShouldStop
	if t.flag&flagStopping == 0 {
		t.flag |= flagShouldClean
	}
	t.sched.logger.Debug("bthread: task canceled", "name", t.name)
}

// Stop asks t to stop, yields until t has stopped, and then frees t.
// When Stop returns, t is gone and its handle must not be used any more.
//
// Stop takes over the freeing of t even if t was canceled before or is
// canceled while Stop waits, so t is freed exactly once. If another task
// is already stopping t, Stop just waits until t is freed.
//
// Stop panics if t is the main task, the running task, or an already
// freed task. It also panics if no task is left to run while t has not
// stopped, since t could then never stop.
func (t *Task) Stop() {
	t.mustNotBeFreed()

	s := t.sched

	switch {
	case t.IsMain():
		panic("bthread: cannot stop the main task")
	case t == s.current:
		panic("bthread: task cannot stop itself")
	}

	if t.flag&flagStopping != 0 {
		for t.flag&flagFreed == 0 {
			if !s.yield() && t.flag&flagFreed == 0 {
				panic(fmt.Sprintf("bthread: all tasks are asleep while stopping %q - deadlock!", t.name))
			}
		}
		return
	}

	t.flag = t.flag&^flagShouldClean | flagShouldStop | flagStopping

	for t.flag&flagHasStopped == 0 {
		if !s.yield() && t.flag&flagHasStopped == 0 {
			t.flag &^= flagStopping
			panic(fmt.Sprintf("bthread: all tasks are asleep while stopping %q - deadlock!", t.name))
		}
	}

	s.free(t)
}

// ShouldStop is [Scheduler.ShouldStop] called by t.
// It panics if t is not the running task.
func (t *Task) ShouldStop() error {
	if t != t.sched.current {
		panic("bthread: ShouldStop called from another task")
	}
	return t.sched.ShouldStop()
}
