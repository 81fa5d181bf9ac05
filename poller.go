package bthread

import (
	"slices"
	"time"
)

// A Poller runs background work from a task of its own.
//
// Every turn the poller task gets, it calls each registered poll function
// once, then fires the one-shot timers that are due. Timers fire in
// deadline order; timers with the same deadline fire in the order they
// were added.
//
// Poll functions and timer functions run on the poller task. They should
// return quickly; whatever they do delays all other polling.
type Poller struct {
	sched  *Scheduler
	task   *Task
	polls  []*poll
	timers priorityqueue[*Timer]
	active bool
}

type poll struct {
	name    string
	f       func()
	removed bool
}

// NewPoller spawns a task named name that drives a new [Poller].
func (s *Scheduler) NewPoller(name string) (*Poller, error) {
	p := &Poller{sched: s}

	t, err := s.Spawn(p.run, p, "%s", name)
	if err != nil {
		return nil, err
	}

	p.task = t

	return p, nil
}

func (p *Poller) run(t *Task) {
	for t.ShouldStop() == nil {
		p.Poll()
	}
}

// Task returns the task that drives p.
func (p *Poller) Task() *Task {
	return p.task
}

// Register adds f to the functions called on every turn of p.
// Calling the returned function removes it again.
func (p *Poller) Register(name string, f func()) (unregister func()) {
	e := &poll{name: name, f: f}
	p.polls = append(p.polls, e)

	return func() {
		if e.removed {
			return
		}
		e.removed = true
		if i := slices.Index(p.polls, e); i != -1 {
			p.polls = slices.Delete(p.polls, i, i+1)
		}
	}
}

// A Timer is a one-shot function call scheduled on a [Poller].
type Timer struct {
	poller   *Poller
	deadline time.Time
	f        func()
	done     bool
}

func (tm *Timer) less(other *Timer) bool {
	return tm.deadline.Before(other.deadline)
}

// Stop prevents tm from firing. It returns false if tm has already fired
// or been stopped.
func (tm *Timer) Stop() bool {
	if tm.done {
		return false
	}
	tm.done = true
	tm.poller.timers.Remove(func(u *Timer) bool { return u == tm })
	return true
}

// After schedules f to be called by p once d has elapsed on the clock of
// the [Scheduler].
func (p *Poller) After(d time.Duration, f func()) *Timer {
	tm := &Timer{poller: p, deadline: p.sched.now().Add(d), f: f}
	p.timers.Push(tm)
	return tm
}

// Pending returns the number of timers that have neither fired nor been
// stopped.
func (p *Poller) Pending() int {
	return p.timers.Len()
}

// Poll runs one turn of p: every poll function once, then every due
// timer. It does nothing when called from within a turn of p.
//
// The poller task calls Poll on its own; calling it directly is only
// needed to poll from the main task while it busy-waits.
func (p *Poller) Poll() {
	if p.active {
		return
	}

	p.active = true
	defer func() { p.active = false }()

	for _, e := range slices.Clone(p.polls) {
		if !e.removed {
			e.f()
		}
	}

	now := p.sched.now()

	for !p.timers.Empty() {
		tm := p.timers.Peek()
		if tm.deadline.After(now) {
			break
		}
		p.timers.Pop()
		tm.done = true
		tm.f()
	}
}

// Close stops the poller task and waits for it to finish its current
// turn. Pending timers never fire. Close does nothing if the poller task
// has already been freed, for example after being canceled.
// Close must not be called from a poll or timer function.
func (p *Poller) Close() {
	if p.task.State() == Freed {
		return
	}
	p.task.Stop()
}
