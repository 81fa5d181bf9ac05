package bthread

import "log/slog"

// An execContext is the saved execution state of a task.
//
// Every task runs on a goroutine of its own. A task that is not running
// has its goroutine parked on baton; handing over the baton resumes it
// exactly where it parked. Only one goroutine per Scheduler holds the
// baton at any time.
type execContext struct {
	baton chan struct{}
}

func newExecContext() execContext {
	return execContext{baton: make(chan struct{}, 1)}
}

func (c *execContext) resume() {
	c.baton <- struct{}{}
}

func (c *execContext) park() {
	<-c.baton
}

// A SwitchHook observes every stack switch performed by a [Scheduler].
//
// It is the place where memory-safety tooling is told that execution is
// about to continue on another stack region, and that a stack region has
// been resumed. It has no effect on scheduling.
type SwitchHook interface {
	// StartSwitch is called right before execution leaves the running task
	// for the task that runs on stack to.
	StartSwitch(to Stack)

	// FinishSwitch is called right after execution lands on a task.
	// from is the stack that was active before the departure.
	FinishSwitch(from Stack)
}

type nopHook struct{}

func (nopHook) StartSwitch(Stack)  {}
func (nopHook) FinishSwitch(Stack) {}

// NewLogHook returns a [SwitchHook] that reports every switch to l at
// debug level.
func NewLogHook(l *slog.Logger) SwitchHook {
	return logHook{l}
}

type logHook struct {
	l *slog.Logger
}

func (h logHook) StartSwitch(to Stack) {
	h.l.Debug("bthread: start switch", "base", to.Base(), "size", to.Size())
}

func (h logHook) FinishSwitch(from Stack) {
	h.l.Debug("bthread: finish switch", "base", from.Base(), "size", from.Size())
}

// switchTo captures the current task and jumps to t. It returns when some
// other task switches back to the caller.
func (s *Scheduler) switchTo(t *Task) {
	if t.flag&flagFreed != 0 {
		panic("bthread: resuming a freed task")
	}

	from := s.current
	s.current = t

	s.depart(from, t)
	t.ctx.resume()
	from.ctx.park()
	s.land()

	if from == &s.main {
		s.repanic()
	}
}

func (s *Scheduler) depart(from, to *Task) {
	s.departed = from.stack
	s.hook.StartSwitch(to.stack)
}

func (s *Scheduler) land() {
	s.hook.FinishSwitch(s.departed)
}
