package bthread

// trampoline is the first code a spawned task runs. It is started on the
// task's goroutine by Create and parks until the task is first switched
// to.
func (t *Task) trampoline() {
	s := t.sched

	t.ctx.park()
	s.land()

	// Give control back once, so that a task never runs as part of the
	// call that spawned it.
	s.yield()

	defer s.exit(t)

	s.ps.Try(func() { t.entry(t) })
}

// exit turns t into a zombie and hands control to the main task for
// good. It is deferred by the trampoline, so it also runs when the entry
// function calls runtime.Goexit.
func (s *Scheduler) exit(t *Task) {
	t.flag = t.flag&^flagAwake | flagHasStopped

	s.logger.Debug("bthread: task stopped", "name", t.name)

	main := &s.main
	s.current = main
	s.depart(t, main)
	main.ctx.resume()
}
