package bthread

import "slices"

// A Signal lets tasks block until some other task notifies it.
//
// The zero value is ready to use. A Signal must not be shared by more than
// one [Scheduler].
type Signal struct {
	seq     uint64
	waiters []*Task
}

// Wait suspends the running task of s until sig is notified.
//
// Wait returns [ErrStopRequested] if the task is asked to stop before sig
// is notified. The request is only noticed when the task runs, so a
// waiting task must be woken for it to take effect.
//
// Wait panics if no task is left to run, since sig could then never be
// notified.
func (sig *Signal) Wait(s *Scheduler) error {
	cur := s.current
	seq := sig.seq

	sig.waiters = append(sig.waiters, cur)

	defer func() {
		cur.flag |= flagAwake
		sig.removeWaiter(cur)
	}()

	for sig.seq == seq {
		if cur.flag&flagShouldStop != 0 {
			return ErrStopRequested
		}

		cur.flag &^= flagAwake

		if !s.yield() && sig.seq == seq {
			panic("bthread: all tasks are asleep - deadlock!")
		}
	}

	return nil
}

func (sig *Signal) removeWaiter(t *Task) {
	if i := slices.Index(sig.waiters, t); i != -1 {
		sig.waiters = slices.Delete(sig.waiters, i, i+1)
	}
}

// Notify wakes every task waiting on sig. It does not yield.
func (sig *Signal) Notify() {
	sig.seq++
	for _, t := range sig.waiters {
		t.Wake()
	}
	clear(sig.waiters)
	sig.waiters = sig.waiters[:0]
}
