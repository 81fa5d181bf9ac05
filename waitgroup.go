package bthread

// A WaitGroup is a [Signal] with a counter.
//
// Calling the Add or Done method of a WaitGroup updates the counter and,
// when the counter becomes zero, wakes any task waiting on the WaitGroup.
//
// A WaitGroup must not be shared by more than one [Scheduler].
type WaitGroup struct {
	Signal
	n int
}

// Add adds delta, which may be negative, to the [WaitGroup] counter.
// If the [WaitGroup] counter becomes zero, Add wakes any task waiting on
// wg.
// If the [WaitGroup] counter is negative, Add panics.
func (wg *WaitGroup) Add(delta int) {
	if wg.n >= 0 {
		wg.n += delta
	}
	if wg.n < 0 {
		panic("bthread(WaitGroup): negative counter")
	}
	if wg.n == 0 && delta != 0 {
		wg.Notify()
	}
}

// Done decrements the [WaitGroup] counter by one.
func (wg *WaitGroup) Done() {
	wg.Add(-1)
}

// Wait blocks the running task of s until the [WaitGroup] counter is
// zero. See [Signal.Wait] for errors and panics.
func (wg *WaitGroup) Wait(s *Scheduler) error {
	for wg.n != 0 {
		if err := wg.Signal.Wait(s); err != nil {
			return err
		}
	}
	return nil
}
