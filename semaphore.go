package bthread

import "slices"

// Semaphore provides a way to bound access to a resource shared by tasks.
// The callers can request access with a given weight.
// Waiters are served in FIFO order.
//
// A Semaphore must not be shared by more than one [Scheduler].
type Semaphore struct {
	size    int64
	cur     int64
	waiters []*waiter
}

// NewSemaphore creates a new weighted semaphore with the given maximum
// combined weight.
func NewSemaphore(n int64) *Semaphore {
	return &Semaphore{size: n}
}

// Acquire blocks the running task of s until a weight of n is acquired
// from sem.
//
// If the task is asked to stop while waiting, Acquire gives up its place
// in line and returns [ErrStopRequested]; nothing is acquired then.
func (sem *Semaphore) Acquire(s *Scheduler, n int64) error {
	if n < 0 {
		panic("bthread(Semaphore): negative weight")
	}

	if sem.TryAcquire(n) {
		return nil
	}

	w := &waiter{n: n}
	sem.waiters = append(sem.waiters, w)

	for w.n != 0 {
		if err := w.Wait(s); err != nil {
			if w.n != 0 {
				sem.removeWaiter(w)
				sem.notifyWaiters()
				return err
			}
		}
	}

	return nil
}

// TryAcquire acquires a weight of n from sem without blocking.
// On success, it returns true. On failure, it returns false and leaves
// sem unchanged.
func (sem *Semaphore) TryAcquire(n int64) bool {
	if n < 0 {
		panic("bthread(Semaphore): negative weight")
	}
	if sem.size-sem.cur < n || len(sem.waiters) != 0 {
		return false
	}
	sem.cur += n
	return true
}

// Release releases a weight of n to sem, and wakes waiters that can now
// acquire their weight.
func (sem *Semaphore) Release(n int64) {
	if n < 0 {
		panic("bthread(Semaphore): negative weight")
	}
	if sem.cur >= 0 {
		sem.cur -= n
	}
	if sem.cur < 0 {
		panic("bthread(Semaphore): released more than held")
	}
	sem.notifyWaiters()
}

func (sem *Semaphore) notifyWaiters() {
	i := 0
	for _, w := range sem.waiters {
		if sem.size-sem.cur < w.n {
			break
		}
		sem.cur += w.n
		w.n = 0
		w.Notify()
		i++
	}
	sem.waiters = slices.Delete(sem.waiters, 0, i)
}

type waiter struct {
	Signal
	n int64
}

func (sem *Semaphore) removeWaiter(w *waiter) {
	if i := slices.Index(sem.waiters, w); i != -1 {
		sem.waiters = slices.Delete(sem.waiters, i, i+1)
	}
}
