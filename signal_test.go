package bthread_test

import (
	"errors"
	"testing"

	"github.com/b97tsk/bthread"
)

func TestSignal(t *testing.T) {
	t.Run("WakeAll", func(t *testing.T) {
		s := bthread.New()

		var sig bthread.Signal

		woke := 0

		var tasks []*bthread.Task

		for i := range 3 {
			task, _ := s.Spawn(func(t *bthread.Task) {
				if sig.Wait(s) == nil {
					woke++
				}
			}, nil, "waiter-%d", i)
			tasks = append(tasks, task)
		}

		for range 3 {
			s.Reschedule()
		}

		for _, task := range tasks {
			if task.State() != bthread.Suspended {
				t.Errorf("%s: State() = %v, want suspended", task.Name(), task.State())
			}
		}

		if woke != 0 {
			t.Fatalf("woke = %d before Notify", woke)
		}

		sig.Notify()

		for _, task := range tasks {
			task.Stop()
		}

		if woke != 3 {
			t.Errorf("woke = %d, want 3", woke)
		}
	})
	t.Run("MainWaits", func(t *testing.T) {
		s := bthread.New()

		var sig bthread.Signal

		task, _ := s.Spawn(func(*bthread.Task) { sig.Notify() }, nil, "notifier")

		if err := sig.Wait(s); err != nil {
			t.Fatal(err)
		}

		if !s.Main().Awake() {
			t.Error("main task is still asleep")
		}

		task.Stop()
	})
	t.Run("StopWhileWaiting", func(t *testing.T) {
		s := bthread.New()

		var sig bthread.Signal

		var err error

		task, _ := s.Spawn(func(t *bthread.Task) { err = sig.Wait(s) }, nil, "waiter")

		s.Reschedule()
		s.Reschedule()

		task.Wake()
		task.Stop()

		if !errors.Is(err, bthread.ErrStopRequested) {
			t.Errorf("Wait() = %v, want ErrStopRequested", err)
		}
	})
	t.Run("Deadlock", func(t *testing.T) {
		s := bthread.New()

		var sig bthread.Signal

		mustPanic(t, "Wait with nothing to run", func() { _ = sig.Wait(s) })

		if !s.Main().Awake() {
			t.Error("main task is still asleep")
		}
	})
}

func TestState(t *testing.T) {
	s := bthread.New()

	st := bthread.NewState(1)

	var seen []int

	task, _ := s.Spawn(func(t *bthread.Task) {
		for {
			seen = append(seen, st.Get())
			if st.Get() >= 3 || st.Wait(s) != nil {
				return
			}
		}
	}, nil, "watcher")

	s.Reschedule()
	s.Reschedule()

	st.Set(2)
	s.Reschedule()

	st.Update(func(v int) int { return v + 1 })
	task.Stop()

	if len(seen) != 3 || seen[0] != 1 || seen[1] != 2 || seen[2] != 3 {
		t.Errorf("seen = %v, want [1 2 3]", seen)
	}
}
