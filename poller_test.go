package bthread_test

import (
	"slices"
	"testing"
	"time"

	"github.com/b97tsk/bthread"
)

func TestPoller(t *testing.T) {
	now := time.Unix(0, 0)

	s := bthread.New(bthread.WithClock(func() time.Time { return now }))

	p, err := s.NewPoller("poller")
	if err != nil {
		t.Fatal(err)
	}

	if p.Task().Name() != "poller" || p.Task().Data() != p {
		t.Error("unexpected poller task")
	}

	polls := 0
	unregister := p.Register("count", func() { polls++ })

	var fired []string

	p.After(20*time.Millisecond, func() { fired = append(fired, "b") })
	p.After(10*time.Millisecond, func() { fired = append(fired, "a") })
	c := p.After(10*time.Millisecond, func() { fired = append(fired, "c") })
	p.After(10*time.Millisecond, func() { fired = append(fired, "d") })

	if !c.Stop() || c.Stop() {
		t.Error("Timer.Stop did not report the first stop only")
	}

	if p.Pending() != 3 {
		t.Errorf("Pending() = %d, want 3", p.Pending())
	}

	// The first turn is the forced first yield, the second one enters
	// the polling loop.
	s.Reschedule()
	s.Reschedule()

	if polls != 0 {
		t.Fatalf("polls = %d before the poller got a turn", polls)
	}

	s.Reschedule()

	if polls != 1 || len(fired) != 0 {
		t.Fatalf("polls = %d, fired = %v", polls, fired)
	}

	now = now.Add(10 * time.Millisecond)
	s.Reschedule()

	if want := []string{"a", "d"}; polls != 2 || !slices.Equal(fired, want) {
		t.Fatalf("polls = %d, fired = %v, want %v", polls, fired, want)
	}

	unregister()
	unregister()

	now = now.Add(time.Second)
	s.Reschedule()

	if want := []string{"a", "d", "b"}; polls != 2 || !slices.Equal(fired, want) {
		t.Fatalf("polls = %d, fired = %v, want %v", polls, fired, want)
	}

	if p.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", p.Pending())
	}

	p.Close()

	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestPollerFromMain(t *testing.T) {
	now := time.Unix(0, 0)

	s := bthread.New(bthread.WithClock(func() time.Time { return now }))

	p, _ := s.NewPoller("poller")
	defer p.Close()

	done := false
	p.After(time.Millisecond, func() { done = true })

	nested := 0
	p.Register("nested", func() {
		nested++
		p.Poll() // No effect within a turn.
	})

	now = now.Add(time.Millisecond)
	p.Poll()

	if !done || nested != 1 {
		t.Errorf("done = %v, nested = %d", done, nested)
	}
}

func TestPollerCanceled(t *testing.T) {
	s := bthread.New()

	p, _ := s.NewPoller("poller")

	p.Task().Cancel()

	for range 5 {
		s.Reschedule()
	}

	if p.Task().State() != bthread.Freed {
		t.Fatalf("State() = %v, want freed", p.Task().State())
	}

	p.Close()
	p.Close()

	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}
