package bthread

import (
	"testing"
	"time"
)

func TestPriorityQueue(t *testing.T) {
	at := func(ms int) *Timer {
		return &Timer{deadline: time.UnixMilli(int64(ms))}
	}

	t.Run("Overall", func(t *testing.T) {
		var pq priorityqueue[*Timer]

		for i := range 8 {
			pq.Push(at(i))
		}

		for i := range 4 {
			if u := pq.Pop(); !u.deadline.Equal(time.UnixMilli(int64(i))) {
				t.FailNow()
			}
		}

		for i := 8; i < 11; i++ {
			pq.Push(at(i))
		}

		pq.Push(at(3))

		if u := pq.Pop(); u.deadline.UnixMilli() != 3 {
			t.FailNow()
		}

		pq.Push(at(6))
		pq.Push(at(5))

		if pq.Len() != 9 {
			t.Fatalf("Len() = %d, want 9", pq.Len())
		}

		for _, ms := range []int64{4, 5, 5, 6, 6, 7, 8, 9, 10} {
			if u := pq.Peek(); u.deadline.UnixMilli() != ms {
				t.FailNow()
			}
			if u := pq.Pop(); u.deadline.UnixMilli() != ms {
				t.FailNow()
			}
		}

		if !pq.Empty() {
			t.FailNow()
		}
	})
	t.Run("FIFO", func(t *testing.T) {
		var pq priorityqueue[*Timer]

		u := at(0)
		v := at(0)
		w := at(0)

		pq.Push(u)
		pq.Push(v)
		pq.Push(w)

		if pq.Pop() != u || pq.Pop() != v || pq.Pop() != w {
			t.FailNow()
		}
	})
	t.Run("Remove", func(t *testing.T) {
		var pq priorityqueue[*Timer]

		timers := make([]*Timer, 8)
		for i := range timers {
			timers[i] = at(i)
			pq.Push(timers[i])
		}

		pq.Pop()
		pq.Pop()
		pq.Push(at(8))
		pq.Push(at(9))

		is := func(u *Timer) func(*Timer) bool {
			return func(v *Timer) bool { return v == u }
		}

		if !pq.Remove(is(timers[4])) || pq.Remove(is(timers[4])) || pq.Remove(is(timers[0])) {
			t.FailNow()
		}

		pq.Push(at(4))

		for _, ms := range []int64{2, 3, 4, 5, 6, 7} {
			if u := pq.Pop(); u.deadline.UnixMilli() != ms {
				t.Fatalf("Pop() = %d, want %d", u.deadline.UnixMilli(), ms)
			}
		}

		for !pq.Empty() {
			u := pq.Peek()
			if !pq.Remove(is(u)) {
				t.FailNow()
			}
		}

		if pq.Len() != 0 {
			t.Fatalf("Len() = %d, want 0", pq.Len())
		}
	})
}
