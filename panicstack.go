package bthread

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync/atomic"
)

type panicstack []panicitem

func (ps panicstack) Repanic() {
	if len(ps) != 0 {
		panic(&panicvalue{items: ps})
	}
}

// Try calls f and records the value of a panic f raises, if any.
// A runtime.Goexit in f is let through.
func (ps *panicstack) Try(f func()) (ok bool) {
	defer func() {
		if !ok {
			if v := recover(); v != nil {
				ps.push(v, debug.Stack())
			}
		}
	}()
	f()
	return true
}

func (ps *panicstack) push(v any, stack []byte) {
	*ps = append(*ps, panicitem{v, stack})
}

// repanic raises, on the main task, every panic recorded so far.
func (s *Scheduler) repanic() {
	ps := s.ps
	if len(ps) == 0 {
		return
	}
	s.ps = nil
	ps.Repanic()
}

type panicitem struct {
	value any
	stack []byte
}

type panicvalue struct {
	items []panicitem
	errs  atomic.Pointer[[]error]
}

func (pv *panicvalue) Error() string {
	var b strings.Builder
	b.WriteString("bthread: panics in tasks as follows:")
	for i, p := range pv.items {
		fmt.Fprintf(&b, "\n(%d/%d) panic: %v", i+1, len(pv.items), p.value)
		if p.stack != nil {
			b.WriteString("\n\n")
			b.Write(p.stack)
		}
	}
	return b.String()
}

func (pv *panicvalue) Unwrap() []error {
	if p := pv.errs.Load(); p != nil {
		return *p
	}
	var errs []error
	for _, p := range pv.items {
		if err, ok := p.value.(error); ok {
			errs = append(errs, err)
		}
	}
	pv.errs.Store(&errs)
	return errs
}
