package bthread

import (
	"log/slog"
	"time"
)

// An Option configures a [Scheduler] created by [New].
type Option func(s *Scheduler)

// WithStackSize sets the size of the stack region given to every task.
func WithStackSize(n int) Option {
	if n <= 0 {
		panic("bthread: non-positive stack size")
	}
	return func(s *Scheduler) { s.stackSize = n }
}

// WithAllocator sets the [Allocator] that tasks' stacks and control
// blocks are charged to.
func WithAllocator(a Allocator) Option {
	return func(s *Scheduler) { s.alloc = a }
}

// WithSwitchHook sets the [SwitchHook] notified of every stack switch.
func WithSwitchHook(h SwitchHook) Option {
	return func(s *Scheduler) { s.hook = h }
}

// WithLogger sets the logger a [Scheduler] reports task lifecycle events
// to, at debug level. By default, nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithClock sets the clock used by [Scheduler.Sleep] and [Poller].
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}
