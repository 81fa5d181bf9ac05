package bthread

import (
	"errors"
	"unsafe"
)

// DefaultStackSize is the size of the stack region given to every task
// unless [WithStackSize] says otherwise.
const DefaultStackSize = 32 << 10

// ErrNoMemory is returned by [LimitAllocator] when an allocation would
// exceed its limit.
var ErrNoMemory = errors.New("bthread: out of memory")

// A Stack is the stack region owned by a task.
//
// The main task runs on the original call stack of the program, whose
// region is unknown; its Stack is the zero value.
type Stack struct {
	buf []byte
}

// Base returns the address of the lowest byte of s, or 0 for the zero
// Stack.
func (s Stack) Base() uintptr {
	if len(s.buf) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(s.buf)))
}

// Size returns the size of s in bytes.
func (s Stack) Size() int {
	return len(s.buf)
}

// An Allocator provides the memory a [Scheduler] charges to a task: its
// stack and its control block.
//
// Free is only called with slices previously returned by Alloc, exactly
// once each.
type Allocator interface {
	Alloc(size int) ([]byte, error)
	Free(b []byte)
}

type heapAllocator struct{}

func (heapAllocator) Alloc(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func (heapAllocator) Free([]byte) {}

// A LimitAllocator is an [Allocator] that fails with [ErrNoMemory] once
// the bytes it has handed out and not got back would exceed Limit.
//
// The zero value has no memory at all.
type LimitAllocator struct {
	Limit int

	inuse int
	count int
}

// NewLimitAllocator returns a [LimitAllocator] with the given limit.
func NewLimitAllocator(limit int) *LimitAllocator {
	return &LimitAllocator{Limit: limit}
}

// Alloc implements [Allocator].
func (a *LimitAllocator) Alloc(size int) ([]byte, error) {
	if size < 0 {
		panic("bthread(LimitAllocator): negative size")
	}
	if size > a.Limit-a.inuse {
		return nil, ErrNoMemory
	}
	a.inuse += size
	a.count++
	return make([]byte, size), nil
}

// Free implements [Allocator].
func (a *LimitAllocator) Free(b []byte) {
	a.inuse -= len(b)
	a.count--
	if a.inuse < 0 || a.count < 0 {
		panic("bthread(LimitAllocator): freed more than allocated")
	}
}

// InUse returns the number of bytes currently handed out.
func (a *LimitAllocator) InUse() int {
	return a.inuse
}

// Allocations returns the number of allocations not yet freed.
func (a *LimitAllocator) Allocations() int {
	return a.count
}
