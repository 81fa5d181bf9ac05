package bthread

import "unsafe"

const (
	flagAwake = 1 << iota
	flagShouldStop
	flagShouldClean
	flagHasStopped
	flagStopping
	flagFreed
)

// controlBlockSize is what a task costs an [Allocator] besides its stack
// and its name.
const controlBlockSize = int(unsafe.Sizeof(Task{}))

// A Task is a cooperative fiber: an independent thread of control that
// shares one physical thread of execution with every other task of its
// [Scheduler], and only gives it up at explicit yield points.
//
// A Task is created by [Scheduler.Create] or [Scheduler.Spawn] with an
// entry function. When the task is first scheduled, it calls the entry
// function with itself as the argument. When the entry function returns,
// the task stops and never runs again.
//
// The identity of a task is its address.
type Task struct {
	sched *Scheduler
	name  string
	data  any
	entry func(t *Task)
	stack Stack
	block []byte
	ctx   execContext
	flag  uint8
}

// Scheduler returns the [Scheduler] that t belongs to.
func (t *Task) Scheduler() *Scheduler {
	return t.sched
}

// Name returns the name of t.
func (t *Task) Name() string {
	return t.name
}

// Data returns the user data t was created with.
func (t *Task) Data() any {
	return t.data
}

// Stack returns the stack region owned by t.
// It is the zero [Stack] for the main task and for freed tasks.
func (t *Task) Stack() Stack {
	return t.stack
}

// IsMain reports whether t is the main task of its [Scheduler].
func (t *Task) IsMain() bool {
	return t == &t.sched.main
}

// Awake reports whether t is eligible to be scheduled.
func (t *Task) Awake() bool {
	return t.flag&flagAwake != 0
}

// StopRequested reports whether t has been asked to stop, by either
// [Task.Cancel] or [Task.Stop].
func (t *Task) StopRequested() bool {
	return t.flag&flagShouldStop != 0
}

// Stopped reports whether the entry function of t has returned.
// Once true, it stays true.
func (t *Task) Stopped() bool {
	return t.flag&flagHasStopped != 0
}

// State returns the scheduling state of t.
func (t *Task) State() TaskState {
	switch flag := t.flag; {
	case flag&flagFreed != 0:
		return Freed
	case flag&flagHasStopped != 0:
		return Zombie
	case t == t.sched.current:
		return Running
	case flag&flagAwake != 0:
		return Runnable
	default:
		return Suspended
	}
}

// TaskState is the scheduling state of a [Task].
type TaskState int

const (
	// Running is the state of the current task.
	Running TaskState = iota
	// Runnable tasks are awake and waiting for their turn.
	Runnable
	// Suspended tasks are skipped until woken.
	Suspended
	// Zombie tasks have stopped and wait to be freed.
	Zombie
	// Freed tasks are gone; their handles must not be used any more.
	Freed
)

func (st TaskState) String() string {
	switch st {
	case Running:
		return "running"
	case Runnable:
		return "runnable"
	case Suspended:
		return "suspended"
	case Zombie:
		return "zombie"
	case Freed:
		return "freed"
	default:
		return "unknown"
	}
}
