// Package bthread is a cooperative task (fiber) scheduler.
//
// A [Scheduler] runs many logical threads of control, called tasks,
// turn by turn on one physical thread of execution. There is no
// preemption: a [Task] runs until it explicitly yields by calling
// [Scheduler.Reschedule], [Scheduler.ShouldStop], or one of the blocking
// helpers built on top of them ([Signal.Wait], [WaitGroup.Wait],
// [Semaphore.Acquire], [Scheduler.Sleep], [Task.Stop]).
// Data shared between tasks is therefore safe to access without locks
// between yield points, but any call that might yield can observe changes
// made by other tasks.
//
// # The Main Task
//
// The goroutine that calls [New] becomes the main task of the new
// Scheduler. The main task represents the original call stack of the
// program. It is always present, it is never freed, and it can be neither
// canceled nor stopped. It takes part in scheduling like any other task
// once it calls [Scheduler.Reschedule].
//
// A Scheduler must only be used by the goroutine that created it and by
// the tasks it spawns.
//
// # Spawning
//
// [Scheduler.Spawn] creates a task and marks it runnable. The new task
// never runs synchronously inside Spawn: it only starts when some task
// yields to it, and even then it yields once more before calling its entry
// function. A task whose entry function returns becomes a zombie; control
// goes back to the main task and the zombie never runs again.
//
// # Cancellation
//
// Cancellation is cooperative. [Task.Cancel] only requests that a task
// stop; the task must notice the request by calling [Scheduler.ShouldStop]
// (or [Task.ShouldStop]) and return from its entry function. A canceled
// task is reclaimed automatically by the scheduler after it stops.
// [Task.Stop] requests a stop as well, then blocks cooperatively until the
// task has stopped, and frees it before returning.
//
//	t, err := s.Spawn(func(t *bthread.Task) {
//		for t.ShouldStop() == nil {
//			// Do a bit of work.
//		}
//	}, nil, "worker-%d", 1)
//	if err != nil {
//		return err
//	}
//	// ...
//	t.Stop()
//
// # Panics
//
// A panic in a task body does not crash the program right away. The panic
// is recovered, the task stops, and the panic is raised again on the main
// task the next time it regains control.
package bthread
