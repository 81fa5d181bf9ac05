package bthread

import "slices"

// registry is the circular membership list of the tasks of a Scheduler.
// The main task sits at index 0 and is never removed, so the list is
// never empty.
type registry struct {
	tasks []*Task
}

func (r *registry) len() int {
	return len(r.tasks)
}

func (r *registry) index(t *Task) int {
	return slices.Index(r.tasks, t)
}

// next returns the index of the successor of the task at index i.
func (r *registry) next(i int) int {
	if i++; i == len(r.tasks) {
		i = 0
	}
	return i
}

func (r *registry) insertAfter(at, t *Task) {
	i := r.index(at)
	if i == -1 {
		panic("bthread: internal error: task not in registry")
	}
	r.tasks = slices.Insert(r.tasks, i+1, t)
}

func (r *registry) remove(t *Task) {
	i := r.index(t)
	if i <= 0 {
		panic("bthread: internal error: removing unknown or main task")
	}
	r.tasks = slices.Delete(r.tasks, i, i+1)
}

func (r *registry) snapshot() []*Task {
	return slices.Clone(r.tasks)
}
