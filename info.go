package bthread

import (
	"fmt"
	"io"
	"iter"
	"slices"
	"text/tabwriter"

	"github.com/inhies/go-bytesize"
)

// Len returns the number of tasks of s, the main task included.
// Zombies count until they are freed.
func (s *Scheduler) Len() int {
	return s.reg.len()
}

// Tasks returns an iterator over the tasks of s, in scheduling order
// starting with the main task.
//
// The iterator works on a snapshot taken when iteration starts, so it is
// fine to yield or to spawn and stop tasks while iterating.
func (s *Scheduler) Tasks() iter.Seq[*Task] {
	return func(yield func(*Task) bool) {
		for _, t := range s.reg.snapshot() {
			if !yield(t) {
				return
			}
		}
	}
}

// Lookup returns the first task of s named name, or nil if none is.
func (s *Scheduler) Lookup(name string) *Task {
	i := slices.IndexFunc(s.reg.tasks, func(t *Task) bool { return t.name == name })
	if i == -1 {
		return nil
	}
	return s.reg.tasks[i]
}

// Info writes a table of the tasks of s to w, one line per task, in
// scheduling order starting with the main task.
func (s *Scheduler) Info(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintln(tw, "NAME\tSTATE\tSTACK\tFLAGS")

	for t := range s.Tasks() {
		stack := "-"
		if n := t.stack.Size(); n != 0 {
			stack = bytesize.New(float64(n)).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.name, t.State(), stack, t.flagString())
	}

	return tw.Flush()
}

func (t *Task) flagString() string {
	b := []byte("----")
	if t.flag&flagAwake != 0 {
		b[0] = 'a'
	}
	if t.flag&flagShouldStop != 0 {
		b[1] = 's'
	}
	if t.flag&flagShouldClean != 0 {
		b[2] = 'c'
	}
	if t.flag&flagHasStopped != 0 {
		b[3] = 'z'
	}
	return string(b)
}
