package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"
	"github.com/inhies/go-bytesize"

	"github.com/b97tsk/bthread"
)

const (
	ansiBold  = "\x1b[1m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// shell runs operator commands on the main task of a scheduler.
// After every command, it gives the other tasks one turn, the way a
// console gives them turns while waiting for input.
type shell struct {
	sched  *bthread.Scheduler
	poller *bthread.Poller
	alloc  *bthread.LimitAllocator
	out    io.Writer
	prompt string
	quit   bool
}

// worker is the data of a task spawned by the spawn command.
type worker struct {
	iterations int
	limit      int
}

func runWorker(t *bthread.Task) {
	w := t.Data().(*worker)
	for t.ShouldStop() == nil {
		w.iterations++
		if w.limit > 0 && w.iterations >= w.limit {
			return
		}
	}
}

func newShell(s *bthread.Scheduler, out io.Writer, prompt string) (*shell, error) {
	p, err := s.NewPoller("poller")
	if err != nil {
		return nil, err
	}
	return &shell{sched: s, poller: p, out: out, prompt: prompt}, nil
}

// close stops every task left, the poller last.
func (sh *shell) close() {
	for t := range sh.sched.Tasks() {
		if t.IsMain() || t == sh.poller.Task() || t.State() == bthread.Freed {
			continue
		}
		t.Wake()
		t.Stop()
	}
	sh.poller.Close()
}

func (sh *shell) run(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for !sh.quit {
		fmt.Fprint(sh.out, ansiBold+sh.prompt+ansiReset)
		if !sc.Scan() {
			fmt.Fprintln(sh.out)
			break
		}
		if err := sh.exec(sc.Text()); err != nil {
			fmt.Fprintf(sh.out, "%serror:%s %v\n", ansiRed, ansiReset, err)
		}
	}
	return sc.Err()
}

func (sh *shell) exec(line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}

	cmd := lookupCommand(args[0])
	if cmd == nil {
		return fmt.Errorf("unknown command %q (try help)", args[0])
	}

	err = cmd.run(sh, args[1:])

	sh.sched.Reschedule()

	return err
}

type command struct {
	name  string
	usage string
	run   func(sh *shell, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"info", "info [-v]: list tasks", cmdInfo},
		{"spawn", "spawn [-n iterations] [-s] name...: spawn worker tasks", cmdSpawn},
		{"cancel", "cancel name...: ask tasks to stop and free them when they do", cmdCancel},
		{"stop", "stop name...: stop tasks and wait for them", cmdStop},
		{"wake", "wake name...: make tasks runnable", cmdWake},
		{"suspend", "suspend name...: make tasks sleep", cmdSuspend},
		{"sched", "sched [count]: give other tasks count turns", cmdSched},
		{"after", "after duration message...: print message once duration has elapsed", cmdAfter},
		{"test", "test [-n iterations]: run three counting tasks to completion", cmdTest},
		{"help", "help: show this help", cmdHelp},
		{"quit", "quit: leave the shell", cmdQuit},
	}
}

func lookupCommand(name string) *command {
	for i := range commands {
		if commands[i].name == name {
			return &commands[i]
		}
	}
	return nil
}

func (sh *shell) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(sh.out)
	return fs
}

// tasks resolves names to worker tasks.
func (sh *shell) tasks(names []string) ([]*bthread.Task, error) {
	if len(names) == 0 {
		return nil, errors.New("no task named")
	}
	var tasks []*bthread.Task
	for _, name := range names {
		t := sh.sched.Lookup(name)
		switch {
		case t == nil:
			return nil, fmt.Errorf("no task named %q", name)
		case t.IsMain(), t == sh.poller.Task():
			return nil, fmt.Errorf("task %q is managed by the shell", name)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func cmdInfo(sh *shell, args []string) error {
	fs := sh.flagSet("info")
	verbose := fs.Bool("v", false, "also show worker iterations and memory use")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := sh.sched.Info(sh.out); err != nil {
		return err
	}

	if !*verbose {
		return nil
	}

	for t := range sh.sched.Tasks() {
		if w, ok := t.Data().(*worker); ok {
			fmt.Fprintf(sh.out, "%s: %d iterations\n", t.Name(), w.iterations)
		}
	}

	if a := sh.alloc; a != nil {
		fmt.Fprintf(sh.out, "memory: %s in use of %s\n",
			bytesize.New(float64(a.InUse())), bytesize.New(float64(a.Limit)))
	}

	return nil
}

func cmdSpawn(sh *shell, args []string) error {
	fs := sh.flagSet("spawn")
	limit := fs.Int("n", 0, "return after `iterations` (0: run until stopped)")
	suspended := fs.Bool("s", false, "create the tasks suspended")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() == 0 {
		return errors.New("spawn: no task named")
	}

	create := sh.sched.Spawn
	if *suspended {
		create = sh.sched.Create
	}

	for _, name := range fs.Args() {
		if sh.sched.Lookup(name) != nil {
			return fmt.Errorf("spawn: task %q exists", name)
		}
		if _, err := create(runWorker, &worker{limit: *limit}, "%s", name); err != nil {
			return err
		}
	}

	return nil
}

func cmdCancel(sh *shell, args []string) error {
	tasks, err := sh.tasks(args)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		t.Cancel()
	}
	return nil
}

func cmdStop(sh *shell, args []string) error {
	tasks, err := sh.tasks(args)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if t.State() == bthread.Freed {
			continue // Reaped while stopping another one.
		}
		t.Wake()
		t.Stop()
	}
	return nil
}

func cmdWake(sh *shell, args []string) error {
	tasks, err := sh.tasks(args)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		t.Wake()
	}
	return nil
}

func cmdSuspend(sh *shell, args []string) error {
	tasks, err := sh.tasks(args)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		t.Suspend()
	}
	return nil
}

func cmdSched(sh *shell, args []string) error {
	n := 1
	switch len(args) {
	case 0:
	case 1:
		var err error
		if n, err = strconv.Atoi(args[0]); err != nil || n < 0 {
			return fmt.Errorf("sched: invalid count %q", args[0])
		}
	default:
		return errors.New("sched: too many arguments")
	}
	for range n {
		sh.sched.Reschedule()
	}
	return nil
}

func cmdAfter(sh *shell, args []string) error {
	if len(args) < 2 {
		return errors.New("after: need a duration and a message")
	}
	d, err := time.ParseDuration(args[0])
	if err != nil {
		return fmt.Errorf("after: %w", err)
	}
	msg := strings.Join(args[1:], " ")
	sh.poller.After(d, func() { fmt.Fprintln(sh.out, msg) })
	return nil
}

func cmdTest(sh *shell, args []string) error {
	fs := sh.flagSet("test")
	n := fs.Int("n", 5, "`iterations` per task")
	if err := fs.Parse(args); err != nil {
		return err
	}

	counter := 0

	body := func(t *bthread.Task) {
		for range *n {
			counter++
			_ = t.ShouldStop()
		}
	}

	var tasks []*bthread.Task

	defer func() {
		for _, t := range tasks {
			t.Stop()
		}
	}()

	for _, name := range []string{"test-a", "test-b", "test-c"} {
		t, err := sh.sched.Spawn(body, nil, "%s", name)
		if err != nil {
			return err
		}
		tasks = append(tasks, t)
	}

	for _, t := range tasks {
		t.Stop()
	}

	stopped := tasks
	tasks = nil

	fmt.Fprintf(sh.out, "counter: %d\n", counter)

	if want := len(stopped) * *n; counter != want {
		return fmt.Errorf("test: counter is %d, want %d", counter, want)
	}

	return nil
}

func cmdHelp(sh *shell, args []string) error {
	for _, cmd := range commands {
		fmt.Fprintln(sh.out, cmd.usage)
	}
	return nil
}

func cmdQuit(sh *shell, args []string) error {
	sh.quit = true
	return nil
}
