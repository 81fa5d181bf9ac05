package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-colorable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b97tsk/bthread"
)

func newTestShell(t *testing.T, opts ...bthread.Option) (*shell, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	sh, err := newShell(bthread.New(opts...), colorable.NewNonColorable(&buf), "> ")
	require.NoError(t, err)
	t.Cleanup(sh.close)
	return sh, &buf
}

func TestShellWorkers(t *testing.T) {
	sh, out := newTestShell(t)

	require.NoError(t, sh.exec("spawn a b"))
	require.NoError(t, sh.exec("spawn -s c"))
	require.NoError(t, sh.exec("sched 3"))

	out.Reset()
	require.NoError(t, sh.exec("info -v"))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 6)
	assert.Equal(t, []string{"NAME", "STATE", "STACK", "FLAGS"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"main", "running"}, strings.Fields(lines[1])[:2])
	assert.Contains(t, out.String(), "c: 0 iterations")
	assert.Contains(t, out.String(), "suspended")

	a := sh.sched.Lookup("a").Data().(*worker)
	assert.Positive(t, a.iterations)

	require.NoError(t, sh.exec("stop a"))
	assert.Nil(t, sh.sched.Lookup("a"))

	require.NoError(t, sh.exec("cancel b"))
	require.NoError(t, sh.exec("sched 5"))
	assert.Nil(t, sh.sched.Lookup("b"), "canceled task must be reaped")

	require.NoError(t, sh.exec("wake c"))
	assert.True(t, sh.sched.Lookup("c").Awake())
	require.NoError(t, sh.exec("suspend c"))
	assert.False(t, sh.sched.Lookup("c").Awake())

	require.NoError(t, sh.exec("spawn -n 2 short"))
	require.NoError(t, sh.exec("sched 5"))
	assert.Equal(t, bthread.Zombie, sh.sched.Lookup("short").State())
	require.NoError(t, sh.exec("stop short"))
	assert.Nil(t, sh.sched.Lookup("short"))
}

func TestShellErrors(t *testing.T) {
	sh, _ := newTestShell(t)

	assert.NoError(t, sh.exec(""))
	assert.NoError(t, sh.exec("   "))
	assert.ErrorContains(t, sh.exec("bogus"), "unknown command")
	assert.ErrorContains(t, sh.exec("stop main"), "managed by the shell")
	assert.ErrorContains(t, sh.exec("cancel poller"), "managed by the shell")
	assert.ErrorContains(t, sh.exec("wake nobody"), "no task named")
	assert.ErrorContains(t, sh.exec("suspend"), "no task named")
	assert.ErrorContains(t, sh.exec("spawn"), "no task named")
	assert.ErrorContains(t, sh.exec("sched x"), "invalid count")
	assert.ErrorContains(t, sh.exec("after soon hello"), "after")
	assert.Error(t, sh.exec("spawn -x w"))
	assert.Error(t, sh.exec(`spawn "unterminated`))

	require.NoError(t, sh.exec("spawn w"))
	assert.ErrorContains(t, sh.exec("spawn w"), "exists")
}

func TestShellTest(t *testing.T) {
	sh, out := newTestShell(t)

	require.NoError(t, sh.exec("spawn busy"))
	require.NoError(t, sh.exec("test"))
	assert.Contains(t, out.String(), "counter: 15")

	require.NoError(t, sh.exec("test -n 2"))
	assert.Contains(t, out.String(), "counter: 6")

	assert.Nil(t, sh.sched.Lookup("test-a"))
	assert.Equal(t, 3, sh.sched.Len(), "main, poller and busy should be left")
}

func TestShellOutOfMemory(t *testing.T) {
	a := bthread.NewLimitAllocator(96 << 10)
	sh, out := newTestShell(t, bthread.WithAllocator(a))
	sh.alloc = a

	require.NoError(t, sh.exec("spawn w"))
	assert.ErrorIs(t, sh.exec("spawn x"), bthread.ErrNoMemory)

	require.NoError(t, sh.exec("info -v"))
	assert.Contains(t, out.String(), "memory:")
}

func TestShellAfter(t *testing.T) {
	sh, out := newTestShell(t)

	require.NoError(t, sh.exec("after 0s hello world"))
	require.NoError(t, sh.exec("sched 3"))
	assert.Contains(t, out.String(), "hello world")
}

func TestShellRun(t *testing.T) {
	sh, out := newTestShell(t)

	in := strings.NewReader("spawn w\nhelp\nbogus\nquit\nspawn never\n")
	require.NoError(t, sh.run(in))

	assert.NotNil(t, sh.sched.Lookup("w"))
	assert.Nil(t, sh.sched.Lookup("never"))
	assert.Contains(t, out.String(), "> ")
	assert.Contains(t, out.String(), "error: unknown command")
	assert.Contains(t, out.String(), "spawn [-n iterations]")
	assert.NotContains(t, out.String(), "\x1b[")
}
