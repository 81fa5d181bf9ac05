// Command bthread is an interactive shell over a cooperative task
// scheduler. It spawns, lists, cancels and stops worker tasks, the way a
// bootloader's bthread command does.
//
// Usage:
//
//	bthread [-config file] [-c command]...
//
// Without -c, commands are read from standard input.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/b97tsk/bthread"
)

type commandList []string

func (l *commandList) String() string { return strings.Join(*l, "; ") }

func (l *commandList) Set(s string) error {
	*l = append(*l, s)
	return nil
}

func main() {
	configFile := flag.String("config", "", "YAML configuration `file`")

	var commands commandList
	flag.Var(&commands, "c", "run `command` instead of reading standard input (repeatable)")

	flag.Parse()

	if err := run(*configFile, commands); err != nil {
		fmt.Fprintln(os.Stderr, "bthread:", err)
		os.Exit(1)
	}
}

func run(configFile string, commands []string) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	level, err := cfg.logLevel()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts, alloc, err := cfg.options()
	if err != nil {
		return err
	}

	opts = append(opts, bthread.WithLogger(logger))
	if level <= slog.LevelDebug {
		opts = append(opts, bthread.WithSwitchHook(bthread.NewLogHook(logger)))
	}

	s := bthread.New(opts...)

	sh, err := newShell(s, stdout(cfg.Color), cfg.Prompt)
	if err != nil {
		return err
	}
	sh.alloc = alloc

	defer sh.close()

	if len(commands) != 0 {
		for _, line := range commands {
			if err := sh.exec(line); err != nil {
				return err
			}
		}
		return nil
	}

	return sh.run(os.Stdin)
}

func stdout(color string) io.Writer {
	fd := os.Stdout.Fd()
	if color == "always" || color == "auto" && (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) {
		return colorable.NewColorableStdout()
	}
	return colorable.NewNonColorable(os.Stdout)
}
