package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/inhies/go-bytesize"
	"gopkg.in/yaml.v2"

	"github.com/b97tsk/bthread"
)

// config is the content of the configuration file.
type config struct {
	// StackSize is the stack region given to every task, e.g. "32KB".
	StackSize string `yaml:"stack_size"`
	// MemoryLimit bounds the memory charged to tasks, e.g. "1MB".
	// Empty or "0" means no limit.
	MemoryLimit string `yaml:"memory_limit"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// Prompt is printed before every command line.
	Prompt string `yaml:"prompt"`
	// Color is one of auto, always, never.
	Color string `yaml:"color"`
}

func defaultConfig() config {
	return config{
		StackSize: "32KB",
		LogLevel:  "info",
		Prompt:    "bthread> ",
		Color:     "auto",
	}
}

func loadConfig(name string) (config, error) {
	cfg := defaultConfig()
	if name == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return cfg, err
	}

	return parseConfig(data)
}

func parseConfig(data []byte) (config, error) {
	cfg := defaultConfig()

	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	switch cfg.Color {
	case "auto", "always", "never":
	default:
		return cfg, fmt.Errorf("parse config: invalid color %q", cfg.Color)
	}

	return cfg, nil
}

func (cfg config) logLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return level, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// options turns cfg into options for bthread.New.
// The allocator is returned too when a memory limit is set, nil otherwise.
func (cfg config) options() ([]bthread.Option, *bthread.LimitAllocator, error) {
	stackSize, err := bytesize.Parse(cfg.StackSize)
	if err != nil {
		return nil, nil, fmt.Errorf("stack_size: %w", err)
	}
	if stackSize == 0 {
		return nil, nil, fmt.Errorf("stack_size: must not be zero")
	}

	opts := []bthread.Option{bthread.WithStackSize(int(stackSize))}

	var alloc *bthread.LimitAllocator

	if cfg.MemoryLimit != "" {
		limit, err := bytesize.Parse(cfg.MemoryLimit)
		if err != nil {
			return nil, nil, fmt.Errorf("memory_limit: %w", err)
		}
		if limit != 0 {
			alloc = bthread.NewLimitAllocator(int(limit))
			opts = append(opts, bthread.WithAllocator(alloc))
		}
	}

	return opts, alloc, nil
}
