package app

import (
	"errors"
	"fmt"
)

// Executor names accepted by Config.Executor.
const (
	ExecutorLocal    = "local"
	ExecutorPool     = "pool"
	ExecutorSocketIO = "socketio"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // hcl file or directory

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	// Executor selects how prediction tasks run.
	Executor    string
	WorkerCount int
	RemoteURL   string

	// CacheSize is the number of model sets kept in memory.
	CacheSize int
	// Region is used for s3:// model stores and output dirs.
	Region string
	// Env feeds the configuration's `env` variable and the train path
	// fallback. Nil means the process environment.
	Env map[string]string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	if cfg.Executor == "" {
		cfg.Executor = ExecutorPool
	}
	switch cfg.Executor {
	case ExecutorLocal, ExecutorPool:
	case ExecutorSocketIO:
		if cfg.RemoteURL == "" {
			return nil, errors.New("RemoteURL is required when the socketio executor is selected")
		}
	default:
		return nil, fmt.Errorf("unknown executor %q: must be '%s', '%s' or '%s'", cfg.Executor, ExecutorLocal, ExecutorPool, ExecutorSocketIO)
	}
	if cfg.WorkerCount < 0 {
		return nil, fmt.Errorf("WorkerCount must not be negative, got %d", cfg.WorkerCount)
	}
	return &cfg, nil
}
