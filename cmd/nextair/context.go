package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"nextair/internal/config"
	"nextair/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newRunLogger builds the configured logger with a fresh run ID attached so
// all lines from one invocation can be correlated.
func (c *commandContext) newRunLogger(cfg *config.Config) (*slog.Logger, string, error) {
	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Path:   cfg.Logging.Path,
	})
	if err != nil {
		return nil, "", err
	}
	runID := uuid.NewString()
	return logger.With(logging.String(logging.FieldRunID, runID)), runID, nil
}

// timezone resolves the configured output timezone, defaulting to the system
// local zone.
func timezone(cfg *config.Config) (*time.Location, error) {
	if strings.TrimSpace(cfg.Output.Timezone) == "" {
		return time.Local, nil
	}
	return time.LoadLocation(cfg.Output.Timezone)
}
