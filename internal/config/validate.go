package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAniList(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAniList() error {
	if c.AniList.Token == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/nextair/config.toml"
		}
		return fmt.Errorf("anilist.token is required. Set ANILIST_TOKEN env var or edit %s (create with 'nextair config init')", defaultPath)
	}
	if c.AniList.RequestsPerMinute > 90 {
		return errors.New("anilist.requests_per_minute must not exceed 90")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.ResolutionTTLHours <= 0 {
		return errors.New("cache.resolution_ttl_hours must be positive")
	}
	if c.Cache.AudioTTLHours <= 0 {
		return errors.New("cache.audio_ttl_hours must be positive")
	}
	if c.Cache.DefaultTTLHours <= 0 {
		return errors.New("cache.default_ttl_hours must be positive")
	}
	if c.Cache.CheckpointInterval <= 0 {
		return errors.New("cache.checkpoint_interval must be positive")
	}
	return nil
}

func (c *Config) validateOutput() error {
	if strings.TrimSpace(c.Output.Timezone) != "" {
		if _, err := time.LoadLocation(c.Output.Timezone); err != nil {
			return fmt.Errorf("output.timezone: %w", err)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

// ValidatePlex checks the Plex settings. It is separate from Validate so
// commands that never touch the media server can run without them.
func (c *Config) ValidatePlex() error {
	if strings.TrimSpace(c.Plex.URL) == "" {
		return errors.New("plex.url must be set (or PLEX_URL env var)")
	}
	if strings.TrimSpace(c.Plex.Token) == "" {
		return errors.New("plex.token must be set (or PLEX_TOKEN env var)")
	}
	if strings.TrimSpace(c.Plex.Library) == "" {
		return errors.New("plex.library must be set")
	}
	return nil
}
