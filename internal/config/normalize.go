package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeEnv()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAniList()
	c.normalizeLogging()
	return nil
}

// normalizeEnv lets environment variables fill in credentials so they can be
// kept out of the config file.
func (c *Config) normalizeEnv() {
	if strings.TrimSpace(c.Plex.URL) == "" {
		c.Plex.URL = os.Getenv("PLEX_URL")
	}
	if strings.TrimSpace(c.Plex.Token) == "" {
		c.Plex.Token = os.Getenv("PLEX_TOKEN")
	}
	if strings.TrimSpace(c.AniList.Token) == "" {
		c.AniList.Token = os.Getenv("ANILIST_TOKEN")
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Cache.Path, err = expandPath(c.Cache.Path); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	if c.Overrides.Path, err = expandPath(c.Overrides.Path); err != nil {
		return fmt.Errorf("overrides.path: %w", err)
	}
	if c.Output.OverlayFile, err = expandPath(c.Output.OverlayFile); err != nil {
		return fmt.Errorf("output.overlay_file: %w", err)
	}
	if c.Output.AiringDayFile, err = expandPath(c.Output.AiringDayFile); err != nil {
		return fmt.Errorf("output.airing_day_file: %w", err)
	}
	if c.Output.AudioFile, err = expandPath(c.Output.AudioFile); err != nil {
		return fmt.Errorf("output.audio_file: %w", err)
	}
	if c.Logging.Path, err = expandPath(c.Logging.Path); err != nil {
		return fmt.Errorf("logging.path: %w", err)
	}
	if c.RunLog.Path, err = expandPath(c.RunLog.Path); err != nil {
		return fmt.Errorf("run_log.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeAniList() {
	c.AniList.Token = strings.TrimSpace(c.AniList.Token)
	c.AniList.BaseURL = strings.TrimRight(strings.TrimSpace(c.AniList.BaseURL), "/")
	if c.AniList.BaseURL == "" {
		c.AniList.BaseURL = defaultAniListBaseURL
	}
	if c.AniList.PerPage <= 0 {
		c.AniList.PerPage = defaultAniListPerPage
	}
	if c.AniList.RequestsPerMinute <= 0 {
		c.AniList.RequestsPerMinute = defaultAniListRPM
	}
	if len(c.AniList.Formats) == 0 {
		c.AniList.Formats = defaultFormats()
	}
	for i, format := range c.AniList.Formats {
		c.AniList.Formats[i] = strings.ToUpper(strings.TrimSpace(format))
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
