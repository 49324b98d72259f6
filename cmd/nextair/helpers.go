package main

import (
	"fmt"
	"log/slog"
	"time"

	"nextair/internal/aircache"
	"nextair/internal/anilist"
	"nextair/internal/config"
	"nextair/internal/overrides"
	"nextair/internal/rategate"
	"nextair/internal/resolver"
)

// buildResolver assembles the resolution stack shared by the run and resolve
// commands.
func buildResolver(cfg *config.Config, logger *slog.Logger, zone *time.Location, forceRefresh bool) (*resolver.Resolver, *aircache.Store, error) {
	gate := rategate.New(cfg.AniList.RequestsPerMinute)
	client, err := anilist.New(anilist.Config{
		Token:   cfg.AniList.Token,
		BaseURL: cfg.AniList.BaseURL,
		PerPage: cfg.AniList.PerPage,
		Formats: cfg.AniList.Formats,
		Gate:    gate,
		Logger:  logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create anilist client: %w", err)
	}

	table, err := overrides.Load(cfg.Overrides.Path, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("load overrides: %w", err)
	}

	store := aircache.NewStore(cfg.Cache.Path, aircache.TTL{
		Resolution: time.Duration(cfg.Cache.ResolutionTTLHours) * time.Hour,
		Audio:      time.Duration(cfg.Cache.AudioTTLHours) * time.Hour,
		Default:    time.Duration(cfg.Cache.DefaultTTLHours) * time.Hour,
	}, zone, logger)

	r, err := resolver.New(resolver.Config{
		Catalog:      client,
		Cache:        store,
		Overrides:    table,
		Zone:         zone,
		Logger:       logger,
		ForceRefresh: forceRefresh,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create resolver: %w", err)
	}
	return r, store, nil
}
