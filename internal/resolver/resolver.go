package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"nextair/internal/aircache"
	"nextair/internal/anilist"
	"nextair/internal/logging"
	"nextair/internal/match"
	"nextair/internal/overrides"
)

// Catalog is the slice of the AniList client the resolver needs.
type Catalog interface {
	Search(ctx context.Context, title string) ([]anilist.Media, error)
	MediaByID(ctx context.Context, id int) (anilist.Media, error)
}

// Config describes resolver construction.
type Config struct {
	Catalog   Catalog
	Cache     *aircache.Store
	Overrides *overrides.Table
	Zone      *time.Location
	Logger    *slog.Logger

	// ForceRefresh bypasses cache reads. Writes still happen, so a forced
	// run repopulates the cache rather than draining it.
	ForceRefresh bool
}

// Resolver resolves titles one at a time. It is not safe for concurrent use;
// runs are sequential by construction.
type Resolver struct {
	catalog      Catalog
	cache        *aircache.Store
	overrides    *overrides.Table
	zone         *time.Location
	logger       *slog.Logger
	forceRefresh bool
	now          func() time.Time
}

// Outcome pairs a resolution with its provenance.
type Outcome struct {
	Resolution aircache.Resolution
	FromCache  bool
}

// New creates a Resolver from the supplied configuration.
func New(cfg Config) (*Resolver, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("resolver: catalog is required")
	}
	if cfg.Cache == nil {
		return nil, errors.New("resolver: cache is required")
	}
	zone := cfg.Zone
	if zone == nil {
		zone = time.Local
	}
	return &Resolver{
		catalog:      cfg.Catalog,
		cache:        cfg.Cache,
		overrides:    cfg.Overrides,
		zone:         zone,
		logger:       logging.NewComponentLogger(cfg.Logger, "resolver"),
		forceRefresh: cfg.ForceRefresh,
		now:          time.Now,
	}, nil
}

// Resolve produces the resolution for one title. Every network outcome is
// written back to the cache, including the unresolved sentinel, so repeated
// runs do not re-query titles known to have nothing upcoming.
func (r *Resolver) Resolve(ctx context.Context, title string) (Outcome, error) {
	rule := r.overrides.Lookup(title)
	if rule.Kind == overrides.Ignore {
		r.logger.Debug("title ignored by override", logging.String("title", title))
		return Outcome{Resolution: aircache.Unresolved()}, nil
	}

	// Pinned titles always re-query by ID; a stale cached match must not
	// outlive the override that was added to correct it.
	if !r.forceRefresh && rule.Kind != overrides.ForceID {
		if cached, ok := r.cache.Resolution(title); ok {
			return Outcome{Resolution: cached, FromCache: true}, nil
		}
	}

	records, err := r.lookup(ctx, title, rule)
	if err != nil {
		var apiErr *anilist.APIError
		if errors.As(err, &apiErr) || errors.Is(err, anilist.ErrNotFound) {
			// The catalog answered but had nothing usable. Cache the
			// negative so the next run skips it.
			r.logger.Warn("catalog rejected query",
				logging.String("title", title), logging.Error(err))
			result := aircache.Unresolved()
			r.cache.SetResolution(title, result)
			return Outcome{Resolution: result}, nil
		}
		return Outcome{}, fmt.Errorf("resolve %q: %w", title, err)
	}

	best, ok := match.Best(title, records)
	if !ok {
		r.logger.Debug("no candidate above threshold", logging.String("title", title))
		result := aircache.Unresolved()
		r.cache.SetResolution(title, result)
		return Outcome{Resolution: result}, nil
	}

	result := r.project(best)
	r.cache.SetResolution(title, result)

	if result.HasAiring() {
		r.logger.Info("resolved airing schedule",
			logging.String("title", title),
			logging.String("matched", result.MatchedTitle),
			logging.String("weekday", result.Weekday),
			logging.Int("episode", result.EpisodeNumber))
	} else {
		r.logger.Debug("matched without upcoming episode",
			logging.String("title", title),
			logging.String("matched", result.MatchedTitle))
	}
	return Outcome{Resolution: result}, nil
}

func (r *Resolver) lookup(ctx context.Context, title string, rule overrides.Rule) ([]anilist.Media, error) {
	if rule.Kind == overrides.ForceID {
		media, err := r.catalog.MediaByID(ctx, rule.ID)
		if err != nil {
			return nil, err
		}
		return []anilist.Media{media}, nil
	}
	return r.catalog.Search(ctx, title)
}

// project maps a catalog match onto the cached result shape, localizing the
// next airing time and deriving the weekday label from local time, not UTC.
func (r *Resolver) project(best match.Match) aircache.Resolution {
	result := aircache.Resolution{
		Weekday:        aircache.WeekdayNone,
		AniListID:      best.Media.ID,
		MatchedTitle:   best.Media.Title.Primary(),
		MatchScore:     math.Round(best.Score*1000) / 1000,
		AverageScore:   best.Media.AverageScore,
		MatchedSynonym: best.Synonym,
	}
	airing := best.Media.NextAiring
	if airing == nil || airing.AiringAt <= 0 {
		return result
	}

	airUTC := time.Unix(airing.AiringAt, 0).UTC()
	airLocal := airUTC.In(r.zone)

	result.Weekday = strings.ToLower(airLocal.Weekday().String())
	result.AirUTC = airUTC.Format(aircache.AirTimeLayout)
	result.AirLocal = airLocal.Format(aircache.AirTimeLayout)
	result.EpisodeNumber = airing.Episode
	result.TimeUntilHours = roundTenth(airLocal.Sub(r.now().In(r.zone)).Hours())
	return result
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
