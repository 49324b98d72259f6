package resolver

import (
	"context"
	"fmt"

	"nextair/internal/aircache"
	"nextair/internal/language"
	"nextair/internal/logging"
	"nextair/internal/plex"
)

// LibraryBrowser is the slice of the media-server client the batch needs.
type LibraryBrowser interface {
	Shows(ctx context.Context, library string) ([]plex.Show, error)
	EpisodeAudioTags(ctx context.Context, ratingKey string) ([][]string, error)
}

// Summary carries the per-run counters surfaced to the operator.
type Summary struct {
	Total          int
	CacheUsed      int
	APICalls       int
	AiringFound    int
	NoAiring       int
	AudioRefreshed int
	Errors         int
}

// BatchResult is everything a run produces: per-title resolutions and audio
// records keyed by show title, plus the counters.
type BatchResult struct {
	Resolutions map[string]aircache.Resolution
	Audio       map[string]aircache.AudioEntry
	Summary     Summary
}

const defaultCheckpointInterval = 10

// Batch walks a library section through the audio pass and the resolution
// pass, checkpointing the cache as it goes so an interrupted run keeps its
// progress.
type Batch struct {
	resolver *Resolver
	browser  LibraryBrowser
	library  string
	interval int
}

// NewBatch creates a batch runner over the given library section.
func NewBatch(r *Resolver, browser LibraryBrowser, library string, checkpointInterval int) *Batch {
	if checkpointInterval <= 0 {
		checkpointInterval = defaultCheckpointInterval
	}
	return &Batch{resolver: r, browser: browser, library: library, interval: checkpointInterval}
}

// Run enumerates the library and produces resolutions and audio counts for
// every show. Individual title failures are counted and skipped; only
// enumeration failures and context cancellation abort the run.
func (b *Batch) Run(ctx context.Context) (BatchResult, error) {
	r := b.resolver
	result := BatchResult{
		Resolutions: make(map[string]aircache.Resolution),
		Audio:       make(map[string]aircache.AudioEntry),
	}

	shows, err := b.browser.Shows(ctx, b.library)
	if err != nil {
		return result, fmt.Errorf("enumerate library %q: %w", b.library, err)
	}
	result.Summary.Total = len(shows)
	r.logger.Info("starting batch run",
		logging.String("library", b.library),
		logging.Int("shows", len(shows)))

	if err := b.audioPass(ctx, shows, &result); err != nil {
		return result, err
	}
	if err := b.resolutionPass(ctx, shows, &result); err != nil {
		return result, err
	}

	s := result.Summary
	r.logger.Info("batch run complete",
		logging.Int("total", s.Total),
		logging.Int("cache_used", s.CacheUsed),
		logging.Int("api_calls", s.APICalls),
		logging.Int("airing_found", s.AiringFound),
		logging.Int("no_airing", s.NoAiring),
		logging.Int("audio_refreshed", s.AudioRefreshed),
		logging.Int("errors", s.Errors))
	return result, nil
}

// audioPass fills the audio namespace. Cached entries whose episode-count
// fingerprint still matches are reused without touching the media server.
func (b *Batch) audioPass(ctx context.Context, shows []plex.Show, result *BatchResult) error {
	r := b.resolver
	sinceCheckpoint := 0
	for _, show := range shows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry, ok := r.cache.Audio(show.Title, show.EpisodeCount); ok {
			result.Audio[show.Title] = entry
			continue
		}

		episodes, err := b.browser.EpisodeAudioTags(ctx, show.RatingKey)
		if err != nil {
			r.logger.Warn("audio scan failed",
				logging.String("title", show.Title), logging.Error(err))
			result.Summary.Errors++
			continue
		}

		entry := countAudio(episodes)
		entry.EpisodeCount = show.EpisodeCount
		r.cache.SetAudio(show.Title, entry)
		result.Audio[show.Title] = entry
		result.Summary.AudioRefreshed++

		sinceCheckpoint++
		if sinceCheckpoint >= b.interval {
			b.checkpoint()
			sinceCheckpoint = 0
		}
	}
	b.checkpoint()
	return nil
}

func (b *Batch) resolutionPass(ctx context.Context, shows []plex.Show, result *BatchResult) error {
	r := b.resolver
	sinceCheckpoint := 0
	for _, show := range shows {
		if err := ctx.Err(); err != nil {
			return err
		}
		outcome, err := r.Resolve(ctx, show.Title)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Warn("resolution failed",
				logging.String("title", show.Title), logging.Error(err))
			result.Summary.Errors++
			continue
		}
		result.Resolutions[show.Title] = outcome.Resolution

		if outcome.FromCache {
			result.Summary.CacheUsed++
		} else {
			result.Summary.APICalls++
			sinceCheckpoint++
		}
		if outcome.Resolution.HasAiring() {
			result.Summary.AiringFound++
		} else {
			result.Summary.NoAiring++
		}

		if sinceCheckpoint >= b.interval {
			b.checkpoint()
			sinceCheckpoint = 0
		}
	}
	b.checkpoint()
	return nil
}

// checkpoint persists the cache mid-run. Failures are logged and swallowed;
// losing a checkpoint costs repeat lookups, not correctness.
func (b *Batch) checkpoint() {
	if err := b.resolver.cache.Save(); err != nil {
		b.resolver.logger.Warn("cache checkpoint failed", logging.Error(err))
	}
}

func countAudio(episodes [][]string) aircache.AudioEntry {
	var entry aircache.AudioEntry
	for _, tags := range episodes {
		english, japanese := false, false
		for _, tag := range tags {
			if language.IsEnglish(tag) {
				english = true
			}
			if language.IsJapanese(tag) {
				japanese = true
			}
		}
		if english {
			entry.EnglishAudioCount++
		}
		if japanese {
			entry.JapaneseAudioCount++
		}
	}
	return entry
}
