package aircache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"nextair/internal/logging"
)

// audioKey is the reserved top-level key holding the audio namespace. It can
// never collide with a real show title because it is routed to its own typed
// map on load and skipped when reading resolution entries.
const audioKey = "_audio"

// Entry wraps a cached resolution with its creation timestamp.
type Entry struct {
	Result    Resolution `json:"result"`
	Timestamp string     `json:"timestamp"`
}

// AudioEntry records per-title audio stream counts. EpisodeCount is a
// change-detection fingerprint: when the live episode count disagrees, the
// entry is stale regardless of age.
type AudioEntry struct {
	EnglishAudioCount  int    `json:"english_audio_count"`
	JapaneseAudioCount int    `json:"japanese_audio_count"`
	EpisodeCount       int    `json:"episode_count"`
	Timestamp          string `json:"timestamp"`
}

// TTL holds the independent expiry durations per cache category. Catalog
// metadata churns faster than audio-track layout, hence separate knobs.
type TTL struct {
	Resolution time.Duration
	Audio      time.Duration
	Default    time.Duration
}

func (t TTL) resolution() time.Duration {
	if t.Resolution > 0 {
		return t.Resolution
	}
	return t.Default
}

func (t TTL) audio() time.Duration {
	if t.Audio > 0 {
		return t.Audio
	}
	return t.Default
}

// Store composes the resolution and audio namespaces over one cache file.
// It is owned by a single sequential run; there is no locking discipline
// because there is no concurrent writer.
type Store struct {
	path   string
	logger *slog.Logger
	ttl    TTL
	zone   *time.Location
	now    func() time.Time

	resolutions map[string]Entry
	audio       map[string]AudioEntry
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the store's time source. Intended for tests that pin
// entry validity to a fixed instant.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a store backed by the given file and loads any existing
// contents. A missing or corrupt file starts the store empty; neither is
// fatal.
func NewStore(path string, ttl TTL, zone *time.Location, logger *slog.Logger, opts ...Option) *Store {
	if zone == nil {
		zone = time.UTC
	}
	s := &Store{
		path:        path,
		logger:      logging.NewComponentLogger(logger, "aircache"),
		ttl:         ttl,
		zone:        zone,
		now:         time.Now,
		resolutions: make(map[string]Entry),
		audio:       make(map[string]AudioEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	if path == "" {
		return s
	}
	if err := s.load(); err != nil {
		s.logger.Warn("cache load failed, starting empty", logging.Error(err))
	}
	return s
}

// Resolution returns a valid cached result for the title. Expired entries and
// entries whose stored air date has already passed are reported as misses.
func (s *Store) Resolution(title string) (Resolution, bool) {
	entry, ok := s.resolutions[title]
	if !ok || !s.resolutionValid(entry) {
		return Resolution{}, false
	}
	return entry.Result, true
}

// SetResolution replaces the cached entry for the title, stamping it now.
func (s *Store) SetResolution(title string, result Resolution) {
	s.resolutions[title] = Entry{
		Result:    result,
		Timestamp: s.now().In(s.zone).Format(time.RFC3339),
	}
}

// Audio returns a valid cached audio record for the title. The live episode
// count acts as a fingerprint: a mismatch invalidates the entry even inside
// its TTL.
func (s *Store) Audio(title string, liveEpisodeCount int) (AudioEntry, bool) {
	entry, ok := s.audio[title]
	if !ok {
		return AudioEntry{}, false
	}
	ts, err := parseTimestamp(entry.Timestamp, s.zone)
	if err != nil {
		return AudioEntry{}, false
	}
	if s.now().Sub(ts) >= s.ttl.audio() {
		return AudioEntry{}, false
	}
	if entry.EpisodeCount != liveEpisodeCount {
		return AudioEntry{}, false
	}
	return entry, true
}

// SetAudio replaces the cached audio record for the title, stamping it now.
func (s *Store) SetAudio(title string, entry AudioEntry) {
	entry.Timestamp = s.now().In(s.zone).Format(time.RFC3339)
	s.audio[title] = entry
}

// Snapshot returns copies of both namespaces for read-only inspection.
func (s *Store) Snapshot() (map[string]Entry, map[string]AudioEntry) {
	resolutions := make(map[string]Entry, len(s.resolutions))
	for title, entry := range s.resolutions {
		resolutions[title] = entry
	}
	audio := make(map[string]AudioEntry, len(s.audio))
	for title, entry := range s.audio {
		audio[title] = entry
	}
	return resolutions, audio
}

// Len returns the number of entries across both namespaces.
func (s *Store) Len() int {
	return len(s.resolutions) + len(s.audio)
}

// Save writes both namespaces to disk atomically. Callers treat failures as
// non-fatal: the run continues with the in-memory cache.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}

	flat := make(map[string]json.RawMessage, len(s.resolutions)+1)
	for title, entry := range s.resolutions {
		if title == audioKey {
			continue
		}
		raw, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal entry %q: %w", title, err)
		}
		flat[title] = raw
	}
	if len(s.audio) > 0 {
		raw, err := json.Marshal(s.audio)
		if err != nil {
			return fmt.Errorf("marshal audio namespace: %w", err)
		}
		flat[audioKey] = raw
	}

	data, err := json.MarshalIndent(flat, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	s.logger.Debug("cache saved",
		logging.Int("resolutions", len(s.resolutions)),
		logging.Int("audio", len(s.audio)))
	return nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}

	for title, raw := range flat {
		if title == audioKey {
			audio := make(map[string]AudioEntry)
			if err := json.Unmarshal(raw, &audio); err != nil {
				s.logger.Warn("skipping unreadable audio namespace", logging.Error(err))
				continue
			}
			s.audio = audio
			continue
		}
		var entry Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			s.logger.Warn("skipping unreadable cache entry",
				logging.String("title", title), logging.Error(err))
			continue
		}
		s.resolutions[title] = entry
	}

	s.logger.Info("cache loaded",
		logging.Int("resolutions", len(s.resolutions)),
		logging.Int("audio", len(s.audio)))
	return nil
}

// resolutionValid applies both invalidation axes: generic age against the
// resolution TTL, and the calendar check that refuses to serve an entry whose
// stored local air date has already passed.
func (s *Store) resolutionValid(entry Entry) bool {
	ts, err := parseTimestamp(entry.Timestamp, s.zone)
	if err != nil {
		return false
	}
	now := s.now()
	if now.Sub(ts) >= s.ttl.resolution() {
		return false
	}
	if entry.Result.AirLocal != "" {
		air, err := time.ParseInLocation(AirTimeLayout, entry.Result.AirLocal, s.zone)
		if err != nil {
			return false
		}
		if dayOrdinal(air) < dayOrdinal(now.In(s.zone)) {
			return false
		}
	}
	return true
}

func dayOrdinal(t time.Time) int {
	return t.Year()*1000 + t.YearDay()
}

// timestampLayouts covers RFC 3339 entries written by this tool and the
// naive local timestamps found in cache files written by earlier tooling.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func parseTimestamp(value string, zone *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("missing timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, zone); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
