package overlay

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"nextair/internal/aircache"
)

// Entry is one overlay rule in Kometa's file format: an overlay name applied
// to the shows matched by the title search.
type Entry struct {
	Overlay Name       `yaml:"overlay"`
	Search  TitleMatch `yaml:"plex_search"`
}

// Name wraps the overlay label.
type Name struct {
	Name string `yaml:"name"`
}

// TitleMatch restricts an overlay to one show by exact title.
type TitleMatch struct {
	All struct {
		Title string `yaml:"title"`
	} `yaml:"all"`
}

// File is the top-level document Kometa expects.
type File struct {
	Overlays map[string]Entry `yaml:"overlays"`
}

func newEntry(title, label string) Entry {
	e := Entry{Overlay: Name{Name: label}}
	e.Search.All.Title = title
	return e
}

// DayLabel buckets a day distance into the overlay label set. Negative
// distances collapse into "today"; anything beyond a week is "next_week".
func DayLabel(daysUntil int) string {
	switch {
	case daysUntil <= 0:
		return "today"
	case daysUntil == 1:
		return "tomorrow"
	case daysUntil <= 6:
		return fmt.Sprintf("in_%d_days", daysUntil)
	default:
		return "next_week"
	}
}

// WriteWeekday emits the weekday overlay: every show with an upcoming
// episode is labeled with its local airing weekday.
func WriteWeekday(path string, resolutions map[string]aircache.Resolution) error {
	overlays := make(map[string]Entry)
	for title, res := range resolutions {
		if !res.HasAiring() {
			continue
		}
		overlays[title] = newEntry(title, res.Weekday)
	}
	return writeFile(path, File{Overlays: overlays})
}

// WriteAiringDay emits the relative-day overlay ("today", "tomorrow", ...).
// Entries whose stored air time cannot be parsed are skipped.
func WriteAiringDay(path string, resolutions map[string]aircache.Resolution, now time.Time, zone *time.Location) error {
	if zone == nil {
		zone = time.Local
	}
	today := midnight(now.In(zone))
	overlays := make(map[string]Entry)
	for title, res := range resolutions {
		if !res.HasAiring() {
			continue
		}
		air, err := time.ParseInLocation(aircache.AirTimeLayout, res.AirLocal, zone)
		if err != nil {
			continue
		}
		// Round rather than truncate: DST can make a calendar day 23 hours.
		daysUntil := int(math.Round(midnight(air).Sub(today).Hours() / 24))
		overlays[title] = newEntry(title, DayLabel(daysUntil))
	}
	return writeFile(path, File{Overlays: overlays})
}

// WriteDualAudio emits the dual-audio overlay for shows carrying both
// English and Japanese audio tracks.
func WriteDualAudio(path string, audio map[string]aircache.AudioEntry) error {
	overlays := make(map[string]Entry)
	for title, entry := range audio {
		if entry.EnglishAudioCount > 0 && entry.JapaneseAudioCount > 0 {
			overlays[title] = newEntry(title, "dual_audio")
		}
	}
	return writeFile(path, File{Overlays: overlays})
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func writeFile(path string, doc File) error {
	if doc.Overlays == nil {
		doc.Overlays = make(map[string]Entry)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal overlay file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create overlay directory: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
