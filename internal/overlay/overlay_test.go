package overlay

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"nextair/internal/aircache"
)

func readOverlays(t *testing.T, path string) map[string]Entry {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var doc File
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return doc.Overlays
}

func TestDayLabel(t *testing.T) {
	cases := []struct {
		days int
		want string
	}{
		{-1, "today"},
		{0, "today"},
		{1, "tomorrow"},
		{2, "in_2_days"},
		{6, "in_6_days"},
		{7, "next_week"},
		{30, "next_week"},
	}
	for _, tc := range cases {
		if got := DayLabel(tc.days); got != tc.want {
			t.Errorf("DayLabel(%d) = %q, want %q", tc.days, got, tc.want)
		}
	}
}

func TestWriteWeekdaySkipsUnresolved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weekday.yml")
	resolutions := map[string]aircache.Resolution{
		"Frieren": {Weekday: "wednesday", AirLocal: "2026-01-07 15:00:00"},
		"Naruto":  aircache.Unresolved(),
	}
	if err := WriteWeekday(path, resolutions); err != nil {
		t.Fatalf("WriteWeekday: %v", err)
	}

	overlays := readOverlays(t, path)
	if len(overlays) != 1 {
		t.Fatalf("expected 1 overlay, got %d", len(overlays))
	}
	entry := overlays["Frieren"]
	if entry.Overlay.Name != "wednesday" {
		t.Errorf("name = %q", entry.Overlay.Name)
	}
	if entry.Search.All.Title != "Frieren" {
		t.Errorf("search title = %q", entry.Search.All.Title)
	}
}

func TestWriteAiringDayLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "day.yml")
	now := time.Date(2026, 1, 5, 23, 0, 0, 0, time.UTC)
	resolutions := map[string]aircache.Resolution{
		"Airs Soon":  {Weekday: "tuesday", AirLocal: "2026-01-06 01:00:00"},
		"Airs Later": {Weekday: "sunday", AirLocal: "2026-01-11 20:00:00"},
	}
	if err := WriteAiringDay(path, resolutions, now, time.UTC); err != nil {
		t.Fatalf("WriteAiringDay: %v", err)
	}

	overlays := readOverlays(t, path)
	// Two hours ahead on the clock but across midnight: a calendar day away.
	if got := overlays["Airs Soon"].Overlay.Name; got != "tomorrow" {
		t.Errorf("soon label = %q", got)
	}
	if got := overlays["Airs Later"].Overlay.Name; got != "in_6_days" {
		t.Errorf("later label = %q", got)
	}
}

func TestWriteDualAudio(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio.yml")
	audio := map[string]aircache.AudioEntry{
		"Dubbed":   {EnglishAudioCount: 12, JapaneseAudioCount: 12},
		"Sub Only": {JapaneseAudioCount: 24},
	}
	if err := WriteDualAudio(path, audio); err != nil {
		t.Fatalf("WriteDualAudio: %v", err)
	}

	overlays := readOverlays(t, path)
	if len(overlays) != 1 {
		t.Fatalf("expected 1 overlay, got %d", len(overlays))
	}
	if overlays["Dubbed"].Overlay.Name != "dual_audio" {
		t.Errorf("name = %q", overlays["Dubbed"].Overlay.Name)
	}
}

func TestWriteEmptySetStillProducesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yml")
	if err := WriteWeekday(path, nil); err != nil {
		t.Fatalf("WriteWeekday: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("overlay file missing: %v", err)
	}
}
