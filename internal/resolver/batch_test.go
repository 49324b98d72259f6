package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"nextair/internal/anilist"
	"nextair/internal/plex"
)

type fakeBrowser struct {
	shows      []plex.Show
	audio      map[string][][]string
	showsErr   error
	audioCalls int
}

func (f *fakeBrowser) Shows(ctx context.Context, library string) ([]plex.Show, error) {
	return f.shows, f.showsErr
}

func (f *fakeBrowser) EpisodeAudioTags(ctx context.Context, ratingKey string) ([][]string, error) {
	f.audioCalls++
	tags, ok := f.audio[ratingKey]
	if !ok {
		return nil, errors.New("unknown rating key")
	}
	return tags, nil
}

func testBrowser() *fakeBrowser {
	return &fakeBrowser{
		shows: []plex.Show{
			{RatingKey: "100", Title: "Frieren", EpisodeCount: 2},
			{RatingKey: "200", Title: "Naruto", EpisodeCount: 1},
		},
		audio: map[string][][]string{
			"100": {{"jpn", "eng"}, {"jpn"}},
			"200": {{"jpn"}},
		},
	}
}

func TestBatchRunCounters(t *testing.T) {
	air := time.Date(2026, 1, 7, 15, 0, 0, 0, time.UTC)
	catalog := &fakeCatalog{byQuery: map[string][]anilist.Media{
		"Frieren": {airingMedia(101, "Frieren", air, 19)},
		"Naruto":  {finishedMedia(42, "Naruto")},
	}}
	r, _ := newTestResolver(t, catalog, nil)
	browser := testBrowser()

	result, err := NewBatch(r, browser, "Anime", 10).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	s := result.Summary
	if s.Total != 2 {
		t.Errorf("total = %d", s.Total)
	}
	if s.APICalls != 2 || s.CacheUsed != 0 {
		t.Errorf("api/cache = %d/%d", s.APICalls, s.CacheUsed)
	}
	if s.AiringFound != 1 || s.NoAiring != 1 {
		t.Errorf("airing/no airing = %d/%d", s.AiringFound, s.NoAiring)
	}
	if s.AudioRefreshed != 2 {
		t.Errorf("audio refreshed = %d", s.AudioRefreshed)
	}

	frieren := result.Audio["Frieren"]
	if frieren.EnglishAudioCount != 1 || frieren.JapaneseAudioCount != 2 {
		t.Errorf("frieren audio = %+v", frieren)
	}
	if frieren.EpisodeCount != 2 {
		t.Errorf("fingerprint = %d", frieren.EpisodeCount)
	}
	if res, ok := result.Resolutions["Frieren"]; !ok || res.Weekday != "wednesday" {
		t.Errorf("frieren resolution = %+v", res)
	}
}

func TestBatchWarmCacheSkipsNetwork(t *testing.T) {
	air := time.Date(2026, 1, 7, 15, 0, 0, 0, time.UTC)
	catalog := &fakeCatalog{byQuery: map[string][]anilist.Media{
		"Frieren": {airingMedia(101, "Frieren", air, 19)},
		"Naruto":  {finishedMedia(42, "Naruto")},
	}}
	r, _ := newTestResolver(t, catalog, nil)
	browser := testBrowser()
	batch := NewBatch(r, browser, "Anime", 10)

	if _, err := batch.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	searchesAfterFirst := catalog.searches
	audioAfterFirst := browser.audioCalls

	result, err := batch.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if catalog.searches != searchesAfterFirst {
		t.Errorf("warm run searched the catalog (%d -> %d)", searchesAfterFirst, catalog.searches)
	}
	if browser.audioCalls != audioAfterFirst {
		t.Errorf("warm run rescanned audio (%d -> %d)", audioAfterFirst, browser.audioCalls)
	}
	if result.Summary.CacheUsed != 2 || result.Summary.APICalls != 0 {
		t.Errorf("warm counters = %+v", result.Summary)
	}
}

func TestBatchAudioFingerprintInvalidation(t *testing.T) {
	air := time.Date(2026, 1, 7, 15, 0, 0, 0, time.UTC)
	catalog := &fakeCatalog{records: []anilist.Media{airingMedia(101, "Frieren", air, 19)}}
	r, _ := newTestResolver(t, catalog, nil)
	browser := testBrowser()
	batch := NewBatch(r, browser, "Anime", 10)

	if _, err := batch.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	audioAfterFirst := browser.audioCalls

	// A new episode appears: the fingerprint changes and only that show is
	// rescanned.
	browser.shows[0].EpisodeCount = 3
	browser.audio["100"] = append(browser.audio["100"], []string{"jpn"})

	result, err := batch.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if browser.audioCalls != audioAfterFirst+1 {
		t.Errorf("expected exactly one rescan, got %d", browser.audioCalls-audioAfterFirst)
	}
	if got := result.Audio["Frieren"].JapaneseAudioCount; got != 3 {
		t.Errorf("japanese count = %d", got)
	}
}

func TestBatchContinuesPastTitleFailures(t *testing.T) {
	catalog := &fakeCatalog{err: errors.New("connection reset")}
	r, _ := newTestResolver(t, catalog, nil)
	browser := testBrowser()
	delete(browser.audio, "200")

	result, err := NewBatch(r, browser, "Anime", 10).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// One audio failure plus two resolution failures.
	if result.Summary.Errors != 3 {
		t.Errorf("errors = %d", result.Summary.Errors)
	}
}

func TestBatchEnumerationFailureAborts(t *testing.T) {
	catalog := &fakeCatalog{}
	r, _ := newTestResolver(t, catalog, nil)
	browser := &fakeBrowser{showsErr: errors.New("section not found")}

	if _, err := NewBatch(r, browser, "Anime", 10).Run(context.Background()); err == nil {
		t.Fatal("expected enumeration error")
	}
}

func TestBatchHonorsCancellation(t *testing.T) {
	catalog := &fakeCatalog{}
	r, _ := newTestResolver(t, catalog, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewBatch(r, testBrowser(), "Anime", 10).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
