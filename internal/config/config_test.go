package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("ANILIST_TOKEN", "")
	path := writeConfig(t, `
[anilist]
token = "secret"
`)
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected existing config at %q", resolved)
	}
	if cfg.AniList.BaseURL != defaultAniListBaseURL {
		t.Errorf("base url = %q", cfg.AniList.BaseURL)
	}
	if cfg.AniList.RequestsPerMinute != defaultAniListRPM {
		t.Errorf("rpm = %d", cfg.AniList.RequestsPerMinute)
	}
	if cfg.Cache.ResolutionTTLHours != defaultResolutionTTLHours {
		t.Errorf("resolution ttl = %d", cfg.Cache.ResolutionTTLHours)
	}
	if len(cfg.AniList.Formats) == 0 {
		t.Error("expected default formats")
	}
	if !filepath.IsAbs(cfg.Cache.Path) {
		t.Errorf("cache path not expanded: %q", cfg.Cache.Path)
	}
}

func TestLoadRequiresAniListToken(t *testing.T) {
	t.Setenv("ANILIST_TOKEN", "")
	path := writeConfig(t, `
[plex]
url = "http://plex:32400"
`)
	_, _, _, err := Load(path)
	if err == nil {
		t.Fatal("expected error for missing anilist token")
	}
	if !strings.Contains(err.Error(), "anilist.token") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadTokenFromEnvironment(t *testing.T) {
	t.Setenv("ANILIST_TOKEN", "env-token")
	path := writeConfig(t, "")
	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AniList.Token != "env-token" {
		t.Errorf("token = %q", cfg.AniList.Token)
	}
}

func TestLoadNormalizesFormats(t *testing.T) {
	t.Setenv("ANILIST_TOKEN", "secret")
	path := writeConfig(t, `
[anilist]
formats = [" tv ", "ona"]
`)
	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AniList.Formats[0] != "TV" || cfg.AniList.Formats[1] != "ONA" {
		t.Errorf("formats = %v", cfg.AniList.Formats)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("ANILIST_TOKEN", "secret")
	cases := []struct {
		name string
		body string
	}{
		{"rpm over server limit", "[anilist]\nrequests_per_minute = 120\n"},
		{"zero ttl", "[cache]\nresolution_ttl_hours = 0\n"},
		{"bad timezone", "[output]\ntimezone = \"Mars/Olympus\"\n"},
		{"bad log format", "[logging]\nformat = \"xml\"\n"},
		{"bad log level", "[logging]\nlevel = \"loud\"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, _, err := Load(writeConfig(t, tc.body)); err == nil {
				t.Errorf("expected error for %s", tc.name)
			}
		})
	}
}

func TestValidatePlex(t *testing.T) {
	cfg := Default()
	if err := cfg.ValidatePlex(); err == nil {
		t.Error("expected error with empty plex settings")
	}
	cfg.Plex.URL = "http://plex:32400"
	cfg.Plex.Token = "token"
	cfg.Plex.Library = "Anime"
	if err := cfg.ValidatePlex(); err != nil {
		t.Errorf("ValidatePlex: %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[anilist]") {
		t.Error("sample missing anilist section")
	}
}

func TestMissingConfigUsesDefaults(t *testing.T) {
	t.Setenv("ANILIST_TOKEN", "secret")
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Errorf("config should not exist at %q", resolved)
	}
	if cfg.AniList.PerPage != defaultAniListPerPage {
		t.Errorf("per page = %d", cfg.AniList.PerPage)
	}
}
