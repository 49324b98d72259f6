package config

const (
	defaultPlexLibrary = "Anime"

	defaultAniListBaseURL = "https://graphql.anilist.co"
	defaultAniListPerPage = 10
	defaultAniListRPM     = 30

	defaultCachePath          = "~/.cache/nextair/cache.json"
	defaultResolutionTTLHours = 72
	defaultAudioTTLHours      = 168
	defaultDefaultTTLHours    = 72
	defaultCheckpointInterval = 10

	defaultOverridesPath = "~/.config/nextair/overrides.json"

	defaultOverlayFile   = "overlays/airing_weekday.yml"
	defaultAiringDayFile = "overlays/airing_day.yml"
	defaultAudioFile     = "overlays/dual_audio.yml"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"

	defaultRunLogPath = "~/.local/share/nextair/runs.db"
)

// defaultFormats restricts searches to the formats that air on a weekly
// schedule.
func defaultFormats() []string {
	return []string{"TV", "TV_SHORT", "ONA"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Plex: Plex{
			Library: defaultPlexLibrary,
		},
		AniList: AniList{
			BaseURL:           defaultAniListBaseURL,
			PerPage:           defaultAniListPerPage,
			RequestsPerMinute: defaultAniListRPM,
			Formats:           defaultFormats(),
		},
		Cache: Cache{
			Path:               defaultCachePath,
			ResolutionTTLHours: defaultResolutionTTLHours,
			AudioTTLHours:      defaultAudioTTLHours,
			DefaultTTLHours:    defaultDefaultTTLHours,
			CheckpointInterval: defaultCheckpointInterval,
		},
		Overrides: Overrides{
			Path: defaultOverridesPath,
		},
		Output: Output{
			OverlayFile:   defaultOverlayFile,
			AiringDayFile: defaultAiringDayFile,
			AudioFile:     defaultAudioFile,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		RunLog: RunLog{
			Enabled: false,
			Path:    defaultRunLogPath,
		},
	}
}
