package aircache

// WeekdayNone marks a title with no resolved upcoming episode.
const WeekdayNone = "none"

// AirTimeLayout formats the air timestamps stored in cache entries.
const AirTimeLayout = "2006-01-02 15:04:05"

// Resolution is the outcome of resolving one queried title against the
// catalog. When Weekday is not "none", AirLocal, EpisodeNumber and AniListID
// are all present.
type Resolution struct {
	Weekday        string  `json:"weekday"`
	AirUTC         string  `json:"air_datetime_utc,omitempty"`
	AirLocal       string  `json:"air_datetime_local,omitempty"`
	EpisodeNumber  int     `json:"episode_number,omitempty"`
	TimeUntilHours float64 `json:"time_until_hours,omitempty"`
	AniListID      int     `json:"anilist_id,omitempty"`
	MatchedTitle   string  `json:"matched_title,omitempty"`
	MatchScore     float64 `json:"match_score,omitempty"`
	AverageScore   int     `json:"average_score,omitempty"`
	MatchedSynonym string  `json:"matched_synonym,omitempty"`
}

// Unresolved returns the sentinel result cached for titles that could not be
// resolved, so known-negative titles are not re-queried every run.
func Unresolved() Resolution {
	return Resolution{Weekday: WeekdayNone}
}

// HasAiring reports whether the resolution carries an upcoming episode.
func (r Resolution) HasAiring() bool {
	return r.Weekday != WeekdayNone && r.Weekday != "" && r.AirLocal != ""
}
