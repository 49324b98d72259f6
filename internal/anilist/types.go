package anilist

// Media status values used by the matcher and resolver.
const (
	StatusReleasing = "RELEASING"
	StatusFinished  = "FINISHED"
)

// MediaTitle holds the up-to-three primary titles of a catalog record.
type MediaTitle struct {
	Romaji  string `json:"romaji"`
	English string `json:"english"`
	Native  string `json:"native"`
}

// Primary returns the first non-empty primary title in romaji, english,
// native order.
func (t MediaTitle) Primary() string {
	if t.Romaji != "" {
		return t.Romaji
	}
	if t.English != "" {
		return t.English
	}
	return t.Native
}

// AiringSchedule describes the next episode known to air.
type AiringSchedule struct {
	AiringAt int64 `json:"airingAt"`
	Episode  int   `json:"episode"`
}

// Media is one catalog record returned by search or by-ID lookup.
type Media struct {
	ID           int             `json:"id"`
	Title        MediaTitle      `json:"title"`
	Synonyms     []string        `json:"synonyms"`
	Format       string          `json:"format"`
	Status       string          `json:"status"`
	AverageScore int             `json:"averageScore"`
	NextAiring   *AiringSchedule `json:"nextAiringEpisode"`
}
