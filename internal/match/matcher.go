package match

import (
	"strings"

	"nextair/internal/anilist"
)

// Threshold is the minimum score required to accept the best candidate.
const Threshold = 0.6

// Record-level bonuses bias ties toward shows that are actively airing: a
// stale archived entry with a near-identical title is a far more common false
// positive than a genuine naming collision between two airing shows. The
// bonuses are additive and unclamped, so scores above 1.0 are expected and
// carry relative-ranking meaning; do not normalize them.
const (
	bonusReleasing  = 0.5
	bonusNextAiring = 0.4
)

// Match is an accepted catalog candidate.
type Match struct {
	Media anilist.Media
	Score float64
	// Synonym holds the winning synonym string. It stays empty whenever a
	// primary title won, even if a synonym scored equally.
	Synonym string
}

type candidate struct {
	text    string
	synonym bool
}

// Best selects the highest-scoring record for the query title, or reports
// no match when nothing reaches the acceptance threshold. Ties keep the
// candidate seen first; only strict improvements replace the running best.
func Best(query string, records []anilist.Media) (Match, bool) {
	var best Match
	found := false
	for _, record := range records {
		bonus := 0.0
		if record.Status == anilist.StatusReleasing {
			bonus += bonusReleasing
		}
		if record.NextAiring != nil {
			bonus += bonusNextAiring
		}
		for _, cand := range candidates(record) {
			score := Score(query, cand.text) + bonus
			if score > best.Score {
				best = Match{Media: record, Score: score}
				if cand.synonym {
					best.Synonym = cand.text
				}
				found = true
			}
		}
	}
	if !found || best.Score < Threshold {
		return Match{}, false
	}
	return best, true
}

// Score rates a single candidate string against the query: an exact trimmed
// case-insensitive match scores 1.0, anything else falls back to sequence
// similarity over the lowercased strings.
func Score(query, candidate string) float64 {
	if strings.EqualFold(strings.TrimSpace(candidate), strings.TrimSpace(query)) {
		return 1.0
	}
	return Ratio(strings.ToLower(query), strings.ToLower(candidate))
}

func candidates(record anilist.Media) []candidate {
	out := make([]candidate, 0, 3+len(record.Synonyms))
	for _, title := range []string{record.Title.Romaji, record.Title.English, record.Title.Native} {
		if title != "" {
			out = append(out, candidate{text: title})
		}
	}
	for _, synonym := range record.Synonyms {
		if synonym != "" {
			out = append(out, candidate{text: synonym, synonym: true})
		}
	}
	return out
}
