package language

import (
	"strings"

	"golang.org/x/text/language"
)

type entry struct {
	code2   string // ISO 639-1
	code3   string // ISO 639-2 primary
	alt3    string // ISO 639-2 alternate
	display string
	words   []string
}

// Languages seen as audio tracks in anime libraries. Plex reports a mix of
// 2-letter codes, 3-letter codes, full English names, and native names.
var languages = []entry{
	{"en", "eng", "", "English", []string{"english"}},
	{"ja", "jpn", "", "Japanese", []string{"japanese", "日本語"}},
	{"zh", "zho", "chi", "Chinese", []string{"chinese", "mandarin", "cantonese"}},
	{"ko", "kor", "", "Korean", []string{"korean"}},
	{"es", "spa", "", "Spanish", []string{"spanish"}},
	{"fr", "fra", "fre", "French", []string{"french"}},
	{"de", "deu", "ger", "German", []string{"german"}},
	{"pt", "por", "", "Portuguese", []string{"portuguese"}},
	{"it", "ita", "", "Italian", []string{"italian"}},
}

var (
	byCode map[string]*entry
	byWord map[string]*entry
)

func init() {
	byCode = make(map[string]*entry, len(languages)*3)
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode[e.code2] = e
		byCode[e.code3] = e
		if e.alt3 != "" {
			byCode[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

// Normalize maps any recognized tag to its ISO 639-1 code. Unrecognized tags
// are run through BCP 47 parsing as a fallback; failing that, the empty
// string is returned.
func Normalize(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return ""
	}
	if e, ok := byCode[tag]; ok {
		return e.code2
	}
	if e, ok := byWord[tag]; ok {
		return e.code2
	}
	if parsed, err := language.Parse(tag); err == nil {
		if base, confidence := parsed.Base(); confidence != language.No {
			return base.String()
		}
	}
	return ""
}

// IsEnglish reports whether the tag denotes an English audio track.
func IsEnglish(tag string) bool {
	return Normalize(tag) == "en"
}

// IsJapanese reports whether the tag denotes a Japanese audio track.
func IsJapanese(tag string) bool {
	return Normalize(tag) == "ja"
}

// DisplayName returns a human-readable name for a recognized tag, or the
// uppercased input when unknown.
func DisplayName(tag string) string {
	code := Normalize(tag)
	for i := range languages {
		if languages[i].code2 == code {
			return languages[i].display
		}
	}
	if strings.TrimSpace(tag) == "" {
		return "Unknown"
	}
	return strings.ToUpper(strings.TrimSpace(tag))
}
