package language

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"en", "en"},
		{"eng", "en"},
		{"English", "en"},
		{"ja", "ja"},
		{"jpn", "ja"},
		{"Japanese", "ja"},
		{"日本語", "ja"},
		{"fre", "fr"},
		{"en-US", "en"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsEnglishAndJapanese(t *testing.T) {
	if !IsEnglish("eng") {
		t.Error("eng should be English")
	}
	if !IsJapanese("jpn") {
		t.Error("jpn should be Japanese")
	}
	if IsJapanese("eng") {
		t.Error("eng is not Japanese")
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("jpn"); got != "Japanese" {
		t.Errorf("DisplayName(jpn) = %q, want Japanese", got)
	}
	if got := DisplayName(""); got != "Unknown" {
		t.Errorf("DisplayName(empty) = %q, want Unknown", got)
	}
}
