package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// stationSuffixes are stripped from the end of an input name so that
// "新宿駅", "新宿 駅" and "新宿" all share one cache entry.
var stationSuffixes = []string{"駅", "えき", "eki", "station", "sta."}

// NormalizeStationName canonicalizes a station name for caching and
// comparison: NFKC (folds half-width katakana and full-width ASCII), strips
// a trailing 駅/station suffix, lowercases ASCII, and removes all whitespace.
func NormalizeStationName(name string) (string, error) {
	s := strings.TrimSpace(name)
	if s == "" {
		return "", Validationf("station name cannot be empty")
	}

	s = norm.NFKC.String(s)

	lower := strings.ToLower(s)
	for _, suf := range stationSuffixes {
		if strings.HasSuffix(lower, suf) {
			s = strings.TrimRight(s[:len(s)-len(suf)], " \t")
			break
		}
	}

	s = norm.NFC.String(s)

	var b strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		if r < 128 {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}

	out := b.String()
	if out == "" {
		return "", Validationf("station name %q is empty after normalization", name)
	}
	return out, nil
}
