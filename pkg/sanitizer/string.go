package sanitizer

import (
	"strings"
	"unicode"
)

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// NormalizeName cleans participant and tour names.
func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeLabel lowercases a short descriptive label such as a
// relationship tag or a room name.
func NormalizeLabel(label string) string {
	return strings.ToLower(TrimAndNormalize(label))
}
