package parse

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// TitleMaxRunes bounds titles derived from the first user message.
const TitleMaxRunes = 80

var tagRe = regexp.MustCompile(`<[^>]+>`)

// TruncateText cuts s to max runes and appends TruncatedMarker.
func TruncateText(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + TruncatedMarker
}

// Title turns a message into a single-line title of at most TitleMaxRunes.
func Title(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= TitleMaxRunes {
		return s
	}
	return strings.TrimSpace(string(runes[:TitleMaxRunes-3])) + "..."
}
