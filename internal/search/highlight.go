package search

import (
	"sort"
	"strings"
	"unicode"
)

const (
	highlightContext = 60
	maxHighlights    = 3
)

type window struct{ start, end int } // rune offsets, end exclusive

// Highlights returns up to three snippets of content around matches of
// tokens. Each match contributes a window of highlightContext runes on
// either side; overlapping windows are merged and every snippet is
// trimmed inward to whitespace.
func Highlights(content string, tokens []string) []string {
	if content == "" || len(tokens) == 0 {
		return nil
	}
	runes := []rune(content)
	lower := []rune(lowerRunes(content))

	var windows []window
	for _, tok := range tokens {
		t := []rune(tok)
		for _, pos := range matchPositions(lower, t) {
			windows = append(windows, window{
				start: max(0, pos-highlightContext),
				end:   min(len(runes), pos+len(t)+highlightContext),
			})
		}
	}
	if len(windows) == 0 {
		return nil
	}

	sort.Slice(windows, func(i, j int) bool { return windows[i].start < windows[j].start })
	merged := windows[:1]
	for _, w := range windows[1:] {
		last := &merged[len(merged)-1]
		if w.start <= last.end {
			last.end = max(last.end, w.end)
			continue
		}
		merged = append(merged, w)
	}

	var out []string
	for _, w := range merged {
		if s := trimToWords(runes, w); s != "" {
			out = append(out, s)
		}
		if len(out) == maxHighlights {
			break
		}
	}
	return out
}

// lowerRunes lowercases rune by rune so offsets line up with the original.
func lowerRunes(s string) string {
	return strings.Map(unicode.ToLower, s)
}

func matchPositions(haystack, needle []rune) []int {
	var positions []int
	n := len(needle)
	for i := 0; i+n <= len(haystack); i++ {
		if runesEqual(haystack[i:i+n], needle) {
			positions = append(positions, i)
			i += n - 1
		}
	}
	return positions
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// trimToWords cuts partial words off both ends of w, unless that would
// leave nothing.
func trimToWords(runes []rune, w window) string {
	start, end := w.start, w.end
	if start > 0 && !unicode.IsSpace(runes[start-1]) {
		for i := start; i < end; i++ {
			if unicode.IsSpace(runes[i]) {
				start = i + 1
				break
			}
		}
	}
	if end < len(runes) && !unicode.IsSpace(runes[end]) {
		for i := end - 1; i >= start; i-- {
			if unicode.IsSpace(runes[i]) {
				end = i
				break
			}
		}
	}
	if start >= end {
		start, end = w.start, w.end
	}
	return strings.TrimSpace(string(runes[start:end]))
}
