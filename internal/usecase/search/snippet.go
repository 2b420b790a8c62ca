package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Snippet cuts about length bytes of text centered on [from, to), trimmed to word
// boundaries, with whitespace collapsed. It returns the snippet and its byte span.
func Snippet(text string, from, to, length int) (string, int, int) {
	if text == "" || length <= 0 {
		return "", 0, 0
	}
	from = min(max(from, 0), len(text))
	to = min(max(to, from), len(text))

	center := (from + to) / 2
	start := max(center-length/2, 0)
	end := min(start+length, len(text))
	start = max(end-length, 0)

	if start > 0 {
		start = nextWordStart(text, start)
	}
	if end < len(text) {
		end = prevWordEnd(text, end)
	}
	if end <= start {
		// A single word longer than the window.
		start = max(center-length/2, 0)
		end = min(start+length, len(text))
		for start > 0 && !utf8.RuneStart(text[start]) {
			start--
		}
		for end < len(text) && !utf8.RuneStart(text[end]) {
			end++
		}
	}
	return strings.Join(strings.Fields(text[start:end]), " "), start, end
}

// nextWordStart moves i forward to the first byte of the next word unless it already
// sits at a word start.
func nextWordStart(s string, i int) int {
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	if i >= len(s) {
		return len(s)
	}
	prev, _ := utf8.DecodeLastRuneInString(s[:i])
	if unicode.IsSpace(prev) {
		return i
	}
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		if unicode.IsSpace(r) {
			break
		}
	}
	return i
}

// prevWordEnd moves i back to the end of the previous complete word.
func prevWordEnd(s string, i int) int {
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	next, _ := utf8.DecodeRuneInString(s[i:])
	if unicode.IsSpace(next) {
		return i
	}
	for i > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:i])
		if unicode.IsSpace(r) {
			return i - size
		}
		i -= size
	}
	return 0
}
