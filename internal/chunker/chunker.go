// Package chunker fits source material into prompt budgets without
// cutting through sentences or paragraphs. Repurposed articles and
// scraped pages routinely exceed what a prompt should carry; Truncate
// takes the largest clean-boundary prefix, and Preview produces the
// short word-bounded excerpts used in history listings.
package chunker

import (
	"strings"
	"unicode"
)

const (
	// DefaultPreviewWords is the default excerpt length for Preview.
	DefaultPreviewWords = 25

	// Ellipsis marks a truncation point in user-visible excerpts.
	Ellipsis = "…"
)

// Truncate returns the longest prefix of text that fits within maxChars
// unicode code points, cut (in order of preference) at:
//  1. A paragraph boundary (\n\n or \r\n\r\n)
//  2. Sentence-ending punctuation (. ! ?)
//  3. Whitespace (word boundary)
//  4. A hard cut at maxChars if no suitable boundary is found
//
// If text already fits, or maxChars ≤ 0 (unlimited), text is returned
// unchanged.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 || len([]rune(text)) <= maxChars {
		return text
	}
	return strings.TrimSpace(text[:findSplit(text, maxChars)])
}

// Split cuts text into pieces each no longer than maxChars unicode code
// points, using the same boundary preferences as Truncate. A text that
// fits yields a single-element slice.
func Split(text string, maxChars int) []string {
	if maxChars <= 0 || len([]rune(text)) <= maxChars {
		return []string{text}
	}

	var parts []string
	remaining := text

	for len([]rune(remaining)) > maxChars {
		split := findSplit(remaining, maxChars)
		if part := strings.TrimSpace(remaining[:split]); part != "" {
			parts = append(parts, part)
		}
		remaining = strings.TrimSpace(remaining[split:])
	}
	if strings.TrimSpace(remaining) != "" {
		parts = append(parts, strings.TrimSpace(remaining))
	}
	return parts
}

// findSplit returns the byte index within text at which to split, aiming
// for at most maxChars runes. It searches backwards from maxChars for the
// best boundary.
func findSplit(text string, maxChars int) int {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return len(text)
	}

	candidate := string(runes[:maxChars])

	// 1. Paragraph boundary.
	if idx := strings.LastIndex(candidate, "\n\n"); idx > 0 {
		return idx + 2
	}
	if idx := strings.LastIndex(candidate, "\r\n\r\n"); idx > 0 {
		return idx + 4
	}

	// 2. Sentence-ending punctuation followed by a space.
	cr := []rune(candidate)
	for i := len(cr) - 1; i > 0; i-- {
		r := cr[i]
		if (r == '.' || r == '!' || r == '?') && i+1 < len(cr) && unicode.IsSpace(cr[i+1]) {
			return len(string(cr[:i+1]))
		}
	}

	// 3. Whitespace word boundary.
	for i := len(cr) - 1; i > 0; i-- {
		if unicode.IsSpace(cr[i]) {
			return len(string(cr[:i]))
		}
	}

	// 4. Hard cut.
	return len(candidate)
}

// Preview returns the first wordCount words of text joined by single
// spaces, with an ellipsis appended when anything was cut. Used for
// one-line history listings. If wordCount ≤ 0, DefaultPreviewWords is
// used.
func Preview(text string, wordCount int) string {
	if wordCount <= 0 {
		wordCount = DefaultPreviewWords
	}
	words := strings.Fields(text)
	if len(words) <= wordCount {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:wordCount], " ") + Ellipsis
}
