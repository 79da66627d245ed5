// Package markdown performs structural analysis of generated drafts. It
// parses markdown into the heading hierarchy, list items, and paragraph
// blocks that scoring and extraction operate on, and locates the marker
// lines (meta description, CTA, hashtags) the extraction schemas need.
package markdown

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"
)

// Heading is one heading in document order.
type Heading struct {
	Level int
	Text  string
}

// Doc is the structural breakdown of one draft. It is immutable once built.
type Doc struct {
	Headings   []Heading
	Bullets    []string
	Paragraphs []string
	Plain      string
}

var parser = goldmark.New()

// Analyze parses text as markdown and returns its structural breakdown.
// Empty or whitespace-only input yields an empty Doc.
func Analyze(text string) *Doc {
	doc := &Doc{}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return doc
	}

	src := []byte(trimmed)
	root := parser.Parser().Parse(gtext.NewReader(src))

	var plain strings.Builder
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Heading:
			txt := nodeText(v, src)
			doc.Headings = append(doc.Headings, Heading{Level: v.Level, Text: txt})
			plain.WriteString(txt)
			plain.WriteString("\n\n")
			return ast.WalkSkipChildren, nil
		case *ast.ListItem:
			if txt := nodeText(v, src); txt != "" {
				doc.Bullets = append(doc.Bullets, txt)
				plain.WriteString(txt)
				plain.WriteString("\n")
			}
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			// Paragraphs nested in list items are handled by the item.
			if _, inList := v.Parent().(*ast.ListItem); inList {
				return ast.WalkContinue, nil
			}
			if txt := nodeText(v, src); txt != "" {
				doc.Paragraphs = append(doc.Paragraphs, txt)
				plain.WriteString(txt)
				plain.WriteString("\n\n")
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	doc.Plain = strings.TrimSpace(plain.String())
	return doc
}

// Title returns the first heading, or the first non-empty line when the
// draft has no markdown headings at all. Empty drafts yield "".
func (d *Doc) Title() string {
	if len(d.Headings) > 0 {
		return d.Headings[0].Text
	}
	if len(d.Paragraphs) > 0 {
		return firstLine(d.Paragraphs[0])
	}
	if len(d.Bullets) > 0 {
		return d.Bullets[0]
	}
	return ""
}

// HasHeading reports whether the draft has any markdown heading at all.
func (d *Doc) HasHeading() bool {
	return len(d.Headings) > 0
}

// HeadingsAt returns the texts of all headings of the given level.
func (d *Doc) HeadingsAt(level int) []string {
	var out []string
	for _, h := range d.Headings {
		if h.Level == level {
			out = append(out, h.Text)
		}
	}
	return out
}

// WordCount counts whitespace-separated words in the plain text.
func (d *Doc) WordCount() int {
	return len(strings.Fields(d.Plain))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}

func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// --- Marker-line helpers ---

var metaRe = regexp.MustCompile(`(?im)^[\s>*_]*meta\s*description\s*[:\-]\s*\**\s*(.+?)[\s*_]*$`)

// MetaDescription returns the text of a "Meta Description:" marker line,
// or "" when the draft carries none.
func MetaDescription(text string) string {
	m := metaRe.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

var hashtagRe = regexp.MustCompile(`#[\p{L}\p{N}_]+`)

// Hashtags returns all #tags in document order, deduplicated
// case-insensitively but preserving the first spelling seen.
func Hashtags(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tag := range hashtagRe.FindAllString(text, -1) {
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}

var ctaRe = regexp.MustCompile(`(?i)\b(shop now|buy now|order now|sign up|subscribe|download|learn more|get started|join|try it|try for free|book now|register|claim|contact us|visit us|get yours|start today|act now|don'?t miss)\b`)

// CTALines returns lines that read as calls to action: short lines
// containing an imperative marketing phrase. Lines longer than 120 runes
// are body copy, not CTAs.
func CTALines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "*_>-"))
		if line == "" || len([]rune(line)) > 120 {
			continue
		}
		if ctaRe.MatchString(line) {
			out = append(out, line)
		}
	}
	return out
}

// HasCTA reports whether the text contains at least one call to action.
func HasCTA(text string) bool {
	return len(CTALines(text)) > 0
}

// Emojis returns the distinct emoji runes in the text, in order.
func Emojis(text string) []string {
	seen := make(map[rune]struct{})
	var out []string
	for _, r := range text {
		if !isEmoji(r) {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, string(r))
	}
	return out
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF: // pictographs, transport, supplemental
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case r == 0x2B50 || r == 0x2B55:
		return true
	default:
		return unicode.Is(unicode.So, r) && r > 0x2100
	}
}

var timestampRe = regexp.MustCompile(`^\(?\d{1,2}:\d{2}(:\d{2})?\)?\s*[-–—]?\s*\S`)

// Timestamps returns lines carrying video chapter markers (mm:ss or
// h:mm:ss prefixes), as used in YouTube descriptions.
func Timestamps(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*• "))
		if timestampRe.MatchString(line) {
			out = append(out, line)
		}
	}
	return out
}
