package chunker_test

import (
	"strings"
	"testing"

	"github.com/seoforge/seoforge/internal/chunker"
)

// --- Truncate tests ---

func TestTruncate_ShortText(t *testing.T) {
	text := "Hello, world!"
	if got := chunker.Truncate(text, 100); got != text {
		t.Errorf("expected %q, got %q", text, got)
	}
}

func TestTruncate_Unlimited(t *testing.T) {
	text := strings.Repeat("word ", 500)
	if got := chunker.Truncate(text, 0); got != text {
		t.Error("maxChars=0 should leave text unchanged")
	}
}

func TestTruncate_ParagraphBoundary(t *testing.T) {
	para1 := "First paragraph text here."
	para2 := "Second paragraph text here."
	text := para1 + "\n\n" + para2

	got := chunker.Truncate(text, 40)
	if got != para1 {
		t.Errorf("expected cut at paragraph boundary, got %q", got)
	}
}

func TestTruncate_SentenceBoundary(t *testing.T) {
	text := "First sentence ends here. Second sentence follows. Third sentence."
	got := chunker.Truncate(text, 40)
	if !strings.HasSuffix(got, ".") {
		t.Errorf("expected cut after sentence punctuation, got %q", got)
	}
	if strings.Contains(got, "Third") {
		t.Errorf("truncated text too long: %q", got)
	}
}

func TestTruncate_WordBoundary(t *testing.T) {
	text := "one two three four five six seven eight nine ten"
	got := chunker.Truncate(text, 20)
	if len([]rune(got)) > 20 {
		t.Errorf("result longer than budget: %q", got)
	}
	for _, w := range strings.Fields(got) {
		if !strings.Contains(text, w) {
			t.Errorf("word %q fabricated", w)
		}
	}
}

// --- Split tests ---

func TestSplit_ShortText(t *testing.T) {
	parts := chunker.Split("short", 100)
	if len(parts) != 1 || parts[0] != "short" {
		t.Errorf("parts = %v", parts)
	}
}

func TestSplit_NoWordsLost(t *testing.T) {
	text := "one two three four five six seven eight nine ten"
	parts := chunker.Split(text, 20)
	if len(parts) < 2 {
		t.Fatalf("expected >= 2 parts, got %d", len(parts))
	}
	rejoined := strings.Join(parts, " ")
	for _, word := range strings.Fields(text) {
		if !strings.Contains(rejoined, word) {
			t.Errorf("word %q lost after splitting", word)
		}
	}
}

func TestSplit_PartsWithinBudget(t *testing.T) {
	text := strings.Repeat("A short sentence here. ", 30)
	for i, part := range chunker.Split(text, 80) {
		if n := len([]rune(part)); n > 80 {
			t.Errorf("part %d has %d runes, budget 80", i, n)
		}
		if part != strings.TrimSpace(part) {
			t.Errorf("part %d not trimmed: %q", i, part)
		}
	}
}

// --- Preview tests ---

func TestPreview_ShortTextUnchanged(t *testing.T) {
	if got := chunker.Preview("a few words only", 10); got != "a few words only" {
		t.Errorf("got %q", got)
	}
}

func TestPreview_CutsAndMarksEllipsis(t *testing.T) {
	text := strings.Repeat("word ", 40)
	got := chunker.Preview(text, 5)
	if !strings.HasSuffix(got, chunker.Ellipsis) {
		t.Errorf("missing ellipsis: %q", got)
	}
	if len(strings.Fields(got)) != 5 {
		t.Errorf("got %d words, want 5", len(strings.Fields(got)))
	}
}

func TestPreview_DefaultWordCount(t *testing.T) {
	text := strings.Repeat("word ", 60)
	got := chunker.Preview(text, 0)
	if len(strings.Fields(got)) != chunker.DefaultPreviewWords {
		t.Errorf("got %d words, want %d", len(strings.Fields(got)), chunker.DefaultPreviewWords)
	}
}
