package postprocess

import (
	"strings"
	"testing"
)

func TestClean_RemovesThinkingBlocks(t *testing.T) {
	in := "<thinking>planning the outline here</thinking>\n# Real Title\n\nBody text."
	got := Clean(in)
	if strings.Contains(got, "planning") {
		t.Errorf("thinking block survived: %q", got)
	}
	if !strings.HasPrefix(got, "# Real Title") {
		t.Errorf("content lost: %q", got)
	}
}

func TestClean_RemovesTruncatedThinkingBlock(t *testing.T) {
	in := "# Title\n\nBody.\n<think>half a thought that never closes"
	got := Clean(in)
	if strings.Contains(got, "half a thought") {
		t.Errorf("truncated block survived: %q", got)
	}
}

func TestClean_RemovesInstructionEchoes(t *testing.T) {
	cases := []string{
		"Here is the revised blog post: # Title\n\nBody.",
		"Here's your content: # Title\n\nBody.",
		"Sure, here is the article: # Title\n\nBody.",
		"The improved draft: # Title\n\nBody.",
	}
	for _, in := range cases {
		got := Clean(in)
		if !strings.HasPrefix(got, "# Title") {
			t.Errorf("Clean(%q) = %q, want to start at the heading", in, got)
		}
	}
}

func TestClean_KeepsLegitimateContentWithColons(t *testing.T) {
	in := "# Checklist: What To Pack\n\nRope: 10m.\nThe essentials: water and a map."
	got := Clean(in)
	if got != in {
		t.Errorf("legitimate colons mangled:\n%q\n%q", in, got)
	}
}

func TestClean_RemovesScoreChatter(t *testing.T) {
	in := "# Title\n\nBody copy that should stay.\n\nSEO Score: 82/100\nOverall: 85/100\n"
	got := Clean(in)
	if strings.Contains(got, "82/100") || strings.Contains(got, "85/100") {
		t.Errorf("score chatter survived: %q", got)
	}
	if !strings.Contains(got, "Body copy that should stay.") {
		t.Errorf("body lost: %q", got)
	}
}

func TestClean_RemovesQuoteWrapping(t *testing.T) {
	in := `"The entire draft wrapped in quotes."`
	got := Clean(in)
	if got != "The entire draft wrapped in quotes." {
		t.Errorf("got %q", got)
	}
}

func TestClean_LeavesInternalQuotesAlone(t *testing.T) {
	in := `She said "hello" and left.`
	if got := Clean(in); got != in {
		t.Errorf("got %q", got)
	}
}

func TestClean_CollapsesBlankRuns(t *testing.T) {
	in := "# Title\n\n\n\n\nBody."
	got := Clean(in)
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("blank run survived: %q", got)
	}
}

func TestClean_EmptyInput(t *testing.T) {
	if got := Clean("   \n\t"); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
