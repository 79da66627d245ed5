// Package postprocess removes common LLM artifacts from generated drafts.
//
// It is applied to the raw text returned by any provider before the draft
// is scored, so artifacts never leak into the rubric or into the final
// content handed to the caller.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean removes LLM artifacts from text in four phases and returns the
// trimmed result:
//  1. Thinking / reasoning block removal
//  2. Instruction echo removal (prompt leakage)
//  3. Self-assessment score chatter removal
//  4. Quote wrapping removal
func Clean(text string) string {
	text = removeThinkingBlocks(text)
	text = removeInstructionEchoes(text)
	text = removeScoreChatter(text)
	text = removeQuoteWrapping(text)
	text = collapseBlankRuns(text)
	return strings.TrimSpace(text)
}

// --- Phase 1: thinking blocks ---

// thinkingBlockRe matches complete <thinking>…</thinking> style blocks.
// Each tag variant is listed explicitly because Go's RE2 engine does not
// support backreferences.
// Flags: i = case-insensitive, s = dot matches newline.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// truncatedThinkingRe matches an opened thinking tag whose closing tag is
// missing (the model was cut off mid-thought).
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// --- Phase 2: instruction echoes ---

// echoPatterns match introductory phrases that LLMs sometimes prepend even
// when instructed not to.  Each pattern is anchored to the start of the string
// and requires a colon to reduce false positives on legitimate content.
var echoPatterns = []*regexp.Regexp{
	// "Here is / Here's [the|your] [revised|improved|requested] content:"
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the| your)? (?:revised |improved |refined |requested )?(?:content|draft|article|blog post|copy|post|text)\s*:`),
	// "[The] [revised|improved] [content|draft|article]:"
	regexp.MustCompile(`(?i)^(?:the )?(?:revised |improved |refined )?(?:content|draft|article)\s*:`),
	// "Certainly / Sure / Of course[,] here is [the|your] content:"
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.]? here(?:'s| is)(?: the| your)? (?:revised |improved |refined )?(?:content|draft|article|blog post|text)\s*:`),
}

func removeInstructionEchoes(text string) string {
	for _, re := range echoPatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// --- Phase 3: score chatter ---

// Models asked for quality-aware rewrites sometimes append their own score
// commentary.  Those lines belong to the rubric, not the draft.
var scoreChatterPatterns = []*regexp.Regexp{
	// "Overall: 85/100", "Overall score: 85"
	regexp.MustCompile(`(?im)^[\s>*_]*overall(?:\s*score)?\s*[:\-]\s*\d{1,3}(?:\s*/\s*100)?[\s*_]*$`),
	// "SEO score: 82/100" and per-factor variants
	regexp.MustCompile(`(?im)^[\s>*_]*(?:seo|title|content|keyword|meta|readability)\s*scores?\s*[:\-].*$`),
	// Trailing "SEO ANALYSIS" / "SCORE BREAKDOWN" section headings
	regexp.MustCompile(`(?im)^#{0,6}\s*(?:seo analysis|seo scores|score breakdown)\s*$`),
}

func removeScoreChatter(text string) string {
	for _, re := range scoreChatterPatterns {
		text = re.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}

// --- Phase 4: quote wrapping ---

// removeQuoteWrapping strips a matching pair of outer quotes when the entire
// text is wrapped in them (a common LLM artifact).  Supported pairs:
//
//	"…"  '…'  «…»  "…"  '…'
func removeQuoteWrapping(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	first, last := runes[0], runes[n-1]
	if (first == '"' && last == '"') ||
		(first == '\'' && last == '\'') ||
		(first == '«' && last == '»') ||
		(first == '“' && last == '”') || // " "
		(first == '‘' && last == '’') { //  ' '
		return strings.TrimSpace(string(runes[1 : n-1]))
	}
	return text
}

var blankRunRe = regexp.MustCompile(`\n{3,}`)

// collapseBlankRuns squeezes runs of blank lines left behind by the
// removal phases down to a single paragraph break.
func collapseBlankRuns(text string) string {
	return blankRunRe.ReplaceAllString(text, "\n\n")
}
