// Package prompt builds the provider prompts for initial generation and
// score-guided refinement. Refinement prompts name the weakest rubric
// factors of the prior draft with concrete fixes, so each iteration is a
// directed rewrite rather than a blind resample.
package prompt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/seoforge/seoforge/internal/catalog"
	"github.com/seoforge/seoforge/internal/chunker"
	"github.com/seoforge/seoforge/internal/provider"
	"github.com/seoforge/seoforge/internal/scoring"
)

// Generation modes.
const (
	ModeGenerate  = "generate"
	ModeRepurpose = "repurpose"
)

// sourceBudget caps how much repurposed source material one prompt
// carries, in runes.
const sourceBudget = 6000

// weakestFactors is how many low sub-scores a refinement prompt calls out.
const weakestFactors = 3

// Inputs carries everything the builders need from a generation request.
type Inputs struct {
	Mode         string
	ContentType  string
	Family       catalog.Family
	SourceText   string
	Keyword      string
	TargetWords  int
	Audience     string
	Tone         string
	Framework    string
	Locale       string
	Instructions string
}

// InputKind classifies what the caller typed into the source field.
type InputKind string

const (
	KindURL     InputKind = "url"
	KindPrompt  InputKind = "prompt"
	KindKeyword InputKind = "keyword"
)

var urlRe = regexp.MustCompile(`^https?://`)

// DetectInputKind distinguishes a URL, a written brief, and a bare
// keyword. Anything over 50 characters and 7 words reads as a brief.
func DetectInputKind(source string) InputKind {
	source = strings.TrimSpace(source)
	switch {
	case urlRe.MatchString(source):
		return KindURL
	case len([]rune(source)) > 50 && len(strings.Fields(source)) > 7:
		return KindPrompt
	default:
		return KindKeyword
	}
}

const systemRole = "You are an expert content writer and SEO specialist. Output only the finished content in Markdown. No commentary, no explanations, no self-assessment."

// Initial builds the first-iteration prompt.
func Initial(in Inputs) provider.Prompt {
	var sb strings.Builder

	switch in.Mode {
	case ModeRepurpose:
		sb.WriteString(fmt.Sprintf("Repurpose the source material below into a %s.\n\n", describeType(in)))
		sb.WriteString("SOURCE MATERIAL:\n")
		sb.WriteString(chunker.Truncate(in.SourceText, sourceBudget))
		sb.WriteString("\n\n")
	default:
		switch DetectInputKind(in.SourceText) {
		case KindURL:
			sb.WriteString(fmt.Sprintf("Write a %s about the page at %s.\n\n", describeType(in), strings.TrimSpace(in.SourceText)))
		case KindPrompt:
			sb.WriteString(fmt.Sprintf("Write a %s following this brief:\n%s\n\n", describeType(in), strings.TrimSpace(in.SourceText)))
		default:
			sb.WriteString(fmt.Sprintf("Write a %s about: %s\n\n", describeType(in), strings.TrimSpace(in.SourceText)))
		}
	}

	writeRequirements(&sb, in)
	return provider.Prompt{System: systemRole, User: sb.String()}
}

// Refinement builds the prompt for iterations after the first. It names
// the prior draft's weakest factors with targeted fixes and includes the
// draft to rewrite.
func Refinement(in Inputs, priorDraft string, scores scoring.Vector, iteration int) provider.Prompt {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Your previous draft scored %d/100 on an SEO quality review. Rewrite it, attempt %d.\n\n", scores.Overall(), iteration))
	sb.WriteString("FOCUS ON THESE WEAK SPOTS:\n")
	for _, f := range scores.Weakest(weakestFactors) {
		sb.WriteString(fmt.Sprintf("- %s (%d/100): %s\n", f.Name, f.Score, factorFix(f.Name, in)))
	}
	sb.WriteString("\nKeep everything that already works. Preserve the topic, facts, and overall intent.\n\n")

	writeRequirements(&sb, in)

	sb.WriteString("\nPREVIOUS DRAFT:\n")
	sb.WriteString(chunker.Truncate(priorDraft, sourceBudget))
	sb.WriteString("\n\nOutput the complete rewritten content.")

	return provider.Prompt{System: systemRole, User: sb.String()}
}

func describeType(in Inputs) string {
	if in.ContentType != "" {
		return strings.ReplaceAll(in.ContentType, "-", " ")
	}
	return string(in.Family)
}

func writeRequirements(sb *strings.Builder, in Inputs) {
	sb.WriteString("REQUIREMENTS:\n")
	if in.TargetWords > 0 {
		sb.WriteString(fmt.Sprintf("- Around %d words (within 15%%).\n", in.TargetWords))
	}
	if in.Keyword != "" {
		sb.WriteString(fmt.Sprintf("- Primary keyword: %q. Use it naturally, roughly 1-2%% of all words, and place it early in the title.\n", in.Keyword))
	}
	if in.Tone != "" {
		sb.WriteString(fmt.Sprintf("- Tone: %s.\n", in.Tone))
	}
	if in.Audience != "" {
		sb.WriteString(fmt.Sprintf("- Audience: %s.\n", in.Audience))
	}
	if in.Framework != "" && !strings.EqualFold(in.Framework, "none") {
		sb.WriteString(fmt.Sprintf("- Structure the copy with the %s framework.\n", strings.ToUpper(in.Framework)))
	}
	if in.Locale != "" {
		sb.WriteString(fmt.Sprintf("- Write entirely in the language of locale %s.\n", in.Locale))
	}
	writeFamilyGuidance(sb, in.Family)
	if in.Instructions != "" {
		sb.WriteString(fmt.Sprintf("- Additional instructions: %s\n", in.Instructions))
	}
}

func writeFamilyGuidance(sb *strings.Builder, family catalog.Family) {
	switch family {
	case catalog.FamilyBlog:
		sb.WriteString("- Start with a single H1 title of 50-60 characters, use at least two H2 section headings, and include a line starting with \"Meta Description:\" of 120-160 characters.\n")
	case catalog.FamilyEcommerce:
		sb.WriteString("- Lead with the product title, list the key benefits as bullet points, end with a clear call to action, and include a \"Meta Description:\" line of 120-160 characters.\n")
	case catalog.FamilyLanding:
		sb.WriteString("- Lead with a single H1 headline, support it with H2 subheadings, include at least one strong call to action, and add a \"Meta Description:\" line of 120-160 characters.\n")
	case catalog.FamilySocial:
		sb.WriteString("- Open with a hook that stops the scroll, keep it short, and finish with 3-5 relevant hashtags.\n")
	case catalog.FamilyEmailAd:
		sb.WriteString("- Start with a \"Subject:\" line, keep paragraphs short, and close with one clear call to action.\n")
	case catalog.FamilyYouTube:
		sb.WriteString("- Start with the video title as an H1, write an engaging description, and include chapter timestamps (0:00 style) on their own lines.\n")
	}
}

// factorFix maps a rubric factor to the concrete instruction that raises it.
func factorFix(name string, in Inputs) string {
	switch name {
	case "title":
		return "rewrite the title to 50-60 characters with the primary keyword near the front"
	case "content":
		return fmt.Sprintf("fix the structure (one H1, at least two H2 sections where appropriate) and land within 15%% of %d words", in.TargetWords)
	case "keyword":
		if in.Keyword != "" {
			return fmt.Sprintf("work %q in naturally until it is roughly 1-2%% of all words, no stuffing", in.Keyword)
		}
		return "keep the topic vocabulary consistent throughout"
	case "meta":
		return "add a \"Meta Description:\" line of 120-160 characters summarizing the content"
	case "readability":
		return "shorten sentences and prefer plain words so a general audience reads it easily"
	default:
		return "improve this aspect"
	}
}
