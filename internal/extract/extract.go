// Package extract pulls structured elements out of a finished draft.
// Each content family has its own schema; dispatch is by family, and a
// field that cannot be located is filled with a sentinel value so the
// output shape stays stable for consumers.
package extract

import (
	"regexp"
	"strings"

	"github.com/seoforge/seoforge/internal/catalog"
	"github.com/seoforge/seoforge/internal/markdown"
)

// Sentinel values for fields that could not be located.
const (
	NoTitle      = "No title found"
	NoH1         = "No H1 headings found"
	NoMeta       = "No meta description found"
	NoBullets    = "No bullet points found"
	NoCTA        = "No CTA found"
	NoHashtags   = "No hashtags found"
	NoTimestamps = "No timestamps found"
	NoSubject    = "No subject line found"
)

// socialCharacterLimit is the caption budget reported alongside social
// drafts. Long-form platforms cap captions at 2200 characters.
const socialCharacterLimit = 2200

// Elements is the family-tagged result of one extraction run.
type Elements interface {
	ElementFamily() catalog.Family
}

// BlogElements is the Blog schema.
type BlogElements struct {
	Title           string      `json:"title"`
	Headings        HeadingTree `json:"headings"`
	MetaDescription string      `json:"metaDescription"`
	Keywords        []string    `json:"keywords"`
}

// HeadingTree groups headings by level.
type HeadingTree struct {
	H1 []string `json:"h1"`
	H2 []string `json:"h2"`
	H3 []string `json:"h3"`
}

// EcommerceElements is the Ecommerce schema.
type EcommerceElements struct {
	ProductTitle string   `json:"productTitle"`
	BulletPoints []string `json:"bulletPoints"`
	CategoryTags []string `json:"categoryTags"`
	MetaTags     string   `json:"metaTags"`
}

// LandingElements is the Landing schema.
type LandingElements struct {
	MainHeadline string   `json:"mainHeadline"`
	Subheadings  []string `json:"subheadings"`
	CTAText      []string `json:"ctaText"`
	MetaTitle    string   `json:"metaTitle"`
}

// SocialElements is the Social schema.
type SocialElements struct {
	MainCaption    string   `json:"mainCaption"`
	Hashtags       []string `json:"hashtags"`
	Emojis         []string `json:"emojis"`
	CharacterCount int      `json:"characterCount"`
	PlatformLimit  int      `json:"platformLimit"`
	EngagementHook string   `json:"engagementHook"`
}

// EmailAdElements is the EmailAd schema.
type EmailAdElements struct {
	SubjectLine string `json:"subjectLine"`
	MainCopy    string `json:"mainCopy"`
	CTA         string `json:"cta"`
}

// YouTubeElements is the YouTube schema.
type YouTubeElements struct {
	VideoTitle  string   `json:"videoTitle"`
	Description string   `json:"description"`
	Timestamps  []string `json:"timestamps"`
}

func (BlogElements) ElementFamily() catalog.Family      { return catalog.FamilyBlog }
func (EcommerceElements) ElementFamily() catalog.Family { return catalog.FamilyEcommerce }
func (LandingElements) ElementFamily() catalog.Family   { return catalog.FamilyLanding }
func (SocialElements) ElementFamily() catalog.Family    { return catalog.FamilySocial }
func (EmailAdElements) ElementFamily() catalog.Family   { return catalog.FamilyEmailAd }
func (YouTubeElements) ElementFamily() catalog.Family   { return catalog.FamilyYouTube }

// Extract runs the schema for family over text. It is pure and runs once
// per finished draft, never per iteration.
func Extract(text string, family catalog.Family) Elements {
	doc := markdown.Analyze(text)
	switch family {
	case catalog.FamilyEcommerce:
		return extractEcommerce(text, doc)
	case catalog.FamilyLanding:
		return extractLanding(text, doc)
	case catalog.FamilySocial:
		return extractSocial(text, doc)
	case catalog.FamilyEmailAd:
		return extractEmailAd(text, doc)
	case catalog.FamilyYouTube:
		return extractYouTube(text, doc)
	default:
		return extractBlog(text, doc)
	}
}

func extractBlog(text string, doc *markdown.Doc) BlogElements {
	out := BlogElements{
		Title: orSentinel(doc.Title(), NoTitle),
		Headings: HeadingTree{
			H1: doc.HeadingsAt(1),
			H2: doc.HeadingsAt(2),
			H3: doc.HeadingsAt(3),
		},
		MetaDescription: orSentinel(markdown.MetaDescription(text), NoMeta),
		Keywords:        markerList(text, keywordsRe),
	}
	if len(out.Headings.H1) == 0 {
		out.Headings.H1 = []string{NoH1}
	}
	return out
}

func extractEcommerce(text string, doc *markdown.Doc) EcommerceElements {
	tags := markerList(text, tagsRe)
	if len(tags) == 0 {
		tags = markdown.Hashtags(text)
	}
	return EcommerceElements{
		ProductTitle: orSentinel(doc.Title(), NoTitle),
		BulletPoints: orSentinelList(doc.Bullets, NoBullets),
		CategoryTags: tags,
		MetaTags:     orSentinel(markdown.MetaDescription(text), NoMeta),
	}
}

func extractLanding(text string, doc *markdown.Doc) LandingElements {
	metaTitle := markerLine(text, metaTitleRe)
	if metaTitle == "" {
		metaTitle = doc.Title()
	}
	return LandingElements{
		MainHeadline: orSentinel(doc.Title(), NoTitle),
		Subheadings:  doc.HeadingsAt(2),
		CTAText:      orSentinelList(markdown.CTALines(text), NoCTA),
		MetaTitle:    orSentinel(metaTitle, NoTitle),
	}
}

func extractSocial(text string, doc *markdown.Doc) SocialElements {
	caption := firstParagraph(doc)
	return SocialElements{
		MainCaption:    orSentinel(caption, NoTitle),
		Hashtags:       orSentinelList(markdown.Hashtags(text), NoHashtags),
		Emojis:         markdown.Emojis(text),
		CharacterCount: len([]rune(strings.TrimSpace(text))),
		PlatformLimit:  socialCharacterLimit,
		EngagementHook: orSentinel(engagementHook(doc), NoTitle),
	}
}

func extractEmailAd(text string, doc *markdown.Doc) EmailAdElements {
	subject := markerLine(text, subjectRe)
	if subject == "" {
		subject = doc.Title()
	}
	copyText := strings.Join(doc.Paragraphs, "\n\n")

	var cta string
	if lines := markdown.CTALines(text); len(lines) > 0 {
		cta = lines[len(lines)-1]
	}
	return EmailAdElements{
		SubjectLine: orSentinel(subject, NoSubject),
		MainCopy:    orSentinel(copyText, NoTitle),
		CTA:         orSentinel(cta, NoCTA),
	}
}

func extractYouTube(text string, doc *markdown.Doc) YouTubeElements {
	return YouTubeElements{
		VideoTitle:  orSentinel(doc.Title(), NoTitle),
		Description: orSentinel(strings.Join(doc.Paragraphs, "\n\n"), NoTitle),
		Timestamps:  orSentinelList(markdown.Timestamps(text), NoTimestamps),
	}
}

// Marker lines such as "Keywords: a, b, c" or "Subject: ...".
var (
	keywordsRe  = regexp.MustCompile(`(?im)^[\s>*_]*keywords?\s*[:\-]\s*\**\s*(.+?)[\s*_]*$`)
	tagsRe      = regexp.MustCompile(`(?im)^[\s>*_]*(?:category\s*tags|categories|tags)\s*[:\-]\s*\**\s*(.+?)[\s*_]*$`)
	metaTitleRe = regexp.MustCompile(`(?im)^[\s>*_]*meta\s*title\s*[:\-]\s*\**\s*(.+?)[\s*_]*$`)
	subjectRe   = regexp.MustCompile(`(?im)^[\s>*_]*subject(?:\s*line)?\s*[:\-]\s*\**\s*(.+?)[\s*_]*$`)
)

func markerLine(text string, re *regexp.Regexp) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// markerList splits a marker line on commas.
func markerList(text string, re *regexp.Regexp) []string {
	line := markerLine(text, re)
	if line == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(line, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstParagraph(doc *markdown.Doc) string {
	if len(doc.Paragraphs) > 0 {
		return doc.Paragraphs[0]
	}
	return markdownFirstLine(doc)
}

// engagementHook is the opening question or exclamation, the line meant
// to stop the scroll. Falls back to the first line of the caption.
func engagementHook(doc *markdown.Doc) string {
	for _, p := range doc.Paragraphs {
		for _, sentence := range splitSentences(p) {
			if strings.HasSuffix(sentence, "?") || strings.HasSuffix(sentence, "!") {
				return sentence
			}
		}
	}
	return markdownFirstLine(doc)
}

func splitSentences(p string) []string {
	var out []string
	start := 0
	for i, r := range p {
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(p[start : i+1]); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(p[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

func markdownFirstLine(doc *markdown.Doc) string {
	if doc.Plain == "" {
		return ""
	}
	line, _, _ := strings.Cut(doc.Plain, "\n")
	return strings.TrimSpace(line)
}

func orSentinel(v, sentinel string) string {
	if strings.TrimSpace(v) == "" {
		return sentinel
	}
	return v
}

func orSentinelList(v []string, sentinel string) []string {
	if len(v) == 0 {
		return []string{sentinel}
	}
	return v
}
