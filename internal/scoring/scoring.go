// Package scoring rates a generated draft against a five-factor quality
// rubric. Score is a pure function: identical text and request always
// produce the identical vector, and no state survives between calls.
package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/seoforge/seoforge/internal/catalog"
	"github.com/seoforge/seoforge/internal/markdown"
)

// Factor weights. They sum to 1.0; Overall is always recomputed from the
// sub-scores with these, never stored.
const (
	WeightContent     = 0.30
	WeightKeyword     = 0.20
	WeightReadability = 0.20
	WeightTitle       = 0.15
	WeightMeta        = 0.15
)

// Request carries the parameters scoring needs from a generation request.
type Request struct {
	Keyword     string
	TargetWords int
	Family      catalog.Family
}

// Vector holds the five sub-scores, each in [0,100].
type Vector struct {
	Title       int `json:"titleScore"`
	Content     int `json:"contentScore"`
	Keyword     int `json:"keywordScore"`
	Meta        int `json:"metaScore"`
	Readability int `json:"readabilityScore"`
}

// Overall is the weighted sum of the five sub-scores, rounded.
func (v Vector) Overall() int {
	sum := float64(v.Content)*WeightContent +
		float64(v.Keyword)*WeightKeyword +
		float64(v.Readability)*WeightReadability +
		float64(v.Title)*WeightTitle +
		float64(v.Meta)*WeightMeta
	return clamp(int(math.Round(sum)))
}

// Factor names a single rubric dimension with its current score.
type Factor struct {
	Name  string
	Score int
}

// Weakest returns the n lowest-scoring factors, ascending. Ties keep the
// fixed factor order so feedback prompts stay deterministic.
func (v Vector) Weakest(n int) []Factor {
	factors := []Factor{
		{"title", v.Title},
		{"content", v.Content},
		{"keyword", v.Keyword},
		{"meta", v.Meta},
		{"readability", v.Readability},
	}
	sort.SliceStable(factors, func(i, j int) bool { return factors[i].Score < factors[j].Score })
	if n > len(factors) {
		n = len(factors)
	}
	return factors[:n]
}

// Score rates text against the rubric. Empty or whitespace-only text
// scores zero on every dimension.
func Score(text string, req Request) Vector {
	doc := markdown.Analyze(text)
	if doc.Plain == "" {
		return Vector{}
	}
	return Vector{
		Title:       scoreTitle(doc, req),
		Content:     scoreContent(doc, text, req),
		Keyword:     scoreKeyword(doc, req),
		Meta:        scoreMeta(text, req.Family),
		Readability: scoreReadability(doc),
	}
}

// --- keyword ---

// Optimal keyword density band, in percent of total words.
const (
	densityLow  = 1.0
	densityHigh = 2.0
)

func scoreKeyword(doc *markdown.Doc, req Request) int {
	kw := strings.TrimSpace(req.Keyword)
	if kw == "" {
		// Repurpose runs may carry no target keyword; density is
		// meaningless, score a fixed neutral value.
		return 90
	}

	words := tokenize(doc.Plain)
	if len(words) == 0 {
		return 0
	}
	occurrences := countPhrase(words, tokenize(kw))
	density := 100 * float64(occurrences) / float64(len(words))

	switch {
	case density >= densityLow && density <= densityHigh:
		return 100
	case density < densityLow:
		return clamp(int(math.Round(100 * density / densityLow)))
	default:
		return clamp(int(math.Round(100 - 50*(density-densityHigh))))
	}
}

// tokenize lowercases, strips punctuation, and stems each word.
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:\"'()[]{}*#-–—")
		if f == "" {
			continue
		}
		out = append(out, stem(f))
	}
	return out
}

// stem applies light suffix stripping, enough to match plural and
// possessive keyword forms without a full stemmer.
func stem(word string) string {
	word = strings.TrimSuffix(word, "'s")
	if len(word) > 3 && strings.HasSuffix(word, "ies") {
		return word[:len(word)-3] + "y"
	}
	if len(word) > 3 && strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss") {
		return word[:len(word)-1]
	}
	return word
}

func countPhrase(words, phrase []string) int {
	if len(phrase) == 0 || len(phrase) > len(words) {
		return 0
	}
	count := 0
	for i := 0; i+len(phrase) <= len(words); i++ {
		match := true
		for j, p := range phrase {
			if words[i+j] != p {
				match = false
				break
			}
		}
		if match {
			count++
		}
	}
	return count
}

// --- readability ---

func scoreReadability(doc *markdown.Doc) int {
	f := fleschReadingEase(doc.Plain)
	switch {
	case f >= 60 && f <= 80:
		return 100
	case f >= 50 && f <= 90:
		return 85
	case f >= 40 && f <= 95:
		return 70
	default:
		return clamp(int(math.Round(f * 0.6)))
	}
}

// fleschReadingEase computes 206.835 − 1.015·ASL − 84.6·ASW with syllables
// approximated by vowel groups, clamped to [0,100].
func fleschReadingEase(plain string) float64 {
	words := strings.Fields(plain)
	if len(words) == 0 {
		return 0
	}
	sentences := countSentences(plain)

	syllables := 0
	for _, w := range words {
		syllables += syllableCount(w)
	}

	asl := float64(len(words)) / float64(sentences)
	asw := float64(syllables) / float64(len(words))
	f := 206.835 - 1.015*asl - 84.6*asw
	return math.Max(0, math.Min(100, f))
}

func countSentences(text string) int {
	n := 0
	for _, part := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		if strings.TrimSpace(part) != "" {
			n++
		}
	}
	if n == 0 {
		n = 1
	}
	return n
}

func syllableCount(word string) int {
	groups := 0
	inGroup := false
	for _, r := range strings.ToLower(word) {
		switch r {
		case 'a', 'e', 'i', 'o', 'u', 'y':
			if !inGroup {
				groups++
				inGroup = true
			}
		default:
			inGroup = false
		}
	}
	if groups == 0 {
		groups = 1
	}
	return groups
}

// --- title ---

// Title length sweet spot, in characters.
const (
	titleLenLow  = 50
	titleLenHigh = 60
)

func scoreTitle(doc *markdown.Doc, req Request) int {
	title := doc.Title()
	if title == "" {
		return 0
	}

	length := len([]rune(title))
	score := 90.0
	switch {
	case length < titleLenLow:
		score -= 1.5 * float64(titleLenLow-length)
	case length > titleLenHigh:
		score -= 1.5 * float64(length-titleLenHigh)
	}
	if score < 30 {
		score = 30
	}

	kw := strings.ToLower(strings.TrimSpace(req.Keyword))
	if kw != "" {
		lower := strings.ToLower(title)
		if idx := strings.Index(lower, kw); idx >= 0 && idx < len(lower)/2 {
			score += 10
		}
	}
	return clamp(int(math.Round(score)))
}

// --- meta ---

// Meta description length sweet spot, in characters.
const (
	metaLenLow  = 120
	metaLenHigh = 160
)

// metaFamilies lists content families that carry a meta-description
// concept; the rest score a fixed neutral value on this factor.
var metaFamilies = map[catalog.Family]bool{
	catalog.FamilyBlog:      true,
	catalog.FamilyEcommerce: true,
	catalog.FamilyLanding:   true,
}

func scoreMeta(text string, family catalog.Family) int {
	if !metaFamilies[family] {
		return 75
	}
	meta := markdown.MetaDescription(text)
	if meta == "" {
		return 35
	}
	length := len([]rune(meta))
	score := 100.0
	switch {
	case length < metaLenLow:
		score -= float64(metaLenLow - length)
	case length > metaLenHigh:
		score -= float64(length - metaLenHigh)
	}
	if score < 40 {
		score = 40
	}
	return clamp(int(math.Round(score)))
}

// --- content ---

// structuredFamilies expect a heading hierarchy; ctaFamilies expect at
// least one call to action.
var (
	structuredFamilies = map[catalog.Family]bool{
		catalog.FamilyBlog:    true,
		catalog.FamilyLanding: true,
	}
	ctaFamilies = map[catalog.Family]bool{
		catalog.FamilyLanding:   true,
		catalog.FamilyEmailAd:   true,
		catalog.FamilyEcommerce: true,
	}
)

func scoreContent(doc *markdown.Doc, raw string, req Request) int {
	score := 40.0

	// Word-count proximity: full credit within ±15% of target, linear
	// falloff beyond. Overlong drafts are penalized here, not rejected.
	if req.TargetWords > 0 {
		ratio := float64(doc.WordCount()) / float64(req.TargetWords)
		dev := math.Abs(ratio - 1)
		if dev <= 0.15 {
			score += 30
		} else {
			score += math.Max(0, 30-100*(dev-0.15))
		}
	} else {
		score += 30
	}

	// Heading hierarchy appropriate to the family.
	if structuredFamilies[req.Family] {
		h1 := len(doc.HeadingsAt(1))
		h2 := len(doc.HeadingsAt(2))
		switch {
		case h1 >= 1 && h2 >= 2:
			score += 20
		case h1 >= 1 || h2 >= 1:
			score += 12
		}
	} else if len(doc.Paragraphs) > 0 || len(doc.Bullets) > 0 {
		score += 20
	}

	// Call to action where the family expects one.
	if ctaFamilies[req.Family] {
		if markdown.HasCTA(raw) {
			score += 10
		}
	} else {
		score += 10
	}

	return clamp(int(math.Round(score)))
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
