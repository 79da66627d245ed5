// Package catalog holds the content-type catalog: the word-count limits and
// structural family for every content type the engine can generate. The
// catalog is read-only configuration; it is consulted to reject invalid
// requests before any generation attempt and to select scoring and
// extraction behaviour, but never mutated at runtime.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Family is the structural category of a content type. It governs which
// extraction schema applies and which structural elements scoring expects.
type Family string

const (
	FamilyBlog      Family = "blog"
	FamilyEcommerce Family = "ecommerce"
	FamilyLanding   Family = "landing"
	FamilySocial    Family = "social"
	FamilyEmailAd   Family = "email-ad"
	FamilyYouTube   Family = "youtube"
)

// Limits bounds the target word count for one content type.
type Limits struct {
	Family       Family `yaml:"family"`
	MinWords     int    `yaml:"min"`
	MaxWords     int    `yaml:"max"`
	DefaultWords int    `yaml:"default"`
}

// ValidationError reports a request rejected before any provider call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Catalog maps content-type slugs to their limits. Safe for concurrent
// reads once constructed.
type Catalog struct {
	entries map[string]Limits
}

// Default returns a catalog populated with the built-in content types.
func Default() *Catalog {
	entries := make(map[string]Limits, len(builtin))
	for k, v := range builtin {
		entries[k] = v
	}
	return &Catalog{entries: entries}
}

// LoadFile merges YAML overrides into the catalog. An override may adjust
// limits of a built-in type or add a new type; entries without a family
// keep the built-in one.
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog file: %w", err)
	}
	var overrides map[string]Limits
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("parse catalog file: %w", err)
	}
	for slug, lim := range overrides {
		if lim.Family == "" {
			if existing, ok := c.entries[slug]; ok {
				lim.Family = existing.Family
			}
		}
		if lim.MinWords <= 0 || lim.MaxWords < lim.MinWords {
			return fmt.Errorf("catalog entry %q: min/max out of order", slug)
		}
		c.entries[slug] = lim
	}
	return nil
}

// Lookup returns the limits for a content-type slug.
func (c *Catalog) Lookup(contentType string) (Limits, bool) {
	lim, ok := c.entries[strings.ToLower(strings.TrimSpace(contentType))]
	return lim, ok
}

// Types returns all known content-type slugs.
func (c *Catalog) Types() []string {
	out := make([]string, 0, len(c.entries))
	for k := range c.entries {
		out = append(out, k)
	}
	return out
}

// Validate rejects a request whose content type is unknown, whose target
// word count falls outside the catalog range, whose source text is empty,
// or whose locale does not parse as a BCP 47 tag. It returns the resolved
// limits on success so callers do not look them up twice.
func (c *Catalog) Validate(contentType, sourceText string, targetWords int, locale string) (Limits, error) {
	if strings.TrimSpace(sourceText) == "" {
		return Limits{}, &ValidationError{Field: "sourceText", Reason: "must not be empty"}
	}
	lim, ok := c.Lookup(contentType)
	if !ok {
		return Limits{}, &ValidationError{Field: "contentType", Reason: fmt.Sprintf("unknown content type %q", contentType)}
	}
	if targetWords < lim.MinWords || targetWords > lim.MaxWords {
		return Limits{}, &ValidationError{
			Field:  "targetWordCount",
			Reason: fmt.Sprintf("must be between %d and %d for %s", lim.MinWords, lim.MaxWords, contentType),
		}
	}
	if locale != "" {
		if _, err := language.Parse(locale); err != nil {
			return Limits{}, &ValidationError{Field: "locale", Reason: fmt.Sprintf("unparseable locale %q", locale)}
		}
	}
	return lim, nil
}

// LocaleBase returns the lowercase ISO 639-1 base of a BCP 47 locale tag
// ("en-US" → "en"). Empty or unparseable locales yield "".
func LocaleBase(locale string) string {
	if locale == "" {
		return ""
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	return strings.ToLower(base.String())
}

var builtin = map[string]Limits{
	// Long-form content.
	"blog-post": {FamilyBlog, 800, 2000, 800},
	"article":   {FamilyBlog, 700, 1800, 900},
	"listicle":  {FamilyBlog, 700, 1800, 900},

	// E-commerce listings and descriptions.
	"product-description":       {FamilyEcommerce, 50, 300, 120},
	"category-page-description": {FamilyEcommerce, 200, 600, 350},
	"amazon-listing":            {FamilyEcommerce, 300, 800, 450},
	"shopify-listing":           {FamilyEcommerce, 300, 800, 450},
	"ebay-listing":              {FamilyEcommerce, 200, 600, 350},
	"etsy-listing":              {FamilyEcommerce, 200, 600, 350},

	// Landing pages and site copy.
	"landing-page-copy":     {FamilyLanding, 300, 800, 500},
	"landing-page-headline": {FamilyLanding, 20, 100, 50},
	"cta-generator":         {FamilyLanding, 10, 40, 20},
	"service-page":          {FamilyLanding, 500, 1200, 700},
	"about-us":              {FamilyLanding, 250, 600, 400},

	// Email and paid ads.
	"newsletter":       {FamilyEmailAd, 100, 400, 200},
	"promo-email":      {FamilyEmailAd, 100, 400, 200},
	"facebook-ad":      {FamilyEmailAd, 20, 100, 60},
	"instagram-ad":     {FamilyEmailAd, 20, 100, 60},
	"tiktok-ad":        {FamilyEmailAd, 20, 100, 60},
	"google-search-ad": {FamilyEmailAd, 20, 100, 60},
	"linkedin-ad":      {FamilyEmailAd, 20, 100, 60},

	// Social posts and captions.
	"facebook-caption":  {FamilySocial, 30, 150, 80},
	"instagram-caption": {FamilySocial, 30, 150, 80},
	"tiktok-caption":    {FamilySocial, 20, 100, 50},
	"linkedin-post":     {FamilySocial, 150, 400, 250},
	"twitter-post":      {FamilySocial, 20, 50, 30},
	"twitter-thread":    {FamilySocial, 100, 300, 150},
	"hashtag-generator": {FamilySocial, 5, 29, 20},

	// Video metadata.
	"youtube-title-description": {FamilyYouTube, 100, 250, 150},
}
