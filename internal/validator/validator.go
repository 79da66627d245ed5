// Package validator checks that a generated draft is written in the
// language the request asked for. Providers occasionally ignore locale
// instructions and answer in English; catching that here keeps a
// wrong-language draft from ever winning a session.
package validator

import (
	"fmt"
	"strings"

	"github.com/seoforge/seoforge/internal/catalog"
	"github.com/seoforge/seoforge/internal/detector"
)

// minValidationLength is the minimum rune count required to attempt
// language detection. Shorter drafts produce unreliable results and are
// accepted without validation.
const minValidationLength = 20

// Validator checks draft language against the request locale.
// The underlying language detector is expensive to build; reuse the instance.
type Validator struct {
	det *detector.Detector
}

// New creates a Validator backed by the lingua-go language detector.
func New() *Validator {
	return &Validator{det: detector.New()}
}

// IsValid reports whether draft appears to be written in the language of
// locale (a BCP 47 tag such as "en-US"; comparison is on the base
// language).
//
// Empty locales, short drafts, and drafts whose language cannot be
// determined pass without error. When the detected language differs from
// the locale's base language the returned error names both codes.
func (v *Validator) IsValid(draft, locale string) (bool, error) {
	if locale == "" {
		return true, nil
	}

	text := strings.TrimSpace(draft)
	if text == "" {
		return false, fmt.Errorf("draft is empty")
	}

	// Detector is unreliable for very short texts; skip validation.
	if len([]rune(text)) < minValidationLength {
		return true, nil
	}

	want := catalog.LocaleBase(locale)
	if want == "" {
		return true, nil
	}

	detected, ok := v.det.DetectISO(text)
	if !ok {
		// Ambiguous language, cannot validate, pass through.
		return true, nil
	}

	if !strings.EqualFold(detected, want) {
		return false, fmt.Errorf("expected %s but detected %s", want, detected)
	}
	return true, nil
}
