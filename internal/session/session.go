// Package session drives the iterative refinement loop: generate a
// draft, score it, and either stop or regenerate with feedback until a
// quality threshold or an iteration cap is reached. One session owns one
// piece of work; sessions never share mutable state.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/seoforge/seoforge/internal/catalog"
	"github.com/seoforge/seoforge/internal/extract"
	"github.com/seoforge/seoforge/internal/postprocess"
	"github.com/seoforge/seoforge/internal/prompt"
	"github.com/seoforge/seoforge/internal/provider"
	"github.com/seoforge/seoforge/internal/scoring"
	"github.com/seoforge/seoforge/internal/validator"
)

// Policy constants for the refinement loop.
const (
	PrimaryIterationCap  = 3
	RetryIterationCap    = 3
	AbsoluteIterationCap = PrimaryIterationCap + RetryIterationCap

	SuccessThreshold = 80
	WarningThreshold = 70

	// providerRetries is how many times one iteration is re-attempted
	// after the generation client exhausts its own transient budget.
	providerRetries = 2
)

// ErrProviderUnavailable aborts a session when generation keeps failing.
// It is a transport outcome, distinct from any quality status.
var ErrProviderUnavailable = errors.New("generation provider unavailable")

// Status is a caller-visible session outcome.
type Status string

const (
	StatusSuccess    Status = "success"
	StatusWarning    Status = "warning"
	StatusNeedsRetry Status = "needs_retry"
	StatusFailed     Status = "failed"
)

// Phase tracks where a session is in its lifecycle.
type Phase string

const (
	PhaseInit       Phase = "init"
	PhaseGenerating Phase = "generating"
	PhaseScored     Phase = "scored"
	PhaseTerminal   Phase = "terminal"
)

// Request is the immutable input to one session.
type Request struct {
	Mode         string `json:"mode"`
	ContentType  string `json:"contentType"`
	SourceText   string `json:"sourceText"`
	Keyword      string `json:"keyword"`
	TargetWords  int    `json:"targetWords"`
	Audience     string `json:"audience,omitempty"`
	Tone         string `json:"tone,omitempty"`
	Framework    string `json:"framework,omitempty"`
	Locale       string `json:"locale,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// Draft is one scored candidate. Immutable once scored.
type Draft struct {
	Text      string         `json:"text"`
	Iteration int            `json:"iteration"`
	Scores    scoring.Vector `json:"scores"`
}

// AttemptRecord is the append-only progress entry for one iteration.
type AttemptRecord struct {
	Iteration    int `json:"iteration"`
	OverallScore int `json:"overallScore"`
}

// Session is the stateful aggregate for one refinement run. It is not
// safe for concurrent use; a session belongs to exactly one request at a
// time.
type Session struct {
	ID        string          `json:"id"`
	Request   Request         `json:"request"`
	Family    catalog.Family  `json:"family"`
	Attempts  []AttemptRecord `json:"attempts"`
	Drafts    []Draft         `json:"drafts"`
	Phase     Phase           `json:"phase"`
	Status    Status          `json:"status,omitempty"`
	BestIndex int             `json:"bestIndex"`
}

// Result is what a terminal (or needs_retry) session surfaces to the
// caller. Content is always the best draft so far, even on failure.
type Result struct {
	SessionID string           `json:"sessionId"`
	Status    Status           `json:"status"`
	Content   string           `json:"content"`
	Scores    scoring.Vector   `json:"seoAnalysis"`
	Overall   int              `json:"overallScore"`
	Elements  extract.Elements `json:"extractedElements,omitempty"`
	Attempts  []AttemptRecord  `json:"attempts"`
	Message   string           `json:"message"`
}

// Runner executes sessions against one provider. The zero value is not
// usable; construct with NewRunner.
type Runner struct {
	provider  provider.Provider
	catalog   *catalog.Catalog
	validator *validator.Validator
	logger    *slog.Logger

	// OnAttempt, when set, observes each scored iteration as it lands.
	OnAttempt func(AttemptRecord)
}

// NewRunner builds a Runner. The validator may be nil to skip language
// checking; a nil logger falls back to slog.Default.
func NewRunner(p provider.Provider, cat *catalog.Catalog, v *validator.Validator, logger *slog.Logger) *Runner {
	if cat == nil {
		cat = catalog.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{provider: p, catalog: cat, validator: v, logger: logger}
}

// Run validates req, creates a fresh session, and drives it through the
// primary iteration budget. Validation failures are returned before any
// provider call is made.
func (r *Runner) Run(ctx context.Context, req Request) (*Session, *Result, error) {
	if req.TargetWords == 0 {
		if lim, ok := r.catalog.Lookup(req.ContentType); ok {
			req.TargetWords = lim.DefaultWords
		}
	}
	limits, err := r.catalog.Validate(req.ContentType, req.SourceText, req.TargetWords, req.Locale)
	if err != nil {
		return nil, nil, err
	}

	sess := &Session{
		ID:        uuid.NewString(),
		Request:   req,
		Family:    limits.Family,
		Phase:     PhaseInit,
		BestIndex: -1,
	}
	result, err := r.iterate(ctx, sess, PrimaryIterationCap)
	return sess, result, err
}

// Resume continues a needs_retry session through the retry extension.
// The session keeps its accumulated attempts and drafts; a session that
// is not awaiting a retry decision is rejected.
func (r *Runner) Resume(ctx context.Context, sess *Session) (*Result, error) {
	if sess.Status != StatusNeedsRetry {
		return nil, fmt.Errorf("session %s is not awaiting a retry decision (status %q)", sess.ID, sess.Status)
	}
	if len(sess.Attempts) >= AbsoluteIterationCap {
		return nil, fmt.Errorf("session %s already used all %d attempts", sess.ID, AbsoluteIterationCap)
	}
	sess.Status = ""
	sess.Phase = PhaseGenerating
	return r.iterate(ctx, sess, AbsoluteIterationCap)
}

// iterate runs the loop until limit iterations have been recorded or a
// stop rule fires.
func (r *Runner) iterate(ctx context.Context, sess *Session, limit int) (*Result, error) {
	scoreReq := scoring.Request{
		Keyword:     sess.Request.Keyword,
		TargetWords: sess.Request.TargetWords,
		Family:      sess.Family,
	}

	for len(sess.Attempts) < limit {
		iteration := len(sess.Attempts) + 1
		sess.Phase = PhaseGenerating

		text, err := r.generate(ctx, sess, iteration)
		if err != nil {
			return nil, err
		}

		draft := Draft{
			Text:      text,
			Iteration: iteration,
			Scores:    scoring.Score(text, scoreReq),
		}
		r.checkLanguage(sess, draft)

		sess.Drafts = append(sess.Drafts, draft)
		record := AttemptRecord{Iteration: iteration, OverallScore: draft.Scores.Overall()}
		sess.Attempts = append(sess.Attempts, record)
		if sess.BestIndex < 0 || record.OverallScore > sess.Attempts[sess.BestIndex].OverallScore {
			sess.BestIndex = len(sess.Attempts) - 1
		}
		sess.Phase = PhaseScored

		r.logger.Info("iteration scored",
			"session", sess.ID,
			"iteration", iteration,
			"overall", record.OverallScore)
		if r.OnAttempt != nil {
			r.OnAttempt(record)
		}

		overall := record.OverallScore
		switch {
		case overall >= SuccessThreshold:
			return r.finish(sess, StatusSuccess), nil
		case iteration == limit && overall >= WarningThreshold:
			return r.finish(sess, StatusWarning), nil
		case iteration == PrimaryIterationCap && limit == PrimaryIterationCap:
			return r.finish(sess, StatusNeedsRetry), nil
		case iteration == AbsoluteIterationCap:
			return r.finish(sess, StatusFailed), nil
		}
	}

	// The loop only falls through when the budget was already consumed
	// before this call; classify from the best score on record.
	best := sess.Attempts[sess.BestIndex].OverallScore
	if best >= WarningThreshold {
		return r.finish(sess, StatusWarning), nil
	}
	return r.finish(sess, StatusFailed), nil
}

// generate builds the iteration prompt and calls the provider, repeating
// a failed iteration a bounded number of times. Iterations abandoned to
// provider failure never consume an AttemptRecord.
func (r *Runner) generate(ctx context.Context, sess *Session, iteration int) (string, error) {
	in := prompt.Inputs{
		Mode:         sess.Request.Mode,
		ContentType:  sess.Request.ContentType,
		Family:       sess.Family,
		SourceText:   sess.Request.SourceText,
		Keyword:      sess.Request.Keyword,
		TargetWords:  sess.Request.TargetWords,
		Audience:     sess.Request.Audience,
		Tone:         sess.Request.Tone,
		Framework:    sess.Request.Framework,
		Locale:       sess.Request.Locale,
		Instructions: sess.Request.Instructions,
	}

	var p provider.Prompt
	if len(sess.Drafts) == 0 {
		p = prompt.Initial(in)
	} else {
		prior := sess.Drafts[len(sess.Drafts)-1]
		p = prompt.Refinement(in, prior.Text, prior.Scores, iteration)
	}

	var lastErr error
	for try := 0; try <= providerRetries; try++ {
		text, err := r.provider.Generate(ctx, p)
		if err == nil {
			return postprocess.Clean(text), nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		// Fatal provider errors (auth, quota, malformed request) will
		// not heal on a repeat; abort the session now.
		if !provider.IsTransient(err) {
			return "", err
		}
		r.logger.Warn("generation attempt failed",
			"session", sess.ID,
			"iteration", iteration,
			"try", try+1,
			"error", err)
	}
	return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, lastErr)
}

// checkLanguage logs a warning when a draft is not in the requested
// locale. The rubric scores structure, not language, so a mismatch is
// surfaced but does not abort the iteration.
func (r *Runner) checkLanguage(sess *Session, draft Draft) {
	if r.validator == nil || sess.Request.Locale == "" {
		return
	}
	if ok, err := r.validator.IsValid(draft.Text, sess.Request.Locale); !ok && err != nil {
		r.logger.Warn("draft language mismatch",
			"session", sess.ID,
			"iteration", draft.Iteration,
			"error", err)
	}
}

// finish marks the session terminal (or awaiting a retry decision) and
// assembles the caller-facing result from the best draft.
func (r *Runner) finish(sess *Session, status Status) *Result {
	sess.Status = status
	if status != StatusNeedsRetry {
		sess.Phase = PhaseTerminal
	}

	best := sess.Drafts[sess.BestIndex]
	res := &Result{
		SessionID: sess.ID,
		Status:    status,
		Content:   best.Text,
		Scores:    best.Scores,
		Overall:   best.Scores.Overall(),
		Attempts:  sess.Attempts,
		Message:   statusMessage(status, best.Scores.Overall(), len(sess.Attempts)),
	}
	if status == StatusSuccess || status == StatusWarning || status == StatusFailed {
		res.Elements = extract.Extract(best.Text, sess.Family)
	}
	return res
}

func statusMessage(status Status, overall, attempts int) string {
	switch status {
	case StatusSuccess:
		return "Content generated successfully!"
	case StatusWarning:
		return fmt.Sprintf("Content generated with good quality (%d/100)", overall)
	case StatusNeedsRetry:
		return fmt.Sprintf("Score %d/100 after %d attempts. Would you like to try %d more iterations?", overall, attempts, RetryIterationCap)
	case StatusFailed:
		return fmt.Sprintf("Unable to meet quality standards after %d total attempts. Best score: %d/100", attempts, overall)
	default:
		return ""
	}
}
