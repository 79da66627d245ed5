package session_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/seoforge/seoforge/internal/provider"
	"github.com/seoforge/seoforge/internal/scoring"
	"github.com/seoforge/seoforge/internal/session"
)

// scripted returns canned drafts in order, repeating the last one, after
// an optional run of leading failures.
type scripted struct {
	texts     []string
	failFirst int
	failWith  error
	calls     int
}

func (s *scripted) Name() string { return "scripted" }

func (s *scripted) Generate(context.Context, provider.Prompt) (string, error) {
	s.calls++
	if s.calls <= s.failFirst {
		return "", s.failWith
	}
	i := s.calls - s.failFirst - 1
	if i >= len(s.texts) {
		i = len(s.texts) - 1
	}
	return s.texts[i], nil
}

func newRunner(p provider.Provider) *session.Runner {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return session.NewRunner(p, nil, nil, logger)
}

// strongDraft builds a blog draft that clears the success threshold:
// in-band keyword density, 53-character title with the keyword up front,
// proper heading structure, and a well-sized meta description.
func strongDraft(t *testing.T) string {
	t.Helper()

	title := "Hiking Boots for New Trail Walkers: A Full Size Guide"
	meta := "Find the right hiking boots for your first trail with our tips on fit, socks, and care so every walk feels light and dry."
	for len(meta) < 125 {
		meta += " More tips inside."
	}
	if len(meta) > 160 {
		t.Fatalf("meta length %d outside [120,160]", len(meta))
	}

	withKeyword := "Sturdy hiking boots give steady support and comfort on every rocky trail today. The right pair keeps your feet dry and warm on long walks. "
	filler := "A good fit starts at the heel and leaves room up front for your toes. Lace them snug but not tight, and wear the socks you plan to hike in. "

	var b strings.Builder
	b.WriteString("# " + title + "\n\n")
	b.WriteString("Meta Description: " + meta + "\n\n")
	b.WriteString("## Why Fit Comes First\n\n")
	for i := 0; i < 7; i++ {
		b.WriteString(withKeyword)
		b.WriteString(filler)
		b.WriteString(filler)
	}
	b.WriteString("\n\n## What to Look For\n\n")
	b.WriteString("- A firm heel cup\n- Room in the toe box\n- A grippy sole\n\n")
	b.WriteString("## Final Thoughts\n\n")
	for i := 0; i < 6; i++ {
		b.WriteString(filler)
		b.WriteString(withKeyword)
	}
	return b.String()
}

// plainDraft builds a structurally sound blog draft of monosyllabic
// prose with a configurable H1. With no meta line and a weak title its
// overall lands mid-range, ideal for forcing the retry paths.
func plainDraft(h1 string) string {
	withKeyword := "The boot fits the foot well on long walks in the woods. "
	plain := "The day was long but the path was dry and the sun was out. "

	unit := withKeyword + strings.Repeat(plain, 4)

	var b strings.Builder
	b.WriteString("# " + h1 + "\n\n")
	b.WriteString("## Fit\n\n")
	b.WriteString(strings.Repeat(unit, 6))
	b.WriteString("\n\n## Care\n\n")
	b.WriteString(strings.Repeat(unit, 6))
	return b.String()
}

func blogRequest(draft, keyword string) session.Request {
	return session.Request{
		Mode:        "generate",
		ContentType: "blog-post",
		SourceText:  keyword,
		Keyword:     keyword,
		TargetWords: len(strings.Fields(draft)),
	}
}

// Scenario: a strong first draft stops the session at iteration one.
func TestRun_SuccessOnFirstIteration(t *testing.T) {
	draft := strongDraft(t)
	p := &scripted{texts: []string{draft}}
	runner := newRunner(p)

	sess, res, err := runner.Run(context.Background(), blogRequest(draft, "hiking boots"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != session.StatusSuccess {
		t.Fatalf("status = %q, want success (overall %d)", res.Status, res.Overall)
	}
	if res.Overall < session.SuccessThreshold {
		t.Errorf("overall = %d, want >= %d", res.Overall, session.SuccessThreshold)
	}
	if p.calls != 1 {
		t.Errorf("provider calls = %d, want 1 (stop on success)", p.calls)
	}
	if len(res.Attempts) != 1 || len(sess.Attempts) != 1 {
		t.Errorf("attempts = %d, want 1", len(res.Attempts))
	}
	if res.Elements == nil {
		t.Error("expected extracted elements on success")
	}
	if res.Message != "Content generated successfully!" {
		t.Errorf("message = %q", res.Message)
	}
}

// Scenario: three mid-quality drafts end in a warning at the primary cap.
func TestRun_WarningAtPrimaryCap(t *testing.T) {
	draft := plainDraft("Boots")
	p := &scripted{texts: []string{draft}}
	runner := newRunner(p)

	_, res, err := runner.Run(context.Background(), blogRequest(draft, "boot"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != session.StatusWarning {
		t.Fatalf("status = %q, want warning (overall %d)", res.Status, res.Overall)
	}
	if res.Overall < session.WarningThreshold || res.Overall >= session.SuccessThreshold {
		t.Errorf("overall = %d, want in [70,80)", res.Overall)
	}
	if len(res.Attempts) != session.PrimaryIterationCap {
		t.Errorf("attempts = %d, want %d", len(res.Attempts), session.PrimaryIterationCap)
	}
	if !strings.Contains(res.Message, "good quality") {
		t.Errorf("message = %q", res.Message)
	}
	if res.Elements == nil {
		t.Error("expected extracted elements on warning")
	}
}

// Scenario: three low-quality drafts stop at needs_retry with the best
// draft attached, awaiting an explicit caller decision.
func TestRun_NeedsRetryAfterPrimaryCap(t *testing.T) {
	draft := plainDraft("Walk")
	p := &scripted{texts: []string{draft}}
	runner := newRunner(p)

	sess, res, err := runner.Run(context.Background(), blogRequest(draft, "zephyr"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != session.StatusNeedsRetry {
		t.Fatalf("status = %q, want needs_retry (overall %d)", res.Status, res.Overall)
	}
	if res.Overall < 40 || res.Overall > 60 {
		t.Errorf("overall = %d, want mid-range lows", res.Overall)
	}
	if len(res.Attempts) != 3 {
		t.Errorf("attempts = %d, want 3", len(res.Attempts))
	}
	if res.Content == "" {
		t.Error("needs_retry must still carry the best draft")
	}
	if !strings.Contains(res.Message, "Would you like to try 3 more iterations?") {
		t.Errorf("message = %q", res.Message)
	}
	if sess.Status != session.StatusNeedsRetry {
		t.Errorf("session status = %q", sess.Status)
	}
	if res.Elements != nil {
		t.Error("needs_retry should not extract yet")
	}
}

// Scenario: a continuation runs three more iterations; with every draft
// still below the warning threshold the session fails at the absolute
// cap and returns the single highest-scoring draft of all six.
func TestResume_FailedAtAbsoluteCap(t *testing.T) {
	low := plainDraft("Walk")
	better := plainDraft("The Long Walk Home Through The Cold Wet Woods In Fall")
	p := &scripted{texts: []string{low, low, low, better, low, low}}
	runner := newRunner(p)

	req := blogRequest(low, "zephyr")
	sess, res, err := runner.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Status != session.StatusNeedsRetry {
		t.Fatalf("status after run = %q (overall %d)", res.Status, res.Overall)
	}

	res, err = runner.Resume(context.Background(), sess)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if res.Status != session.StatusFailed {
		t.Fatalf("status = %q, want failed (overall %d)", res.Status, res.Overall)
	}
	if len(res.Attempts) != session.AbsoluteIterationCap {
		t.Errorf("attempts = %d, want %d", len(res.Attempts), session.AbsoluteIterationCap)
	}

	// Best-of-N: the returned draft carries the maximum recorded score.
	max := 0
	for _, a := range res.Attempts {
		if a.OverallScore > max {
			max = a.OverallScore
		}
	}
	if res.Overall != max {
		t.Errorf("overall = %d, want max attempt score %d", res.Overall, max)
	}
	if res.Content != better {
		t.Error("returned content is not the highest-scoring draft")
	}
	if !strings.Contains(res.Message, "Unable to meet quality standards after 6 total attempts") {
		t.Errorf("message = %q", res.Message)
	}
	if res.Elements == nil {
		t.Error("failed sessions still extract from the best draft")
	}
}

// Scenario: empty provider output scores zero everywhere and never
// crashes the loop.
func TestRun_EmptyDraftScoresZero(t *testing.T) {
	p := &scripted{texts: []string{""}}
	runner := newRunner(p)

	req := session.Request{
		Mode:        "generate",
		ContentType: "blog-post",
		SourceText:  "hiking boots",
		Keyword:     "hiking boots",
		TargetWords: 800,
	}
	_, res, err := runner.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != session.StatusNeedsRetry {
		t.Fatalf("status = %q", res.Status)
	}
	if res.Scores != (scoring.Vector{}) {
		t.Errorf("scores = %+v, want all zeros", res.Scores)
	}
	if res.Overall != 0 {
		t.Errorf("overall = %d, want 0", res.Overall)
	}
}

func TestRun_RejectsInvalidRequestBeforeGenerating(t *testing.T) {
	p := &scripted{texts: []string{"anything"}}
	runner := newRunner(p)

	req := session.Request{
		Mode:        "generate",
		ContentType: "blog-post",
		SourceText:  "hiking boots",
		TargetWords: 50, // blog-post floor is 800
	}
	if _, _, err := runner.Run(context.Background(), req); err == nil {
		t.Fatal("expected validation error")
	}
	if p.calls != 0 {
		t.Errorf("provider calls = %d, want 0 before validation", p.calls)
	}
}

func TestRun_ProviderUnavailableAfterRetries(t *testing.T) {
	p := &scripted{
		failFirst: 100,
		failWith:  &provider.Error{Service: "scripted", Status: 503, Transient: true, Err: errors.New("down")},
	}
	runner := newRunner(p)

	draft := plainDraft("Walk")
	_, _, err := runner.Run(context.Background(), blogRequest(draft, "boot"))
	if !errors.Is(err, session.ErrProviderUnavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
	if p.calls != 3 {
		t.Errorf("provider calls = %d, want 3 (1 + 2 iteration retries)", p.calls)
	}
}

func TestRun_FatalProviderErrorAbortsImmediately(t *testing.T) {
	p := &scripted{
		failFirst: 100,
		failWith:  &provider.Error{Service: "scripted", Status: 401, Err: errors.New("bad key")},
	}
	runner := newRunner(p)

	draft := plainDraft("Walk")
	_, _, err := runner.Run(context.Background(), blogRequest(draft, "boot"))
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, session.ErrProviderUnavailable) {
		t.Error("fatal errors must stay distinct from exhausted retries")
	}
	if p.calls != 1 {
		t.Errorf("provider calls = %d, want 1", p.calls)
	}
}

func TestResume_RejectsNonRetrySessions(t *testing.T) {
	draft := strongDraft(t)
	p := &scripted{texts: []string{draft}}
	runner := newRunner(p)

	sess, _, err := runner.Run(context.Background(), blogRequest(draft, "hiking boots"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := runner.Resume(context.Background(), sess); err == nil {
		t.Error("expected error resuming a successful session")
	}
}

func TestRun_OnAttemptObservesEveryIteration(t *testing.T) {
	draft := plainDraft("Walk")
	p := &scripted{texts: []string{draft}}
	runner := newRunner(p)

	var seen []session.AttemptRecord
	runner.OnAttempt = func(a session.AttemptRecord) { seen = append(seen, a) }

	_, _, err := runner.Run(context.Background(), blogRequest(draft, "zephyr"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 3 {
		t.Fatalf("observed %d attempts, want 3", len(seen))
	}
	for i, a := range seen {
		if a.Iteration != i+1 {
			t.Errorf("attempt %d has iteration %d", i, a.Iteration)
		}
	}
}

func TestStore_PutGetDelete(t *testing.T) {
	store := session.NewStore()
	sess := &session.Session{ID: "abc"}

	store.Put(sess)
	got, err := store.Get("abc")
	if err != nil || got != sess {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d", store.Len())
	}

	store.Delete("abc")
	if _, err := store.Get("abc"); err == nil {
		t.Error("expected error after delete")
	}
}
