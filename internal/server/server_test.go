package server_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/seoforge/seoforge/internal/history"
	"github.com/seoforge/seoforge/internal/provider"
	"github.com/seoforge/seoforge/internal/server"
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

func newServer(t *testing.T, p provider.Provider, archive *history.Store) (*httptest.Server, *session.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := session.NewRunner(p, nil, nil, logger)
	sessions := session.NewStore()
	h := server.NewHandler(runner, sessions, archive, logger)
	ts := httptest.NewServer(h.Router())
	t.Cleanup(ts.Close)
	return ts, sessions
}

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

func generateBody(t *testing.T, draft, keyword string) *strings.Reader {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"tool":        "blog-writer",
		"mode":        "generate",
		"contentType": "blog-post",
		"sourceText":  keyword,
		"keyword":     keyword,
		"targetWords": len(strings.Fields(draft)),
	})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return strings.NewReader(string(body))
}

// resultView mirrors session.Result for decoding; the extracted elements
// are kept raw because their concrete schema varies per family.
type resultView struct {
	SessionID string          `json:"sessionId"`
	Status    session.Status  `json:"status"`
	Content   string          `json:"content"`
	Overall   int             `json:"overallScore"`
	Elements  json.RawMessage `json:"extractedElements"`
	Message   string          `json:"message"`
}

func decodeResult(t *testing.T, resp *http.Response) resultView {
	t.Helper()
	defer resp.Body.Close()
	var res resultView
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return res
}

func TestGenerate_Success(t *testing.T) {
	draft := strongDraft(t)
	ts, sessions := newServer(t, &scripted{texts: []string{draft}}, nil)

	resp, err := http.Post(ts.URL+"/api/generate", "application/json", generateBody(t, draft, "hiking boots"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	res := decodeResult(t, resp)
	if res.Status != session.StatusSuccess {
		t.Fatalf("result status = %q, want success (overall %d)", res.Status, res.Overall)
	}
	if res.Content != draft {
		t.Fatal("result content does not match the generated draft")
	}
	if sessions.Len() != 0 {
		t.Fatalf("terminal session left in store, len = %d", sessions.Len())
	}
}

func TestGenerate_NeedsRetryParksSessionForContinue(t *testing.T) {
	weak := plainDraft("Walk")
	strong := strongDraft(t)
	p := &scripted{texts: []string{weak, weak, weak, strong}}
	ts, sessions := newServer(t, p, nil)

	resp, err := http.Post(ts.URL+"/api/generate", "application/json", generateBody(t, weak, "zephyr"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	res := decodeResult(t, resp)
	if res.Status != session.StatusNeedsRetry {
		t.Fatalf("result status = %q, want needs_retry (overall %d)", res.Status, res.Overall)
	}
	if sessions.Len() != 1 {
		t.Fatalf("parked sessions = %d, want 1", sessions.Len())
	}

	// The parked session is visible while it awaits a decision.
	getResp, err := http.Get(ts.URL + "/api/sessions/" + res.SessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("get session status = %d, want 200", getResp.StatusCode)
	}

	resp, err = http.Post(ts.URL+"/api/sessions/"+res.SessionID+"/continue", "application/json", nil)
	if err != nil {
		t.Fatalf("continue: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("continue status = %d, want 200", resp.StatusCode)
	}
	final := decodeResult(t, resp)
	if final.Status != session.StatusSuccess {
		t.Fatalf("final status = %q, want success (overall %d)", final.Status, final.Overall)
	}
	if final.Content != strong {
		t.Fatal("final content is not the stronger resumed draft")
	}
	if sessions.Len() != 0 {
		t.Fatalf("resumed session left in store, len = %d", sessions.Len())
	}
}

func TestGenerate_InvalidBody(t *testing.T) {
	ts, _ := newServer(t, &scripted{texts: []string{"x"}}, nil)

	resp, err := http.Post(ts.URL+"/api/generate", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGenerate_ValidationFailure(t *testing.T) {
	p := &scripted{texts: []string{"x"}}
	ts, _ := newServer(t, p, nil)

	// 50 words is below the blog-post minimum.
	body := `{"mode":"generate","contentType":"blog-post","sourceText":"boots","keyword":"boots","targetWords":50}`
	resp, err := http.Post(ts.URL+"/api/generate", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if p.calls != 0 {
		t.Fatalf("provider called %d times for an invalid request", p.calls)
	}
}

func TestGenerate_ProviderUnavailable(t *testing.T) {
	p := &scripted{
		failFirst: 10,
		failWith:  &provider.Error{Service: "openai", Status: 503, Transient: true},
	}
	ts, _ := newServer(t, p, nil)

	draft := strongDraft(t)
	resp, err := http.Post(ts.URL+"/api/generate", "application/json", generateBody(t, draft, "hiking boots"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
}

func TestGetSession_Unknown(t *testing.T) {
	ts, _ := newServer(t, &scripted{texts: []string{"x"}}, nil)

	resp, err := http.Get(ts.URL + "/api/sessions/no-such-id")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGenerate_ArchivesTerminalResult(t *testing.T) {
	archive, err := history.New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer archive.Close()

	draft := strongDraft(t)
	ts, _ := newServer(t, &scripted{texts: []string{draft}}, archive)

	resp, err := http.Post(ts.URL+"/api/generate", "application/json", generateBody(t, draft, "hiking boots"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()

	// The archive write is asynchronous; poll briefly for it to land.
	deadline := time.Now().Add(3 * time.Second)
	for {
		records, err := archive.List(context.Background(), "blog-writer", 10)
		if err != nil {
			t.Fatalf("list history: %v", err)
		}
		if len(records) == 1 {
			if records[0].Status != string(session.StatusSuccess) {
				t.Fatalf("archived status = %q, want success", records[0].Status)
			}
			if records[0].Keyword != "hiking boots" {
				t.Fatalf("archived keyword = %q", records[0].Keyword)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("history record never appeared")
		}
		time.Sleep(20 * time.Millisecond)
	}
}
