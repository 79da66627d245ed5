package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

const defaultOllamaModel = "llama3.2"

// Ollama generates drafts against a local Ollama daemon.
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllama builds an Ollama provider. Empty arguments fall back to the
// local daemon and its default model.
func NewOllama(baseURL, model string) *Ollama {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = defaultOllamaModel
	}
	return &Ollama{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (s *Ollama) Name() string { return "ollama" }

func (s *Ollama) Generate(ctx context.Context, prompt Prompt) (string, error) {
	body := map[string]interface{}{
		"model":  s.model,
		"prompt": prompt.System + "\n\n" + prompt.User,
		"stream": false,
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", &Error{Service: s.Name(), Err: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/api/generate", s.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", &Error{Service: s.Name(), Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		var netErr net.Error
		transient := errors.As(err, &netErr) && netErr.Timeout() || errors.Is(err, context.DeadlineExceeded)
		return "", &Error{Service: s.Name(), Transient: transient, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &Error{
			Service:   s.Name(),
			Status:    resp.StatusCode,
			Transient: resp.StatusCode >= http.StatusInternalServerError,
			Err:       fmt.Errorf("API returned status %d", resp.StatusCode),
		}
	}

	var ollamaResp struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return "", &Error{Service: s.Name(), Transient: true, Err: fmt.Errorf("decode response: %w", err)}
	}
	return ollamaResp.Response, nil
}

// IsAvailable checks that the daemon answers at all.
func (s *Ollama) IsAvailable(ctx context.Context) error {
	req, _ := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/api/tags", s.baseURL), nil)
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama not available: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return nil
}
