package provider

import (
	"context"
	"errors"
	"net"
	"net/http"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI generates drafts through the chat completions API of any
// OpenAI-compatible endpoint.
type OpenAI struct {
	model string
	opts  []option.RequestOption
}

// NewOpenAI builds an OpenAI provider. baseURL is optional and points
// the client at a compatible gateway when set.
func NewOpenAI(apiKey, model, baseURL string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	if model == "" {
		return nil, errors.New("openai: model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAI{model: model, opts: opts}, nil
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Generate(ctx context.Context, prompt Prompt) (string, error) {
	client := openai.NewClient(o.opts...)

	msgs := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(prompt.System),
		openai.UserMessage(prompt.User),
	}
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: msgs,
	})
	if err != nil {
		return "", o.wrap(err)
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Service: o.Name(), Transient: true, Err: errors.New("empty choices")}
	}
	return resp.Choices[0].Message.Content, nil
}

// wrap classifies SDK errors. Server-side and transport failures are
// transient; auth, quota, and malformed requests are not.
func (o *OpenAI) wrap(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		transient := apierr.StatusCode >= http.StatusInternalServerError ||
			apierr.StatusCode == http.StatusRequestTimeout
		return &Error{Service: o.Name(), Status: apierr.StatusCode, Transient: transient, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Service: o.Name(), Transient: true, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Service: o.Name(), Transient: true, Err: err}
	}
	return &Error{Service: o.Name(), Err: err}
}
