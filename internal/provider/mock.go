package provider

import (
	"context"
	"strings"
)

// Mock is an offline stand-in that fabricates a structured draft from
// the prompt, useful for dry runs without a model daemon or API key.
type Mock struct{}

func (Mock) Name() string { return "mock" }

func (Mock) Generate(_ context.Context, prompt Prompt) (string, error) {
	topic := firstPromptLine(prompt.User)
	if topic == "" {
		topic = "Generated Draft"
	}

	var sb strings.Builder
	sb.WriteString("# " + topic + "\n\n")
	sb.WriteString("Meta Description: A placeholder draft produced offline for " + topic + ", useful for wiring checks and previews before a real model runs.\n\n")
	sb.WriteString("## Overview\n\n")
	sb.WriteString("This draft was produced by the offline mock provider. It mirrors the shape of real output without calling any model.\n\n")
	sb.WriteString("## Request\n\n")
	sb.WriteString(prompt.User + "\n\n")
	sb.WriteString("## Next Steps\n\n")
	sb.WriteString("- Swap in a real provider for production output\n")
	sb.WriteString("- Review the request wording above\n")
	return sb.String(), nil
}

func firstPromptLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	if len([]rune(line)) > 60 {
		line = string([]rune(line)[:60])
	}
	return strings.TrimSpace(line)
}
