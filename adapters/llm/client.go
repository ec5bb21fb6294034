package llm

import (
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/talentforge/candidate-os/internal/config"
)

// NewOpenAIClient builds the shared client. A custom base URL points the
// adapters at any OpenAI-compatible endpoint (e.g. a local model server).
func NewOpenAIClient(cfg config.Config) (*openai.Client, error) {
	if cfg.OpenAI.APIKey == "" && cfg.OpenAI.BaseURL == "" {
		return nil, fmt.Errorf("OpenAI API key is not configured")
	}

	clientConfig := openai.DefaultConfig(cfg.OpenAI.APIKey)
	if cfg.OpenAI.BaseURL != "" {
		clientConfig.BaseURL = cfg.OpenAI.BaseURL
	}
	return openai.NewClientWithConfig(clientConfig), nil
}

// stripCodeFence removes a markdown code fence if the model wrapped its
// output in one.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
