// Package provider implements clients for external text-completion services.
package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"orunmila/internal/config"
)

// Completer turns a system instruction plus a user prompt into generated
// text. Implementations make exactly one attempt; callers own the policy
// for degrading on failure.
type Completer interface {
	Name() string
	Complete(ctx context.Context, system, prompt string) (string, error)
	Healthy(ctx context.Context) error
}

// New creates the completer selected by cfg.Provider.
func New(cfg config.LLMConfig, logger *slog.Logger) (Completer, error) {
	base := strings.TrimSuffix(cfg.APIBase, "/")

	switch cfg.Provider {
	case "openai":
		return NewOpenAI(OpenAIConfig{
			APIKey:         cfg.APIKey,
			APIBase:        base,
			Model:          cfg.Model,
			TimeoutSeconds: cfg.TimeoutSeconds,
			Logger:         logger,
		}), nil
	case "gemini":
		return NewGemini(GeminiConfig{
			APIKey:         cfg.APIKey,
			APIBase:        base,
			Model:          cfg.Model,
			TimeoutSeconds: cfg.TimeoutSeconds,
			Logger:         logger,
		}), nil
	default:
		return nil, fmt.Errorf("unknown completion provider: %q", cfg.Provider)
	}
}
