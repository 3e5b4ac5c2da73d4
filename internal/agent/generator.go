// Package agent generates answers for the Orunmila persona by delegating
// to an external text-completion service.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"orunmila/internal/metrics"
	"orunmila/internal/provider"
)

// Requester carries optional metadata about who is asking, used to
// personalize the prompt.
type Requester struct {
	ID   string
	Name string
}

// Generator wraps a single completion call with the fixed system prompt.
// Stateless per call.
type Generator struct {
	completer provider.Completer
	logger    *slog.Logger
}

func NewGenerator(completer provider.Completer, logger *slog.Logger) *Generator {
	return &Generator{completer: completer, logger: logger}
}

// Answer returns generated answer text for a question. The two command
// inputs /start and /help (exact, case-sensitive) short-circuit to canned
// responses without touching the completion service. A completion failure
// degrades to a user-facing fallback message and is never surfaced as an
// error.
func (g *Generator) Answer(ctx context.Context, question string, req *Requester) string {
	switch question {
	case "/start":
		return greetingText
	case "/help":
		return helpText
	}

	prompt := question
	if req != nil && req.Name != "" {
		prompt = fmt.Sprintf("Question from %s: %s", req.Name, question)
	}

	answer, err := g.completer.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		g.logger.Error("completion failed, serving fallback",
			"provider", g.completer.Name(),
			"error", err,
		)
		metrics.Collector.Counter("orunmila_answer_fallbacks_total", "Answers served from the fallback text after a completion failure", "").Inc()
		return fallbackText
	}

	metrics.Collector.Counter("orunmila_answers_generated_total", "Answers generated by the completion service", "").Inc()
	return answer
}

// Greeting returns the canned greeting message.
func (g *Generator) Greeting() string { return greetingText }

// Help returns the canned help message.
func (g *Generator) Help() string { return helpText }
