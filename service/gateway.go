package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/docqa/docqa-be/types"
)

const (
	answerSystemPrompt = "You are a document assistant. Answer the question using only the provided document text. " +
		"If the document does not contain the answer, say so instead of guessing."
	restructureSystemPrompt = "You reformat raw text extracted from a PDF into well-structured plain text with " +
		"headings and paragraphs. Do not add, remove, or invent content."

	defaultGatewayTimeout = 30 * time.Second
	defaultContextChars   = 12000
)

// Gateway fans a request out to an ordered list of chat-completion
// providers, falling to the next one on failure. Swapping providers never
// changes extraction or chunking behavior; the gateway only ever sees
// prompt-ready text.
type Gateway struct {
	providers    []AIService
	timeout      time.Duration
	contextChars int
}

// GatewayConfig bounds gateway calls.
type GatewayConfig struct {
	Timeout      time.Duration
	ContextChars int
}

func NewGateway(cfg GatewayConfig, providers ...AIService) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}
	contextChars := cfg.ContextChars
	if contextChars <= 0 {
		contextChars = defaultContextChars
	}
	return &Gateway{
		providers:    providers,
		timeout:      timeout,
		contextChars: contextChars,
	}
}

// Configured reports whether at least one provider is available.
func (g *Gateway) Configured() bool { return len(g.providers) > 0 }

// Answer asks a question about documentText. The document is clipped to
// the configured context budget before prompting.
func (g *Gateway) Answer(ctx context.Context, documentText, question string) (answer, provider string, err error) {
	prompt := fmt.Sprintf("Document:\n%s\n\nQuestion: %s", g.clip(documentText), question)
	return g.dispatch(ctx, answerSystemPrompt, prompt)
}

// Restructure asks a provider to reformat extracted text. The input is
// clipped to the context budget.
func (g *Gateway) Restructure(ctx context.Context, text string) (restructured, provider string, err error) {
	return g.dispatch(ctx, restructureSystemPrompt, g.clip(text))
}

// dispatch tries each provider in order within one bounded context. A
// failed or empty response moves on to the next provider; it is never
// passed off as an answer.
func (g *Gateway) dispatch(ctx context.Context, systemPrompt, prompt string) (string, string, error) {
	if !g.Configured() {
		return "", "", fmt.Errorf("%w: set an API key for at least one provider", types.ErrGatewayUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	messages := []types.Message{{Role: "user", Content: prompt}}

	var lastErr error
	for _, provider := range g.providers {
		answer, err := provider.Chat(ctx, systemPrompt, messages)
		if err == nil && answer != "" {
			return answer, provider.Name(), nil
		}
		if err == nil {
			err = errors.New("provider returned an empty answer")
		}
		slog.Warn("AI provider failed, trying next", "provider", provider.Name(), "error", err)
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	return "", "", fmt.Errorf("%w: %v", types.ErrGatewayError, lastErr)
}

func (g *Gateway) clip(text string) string {
	if len(text) <= g.contextChars {
		return text
	}
	return text[:g.contextChars]
}
