package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/docqa/docqa-be/types"
)

// stubProvider is a canned AIService for gateway dispatch tests.
type stubProvider struct {
	name   string
	answer string
	err    error
	calls  int
	prompt string
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Chat(ctx context.Context, systemPrompt string, messages []types.Message) (string, error) {
	s.calls++
	if len(messages) > 0 {
		s.prompt = messages[len(messages)-1].Content
	}
	return s.answer, s.err
}

func TestGatewayAnswer_FirstProviderWins(t *testing.T) {
	first := &stubProvider{name: "first", answer: "42"}
	second := &stubProvider{name: "second", answer: "never"}
	g := NewGateway(GatewayConfig{}, first, second)

	answer, provider, err := g.Answer(context.Background(), "The answer is 42.", "What is the answer?")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if answer != "42" || provider != "first" {
		t.Errorf("Answer = %q from %q, want 42 from first", answer, provider)
	}
	if second.calls != 0 {
		t.Error("Second provider was called even though the first succeeded")
	}
	if !strings.Contains(first.prompt, "The answer is 42.") || !strings.Contains(first.prompt, "What is the answer?") {
		t.Errorf("Prompt %q is missing document or question", first.prompt)
	}
}

func TestGatewayAnswer_FallsToNextProvider(t *testing.T) {
	tests := []struct {
		name  string
		first *stubProvider
	}{
		{"on error", &stubProvider{name: "broken", err: errors.New("connection refused")}},
		{"on empty answer", &stubProvider{name: "silent", answer: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			second := &stubProvider{name: "backup", answer: "from backup"}
			g := NewGateway(GatewayConfig{}, tt.first, second)

			answer, provider, err := g.Answer(context.Background(), "doc", "question")
			if err != nil {
				t.Fatalf("Answer failed: %v", err)
			}
			if answer != "from backup" || provider != "backup" {
				t.Errorf("Answer = %q from %q, want fallback result", answer, provider)
			}
		})
	}
}

func TestGatewayAnswer_AllProvidersFail(t *testing.T) {
	g := NewGateway(GatewayConfig{},
		&stubProvider{name: "a", err: errors.New("down")},
		&stubProvider{name: "b", answer: ""},
	)

	_, _, err := g.Answer(context.Background(), "doc", "question")
	if !errors.Is(err, types.ErrGatewayError) {
		t.Errorf("error = %v, want ErrGatewayError", err)
	}
}

func TestGatewayAnswer_NoProviders(t *testing.T) {
	g := NewGateway(GatewayConfig{})
	if g.Configured() {
		t.Error("Configured() = true with no providers")
	}

	_, _, err := g.Answer(context.Background(), "doc", "question")
	if !errors.Is(err, types.ErrGatewayUnavailable) {
		t.Errorf("error = %v, want ErrGatewayUnavailable", err)
	}
}

func TestGatewayAnswer_ClipsDocumentContext(t *testing.T) {
	provider := &stubProvider{name: "p", answer: "ok"}
	g := NewGateway(GatewayConfig{ContextChars: 100}, provider)

	longDoc := strings.Repeat("a", 500)
	if _, _, err := g.Answer(context.Background(), longDoc, "q"); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if strings.Count(provider.prompt, "a") > 100 {
		t.Errorf("Prompt carries %d document chars, want at most 100", strings.Count(provider.prompt, "a"))
	}
}

func TestGatewayRestructure(t *testing.T) {
	provider := &stubProvider{name: "p", answer: "# Heading\n\nBody."}
	g := NewGateway(GatewayConfig{}, provider)

	restructured, name, err := g.Restructure(context.Background(), "heading body")
	if err != nil {
		t.Fatalf("Restructure failed: %v", err)
	}
	if restructured != "# Heading\n\nBody." || name != "p" {
		t.Errorf("Restructure = %q from %q", restructured, name)
	}
	if provider.prompt != "heading body" {
		t.Errorf("Prompt = %q, want the raw text", provider.prompt)
	}
}

func TestGatewayDispatch_StopsAfterTimeout(t *testing.T) {
	slow := &stubProvider{name: "slow", err: context.DeadlineExceeded}
	next := &stubProvider{name: "next", answer: "late"}
	g := NewGateway(GatewayConfig{Timeout: time.Nanosecond}, slow, next)

	_, _, err := g.Answer(context.Background(), "doc", "q")
	if !errors.Is(err, types.ErrGatewayError) {
		t.Fatalf("error = %v, want ErrGatewayError", err)
	}
	if next.calls != 0 {
		t.Error("Gateway kept trying providers after the shared deadline expired")
	}
}

// chatCompletionStub speaks just enough of the OpenAI wire format for the
// client to parse.
func chatCompletionStub(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(status)
		if status != http.StatusOK {
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		})
	}))
}

func TestOpenAIService_Chat(t *testing.T) {
	srv := chatCompletionStub(t, http.StatusOK, "Paris")
	defer srv.Close()

	svc := NewOpenAIService(ProviderConfig{
		APIKey:   "test-key",
		Endpoint: srv.URL + "/v1",
		Model:    "gpt-4o-mini",
	})

	answer, err := svc.Chat(context.Background(), "You answer briefly.", []types.Message{
		{Role: "user", Content: "Capital of France?"},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if answer != "Paris" {
		t.Errorf("Chat = %q, want Paris", answer)
	}
}

func TestOpenAIService_ChatServerError(t *testing.T) {
	srv := chatCompletionStub(t, http.StatusInternalServerError, "")
	defer srv.Close()

	svc := NewOpenAIService(ProviderConfig{APIKey: "k", Endpoint: srv.URL + "/v1", Model: "m"})
	if _, err := svc.Chat(context.Background(), "", []types.Message{{Content: "hi"}}); err == nil {
		t.Error("Chat succeeded against a failing endpoint")
	}
}

func TestOpenAIService_ChatEmptyContent(t *testing.T) {
	srv := chatCompletionStub(t, http.StatusOK, "")
	defer srv.Close()

	svc := NewOpenAIService(ProviderConfig{APIKey: "k", Endpoint: srv.URL + "/v1", Model: "m"})
	if _, err := svc.Chat(context.Background(), "", []types.Message{{Content: "hi"}}); err == nil {
		t.Error("Chat returned success for an empty completion")
	}
}
