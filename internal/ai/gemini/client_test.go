package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/cv-matcher/internal/ai"
)

type fakeChatCreator struct {
	mu    sync.Mutex
	calls []chatCallRecord
	queue map[string][]fakeChatResponse
}

type chatCallRecord struct {
	model  string
	config *genai.GenerateContentConfig
	chat   *fakeChat
}

type fakeChatResponse struct {
	resp *genai.GenerateContentResponse
	err  error
}

type fakeChat struct {
	mu       sync.Mutex
	response fakeChatResponse
	messages []string
}

func (f *fakeChat) SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, part := range parts {
		f.messages = append(f.messages, part.Text)
	}
	return f.response.resp, f.response.err
}

func newFakeChatCreator() *fakeChatCreator {
	return &fakeChatCreator{queue: make(map[string][]fakeChatResponse)}
}

func (f *fakeChatCreator) enqueue(model string, resp *genai.GenerateContentResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue[model] = append(f.queue[model], fakeChatResponse{resp: resp, err: err})
}

func (f *fakeChatCreator) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	responses := f.queue[model]
	if len(responses) == 0 {
		return nil, errors.New("unexpected call")
	}
	res := responses[0]
	f.queue[model] = responses[1:]
	chat := &fakeChat{response: res}
	f.calls = append(f.calls, chatCallRecord{model: model, config: config, chat: chat})
	return chat, nil
}

func TestGeneratorRetriesOnTemporaryError(t *testing.T) {
	originalSleep := sleep
	sleep = func(time.Duration) {}
	defer func() { sleep = originalSleep }()

	chats := newFakeChatCreator()
	tempErr := genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}
	chats.enqueue("gemini-pro", nil, tempErr)
	chats.enqueue("gemini-pro", &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "retry ok"}}},
		}},
	}, nil)

	g := &Generator{
		chats:  chats,
		model:  "gemini-pro",
		retry:  ai.RetryPolicy{MaxAttempts: 2},
		logger: zap.NewNop(),
	}

	output, err := g.GenerateContent(context.Background(), "system", "message")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if output != "retry ok" {
		t.Fatalf("unexpected output: %q", output)
	}

	if len(chats.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(chats.calls))
	}

	for _, call := range chats.calls {
		if call.config == nil || call.config.SystemInstruction == nil {
			t.Fatalf("expected system instruction to be set")
		}
		if got := call.config.SystemInstruction.Parts[0].Text; got != "system" {
			t.Fatalf("unexpected system instruction: %q", got)
		}
		if len(call.chat.messages) != 1 || call.chat.messages[0] != "message" {
			t.Fatalf("unexpected chat message: %+v", call.chat.messages)
		}
	}
}

func TestGeneratorStopsAfterRetriesExhausted(t *testing.T) {
	originalSleep := sleep
	sleep = func(time.Duration) {}
	defer func() { sleep = originalSleep }()

	chats := newFakeChatCreator()
	tempErr := genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}
	chats.enqueue("gemini-pro", nil, tempErr)
	chats.enqueue("gemini-pro", nil, tempErr)

	g := &Generator{
		chats:  chats,
		model:  "gemini-pro",
		retry:  ai.RetryPolicy{MaxAttempts: 2},
		logger: zap.NewNop(),
	}

	_, err := g.GenerateContent(context.Background(), "sys", "msg")
	if err == nil {
		t.Fatal("expected error after retries exhausted")
	}

	if len(chats.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(chats.calls))
	}

	if !errors.Is(err, ai.ErrProvider) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestGeneratorDoesNotRetryOnLongQuotaDelay(t *testing.T) {
	chats := newFakeChatCreator()
	quotaErr := genai.APIError{
		Code:    http.StatusTooManyRequests,
		Status:  "RESOURCE_EXHAUSTED",
		Message: "quota exhausted, retry after 60 seconds",
	}
	chats.enqueue("gemini-pro", nil, quotaErr)

	g := &Generator{
		chats:  chats,
		model:  "gemini-pro",
		retry:  ai.RetryPolicy{MaxAttempts: 3},
		logger: zap.NewNop(),
	}

	_, err := g.GenerateContent(context.Background(), "sys", "msg")
	if err == nil {
		t.Fatal("expected error when quota delay too long")
	}

	if len(chats.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(chats.calls))
	}

	if !errors.Is(err, ai.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
}

func TestGeneratorRetriesPerMinuteLimit(t *testing.T) {
	var slept []time.Duration
	originalSleep := sleep
	sleep = func(d time.Duration) { slept = append(slept, d) }
	defer func() { sleep = originalSleep }()

	chats := newFakeChatCreator()
	chats.enqueue("gemini-pro", nil, genai.APIError{
		Code:    http.StatusTooManyRequests,
		Status:  "RESOURCE_EXHAUSTED",
		Message: "You exceeded your current quota, please check your plan and billing details.",
		Details: []map[string]any{{
			"@type":      "type.googleapis.com/google.rpc.RetryInfo",
			"retryDelay": "2s",
		}},
	})
	chats.enqueue("gemini-pro", &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: `{"ok":true}`}}},
		}},
	}, nil)

	g := &Generator{
		chats:  chats,
		model:  "gemini-pro",
		retry:  ai.RetryPolicy{MaxAttempts: 3},
		logger: zap.NewNop(),
	}

	output, err := g.GenerateContent(context.Background(), "sys", "msg")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if output != `{"ok":true}` {
		t.Fatalf("unexpected output: %q", output)
	}
	if len(chats.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(chats.calls))
	}
	if len(slept) != 1 || slept[0] < 2*time.Second {
		t.Fatalf("expected one wait of at least 2s, got %v", slept)
	}
}

func TestGeneratorRequestsJSONResponses(t *testing.T) {
	chats := newFakeChatCreator()
	chats.enqueue("gemini-pro", &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "  {\"ok\":true}  "}}},
		}},
	}, nil)

	g := &Generator{
		chats:       chats,
		model:       "gemini-pro",
		temperature: 0.2,
		logger:      zap.NewNop(),
	}

	output, err := g.GenerateContent(context.Background(), "", "message")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output != `{"ok":true}` {
		t.Fatalf("unexpected output: %q", output)
	}

	config := chats.calls[0].config
	if config.ResponseMIMEType != "application/json" {
		t.Fatalf("unexpected mime type: %q", config.ResponseMIMEType)
	}
	if config.Temperature == nil || *config.Temperature != 0.2 {
		t.Fatalf("unexpected temperature: %v", config.Temperature)
	}
	if config.SystemInstruction != nil {
		t.Fatal("expected no system instruction for empty system prompt")
	}
}

func TestGeneratorEmptyResponseIsTerminal(t *testing.T) {
	chats := newFakeChatCreator()
	chats.enqueue("gemini-pro", &genai.GenerateContentResponse{}, nil)

	g := &Generator{
		chats:  chats,
		model:  "gemini-pro",
		retry:  ai.RetryPolicy{MaxAttempts: 3},
		logger: zap.NewNop(),
	}

	_, err := g.GenerateContent(context.Background(), "sys", "msg")
	if !errors.Is(err, ai.ErrProvider) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if len(chats.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(chats.calls))
	}
}

func TestGeneratorRejectsEmptyMessage(t *testing.T) {
	g := &Generator{chats: newFakeChatCreator(), model: "gemini-pro"}

	if _, err := g.GenerateContent(context.Background(), "sys", "   "); err == nil {
		t.Fatal("expected error for empty message")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		kind       error
		retryable  bool
		retryAfter time.Duration
	}{
		{
			name: "server error",
			err:  genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"},
			kind: ai.ErrProvider, retryable: true,
		},
		{
			name: "bad request",
			err:  genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"},
			kind: ai.ErrProvider,
		},
		{
			name: "rate limited with retry info",
			err: &genai.APIError{
				Code:   http.StatusTooManyRequests,
				Status: "RESOURCE_EXHAUSTED",
				Details: []map[string]any{{
					"@type":      "type.googleapis.com/google.rpc.RetryInfo",
					"retryDelay": "7s",
				}},
			},
			kind: ai.ErrRateLimited, retryable: true, retryAfter: 7 * time.Second,
		},
		{
			name: "rate limited with message hint",
			err:  genai.APIError{Code: http.StatusTooManyRequests, Message: "please retry in 2.5s"},
			kind: ai.ErrRateLimited, retryable: true, retryAfter: 2500 * time.Millisecond,
		},
		{
			name: "per-minute limit mentioning billing",
			err: genai.APIError{
				Code:    http.StatusTooManyRequests,
				Status:  "RESOURCE_EXHAUSTED",
				Message: "You exceeded your current quota, please check your plan and billing details.",
				Details: []map[string]any{{
					"@type":      "type.googleapis.com/google.rpc.RetryInfo",
					"retryDelay": "7s",
				}},
			},
			kind: ai.ErrRateLimited, retryable: true, retryAfter: 7 * time.Second,
		},
		{
			name: "billing exhausted without retry info",
			err:  genai.APIError{Code: http.StatusTooManyRequests, Message: "You exceeded your current quota, please check your plan and billing details."},
			kind: ai.ErrQuotaExceeded,
		},
		{
			name: "transport failure",
			err:  errors.New("connection reset by peer"),
			kind: ai.ErrProvider, retryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if got.Kind != tt.kind {
				t.Fatalf("kind = %v, want %v", got.Kind, tt.kind)
			}
			if got.Retryable != tt.retryable {
				t.Fatalf("retryable = %v, want %v", got.Retryable, tt.retryable)
			}
			if got.RetryAfter != tt.retryAfter {
				t.Fatalf("retryAfter = %s, want %s", got.RetryAfter, tt.retryAfter)
			}
		})
	}
}
