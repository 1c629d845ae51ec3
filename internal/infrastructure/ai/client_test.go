package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/doeshing/bootlens/internal/domain"
	"github.com/doeshing/bootlens/internal/pkg/logger"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(domain.ModelSettings{
		Endpoint:       server.URL,
		ModelID:        "test/model",
		APIKey:         "sk-test",
		MaxTokens:      512,
		TimeoutSeconds: 5,
	}, logger.NewStd(false))
}

func completionWith(content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func TestClientExtract(t *testing.T) {
	var gotAuth string
	var gotReq chatCompletionRequest
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotReq)
		completionWith(goodAnalysis)(w, r)
	})

	analysis, err := client.Extract(context.Background(), domain.LogSnapshot{Text: "kernel: boot"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(analysis.Issues) != 2 {
		t.Fatalf("got %d issues, want 2", len(analysis.Issues))
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("authorization header = %q", gotAuth)
	}
	if gotReq.Model != "test/model" {
		t.Errorf("model = %q", gotReq.Model)
	}
	if len(gotReq.Messages) < 2 {
		t.Fatalf("expected system + user messages, got %d", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != "system" {
		t.Errorf("first message role = %q, want system", gotReq.Messages[0].Role)
	}
}

func TestClientExtractUnauthorized(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid key", http.StatusUnauthorized)
	})

	_, err := client.Extract(context.Background(), domain.LogSnapshot{Text: "x"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
}

func TestClientExtractServerError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream overloaded", http.StatusBadGateway)
	})

	_, err := client.Extract(context.Background(), domain.LogSnapshot{Text: "x"})
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("error = %v, want ErrTransport", err)
	}
}

func TestClientExtractNonJSONCompletion(t *testing.T) {
	client := testClient(t, completionWith("I could not find any issues, sorry!"))

	_, err := client.Extract(context.Background(), domain.LogSnapshot{Text: "x"})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("error = %v, want ErrMalformedResponse", err)
	}
}

func TestClientExtractEmptyChoices(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	})

	_, err := client.Extract(context.Background(), domain.LogSnapshot{Text: "x"})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("error = %v, want ErrMalformedResponse", err)
	}
}

func TestClientMissingKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	client := NewClient(domain.ModelSettings{
		Endpoint: "http://127.0.0.1:1",
		ModelID:  "test/model",
	}, logger.NewStd(false))

	_, err := client.Extract(context.Background(), domain.LogSnapshot{Text: "x"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized before any request", err)
	}
}

func TestClientKeyFromEnvVar(t *testing.T) {
	t.Setenv("MODEL_TOKEN", "env-key")
	client := NewClient(domain.ModelSettings{
		Endpoint:   "http://127.0.0.1:1",
		ModelID:    "test/model",
		AuthEnvVar: "MODEL_TOKEN",
	}, logger.NewStd(false))

	if client.apiKey != "env-key" {
		t.Fatalf("apiKey = %q, want value from configured env var", client.apiKey)
	}
}

func TestClientChatThreadsHistory(t *testing.T) {
	var gotReq chatCompletionRequest
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		completionWith("The unit failed because of a missing dependency.")(w, r)
	})

	history := []domain.ChatTurn{
		{Role: "user", Content: "what failed?"},
		{Role: "assistant", Content: "NetworkManager."},
	}
	reply, err := client.Chat(context.Background(), domain.LogSnapshot{Text: "kernel: boot"}, nil, history, "why?")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply == "" {
		t.Fatal("empty reply")
	}

	last := gotReq.Messages[len(gotReq.Messages)-1]
	if last.Role != "user" || last.Content != "why?" {
		t.Fatalf("last message = %+v, want the verbatim follow-up question", last)
	}
	var sawHistory bool
	for _, m := range gotReq.Messages {
		if m.Content == "NetworkManager." {
			sawHistory = true
		}
	}
	if !sawHistory {
		t.Fatal("prior turns not forwarded to the model")
	}
}
