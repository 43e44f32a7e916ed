package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vominhhuy13101999/agent-test/framework"
)

func TestClientGenerateDecodesResponse(t *testing.T) {
	var gotPath string
	var gotPayload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"hello there","done_reason":"stop"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "llama3.2")
	resp, err := client.Generate(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello there", resp.Text)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, "/api/generate", gotPath)
	assert.Equal(t, "llama3.2", gotPayload["model"])
	assert.Equal(t, false, gotPayload["stream"])
}

func TestClientChatDecodesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"pong"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "llama3.2")
	resp, err := client.Chat(context.Background(), []framework.Message{{Role: "user", Content: "ping"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Text)
}

func TestClientClassifiesRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "llama3.2")
	_, err := client.Generate(context.Background(), "hi", nil)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestClientClassifiesResourceExhaustedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "RESOURCE_EXHAUSTED: daily quota", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "llama3.2")
	_, err := client.Generate(context.Background(), "hi", nil)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestClientClassifiesInvalidArgument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad prompt", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "llama3.2")
	_, err := client.Generate(context.Background(), "hi", nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestClientClassifiesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "llama3.2")
	_, err := client.Generate(context.Background(), "hi", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClientDeadlineMapsToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "llama3.2")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.Generate(ctx, "hi", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClientSendsAPIKey(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"response":"ok"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "llama3.2")
	client.APIKey = "secret"
	_, err := client.Generate(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", gotAuth)
}
