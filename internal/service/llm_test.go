package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLLM(timeout time.Duration) LLMService {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewLLMService(logger, timeout)
}

func TestLLMService_Generate(t *testing.T) {
	t.Run("Returns the completion text on success", func(t *testing.T) {
		// Given: an endpoint that echoes a canned completion
		var received GenerateRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			_ = json.NewEncoder(w).Encode(GenerateResponse{Response: "e4\nReasoning: center"})
		}))
		defer server.Close()

		// When: generating
		llm := newTestLLM(time.Second)
		response, err := llm.Generate(context.Background(), server.URL, "your move")

		// Then: the prompt is sent and the raw text comes back
		require.NoError(t, err)
		assert.Equal(t, "your move", received.Prompt)
		assert.Equal(t, "e4\nReasoning: center", response)
	})

	t.Run("Fails on a non-2xx status", func(t *testing.T) {
		// Given: an endpoint that rejects the request
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer server.Close()

		llm := newTestLLM(time.Second)
		_, err := llm.Generate(context.Background(), server.URL, "your move")

		assert.ErrorIs(t, err, ErrUnexpectedStatus)
	})

	t.Run("Fails on an empty response field", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"something":"else"}`))
		}))
		defer server.Close()

		llm := newTestLLM(time.Second)
		_, err := llm.Generate(context.Background(), server.URL, "your move")

		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("Aborts a hanging endpoint at the request timeout", func(t *testing.T) {
		// Given: an endpoint that never answers in time
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(5 * time.Second):
			case <-r.Context().Done():
			}
		}))
		defer server.Close()

		// When: generating with a short timeout
		llm := newTestLLM(50 * time.Millisecond)
		start := time.Now()
		_, err := llm.Generate(context.Background(), server.URL, "your move")

		// Then: the call fails quickly instead of hanging the game loop
		require.Error(t, err)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("Fails on an unreachable endpoint", func(t *testing.T) {
		llm := newTestLLM(time.Second)

		_, err := llm.Generate(context.Background(), "http://127.0.0.1:1/generate", "your move")

		assert.Error(t, err)
	})
}
