package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truthtracker/internal/config"
)

func TestOpenAIClientComplete(t *testing.T) {
	t.Parallel()

	var auth, model string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		var payload struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		model = payload.Model
		require.Len(t, payload.Messages, 2)
		assert.Equal(t, "system", payload.Messages[0].Role)
		assert.Equal(t, "user", payload.Messages[1].Role)

		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "  answer text  "}}]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(config.OpenAIConfig{
		Endpoint: srv.URL,
		Model:    "gpt-4o-mini",
		APIKey:   "sk-test",
	})

	got, err := client.Complete(context.Background(), "be terse", "say hi")
	require.NoError(t, err)
	assert.Equal(t, "answer text", got)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "gpt-4o-mini", model)
}

func TestOpenAIClientUpstreamError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewOpenAIClient(config.OpenAIConfig{Endpoint: srv.URL, Model: "m", APIKey: "k"})
	_, err := client.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestOpenAIClientMisconfigured(t *testing.T) {
	t.Parallel()

	client := NewOpenAIClient(config.OpenAIConfig{})
	_, err := client.Complete(context.Background(), "s", "u")
	require.Error(t, err)
}

func TestOpenAIClientNoChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(config.OpenAIConfig{Endpoint: srv.URL, Model: "m", APIKey: "k"})
	_, err := client.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
