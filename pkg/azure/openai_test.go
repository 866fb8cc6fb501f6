package azure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"telar-chat-api/pkg/reasoning"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/chat/chat/completions", r.URL.Path)
		assert.Equal(t, "2024-02-01", r.URL.Query().Get("api-version"))
		assert.Equal(t, "secret", r.Header.Get("api-key"))

		var req ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "hola", req.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"{\"action\":\"chat\"}"}}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL+"/", "secret", "2024-02-01", "chat")
	reply, err := client.Generate(context.Background(), "Eres un asistente", "hola")
	require.NoError(t, err)
	assert.Equal(t, `{"action":"chat"}`, reply)
}

func TestGenerate_StatusClassification(t *testing.T) {
	tests := []struct {
		status    int
		transient bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusBadGateway, true},
		{http.StatusUnauthorized, false},
	}
	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(`{"error":{"code":"x","message":"nope"}}`))
		}))

		client := NewOpenAIClient(server.URL, "secret", "2024-02-01", "chat")
		_, err := client.Generate(context.Background(), "sys", "hola")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nope")
		assert.Equal(t, tt.transient, reasoning.IsTransient(err), tt.status)
		server.Close()
	}
}

func TestGenerate_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL, "secret", "2024-02-01", "chat")
	_, err := client.Generate(context.Background(), "sys", "hola")
	assert.ErrorIs(t, err, reasoning.ErrEmptyReply)
}

func TestGenerate_MissingAPIKey(t *testing.T) {
	client := NewOpenAIClient("http://localhost", "", "2024-02-01", "chat")
	_, err := client.Generate(context.Background(), "sys", "hola")
	assert.Error(t, err)
	assert.False(t, reasoning.IsTransient(err))
}
