package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	config "telar-chat-api/configs"
	"telar-chat-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{Environment: "test", ReasoningProvider: "local"}
}

func TestNew_Local(t *testing.T) {
	gin.SetMode(gin.TestMode)

	a, err := New(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &services.LocalInterpreter{}, a.Interpreter)
	assert.NotNil(t, a.Dispatcher)

	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	result, err := a.Dispatcher.Submit(context.Background(), "hola")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Message.Content)
	assert.Len(t, a.Store.Messages(), 2)
}

func TestNew_SQLiteStateSurvivesRestart(t *testing.T) {
	cfg := testConfig()
	cfg.StateDBPath = filepath.Join(t.TempDir(), "state.db")

	first, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	_, err = first.Dispatcher.Submit(context.Background(), "llévame a inventario")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer second.Close()

	assert.Len(t, second.Store.Messages(), 2)
	assert.Equal(t, "/dashboard/inventory", second.Store.Snapshot().CurrentPage)
}

func TestNewInterpreter_Errors(t *testing.T) {
	prompt := config.DefaultAssistantPrompt()
	cases := []struct {
		name     string
		provider string
		want     string
	}{
		{"unknown provider", "openrouter", "REASONING_PROVIDER"},
		{"azure without endpoint", "azure", "AZURE_OPENAI_ENDPOINT"},
		{"gemini without key", "gemini", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.ReasoningProvider = tc.provider
			_, err := NewInterpreter(context.Background(), cfg, prompt, services.NewMonitoringService(), zap.NewNop())
			require.Error(t, err)
			if tc.want != "" {
				assert.True(t, strings.Contains(err.Error(), tc.want), err.Error())
			}
		})
	}
}

func TestNewInterpreter_Azure(t *testing.T) {
	cfg := testConfig()
	cfg.ReasoningProvider = "azure"
	cfg.AzureOpenAIEndpoint = "https://example.openai.azure.com"
	cfg.AzureOpenAIAPIKey = "key"

	interp, err := NewInterpreter(context.Background(), cfg, config.DefaultAssistantPrompt(), services.NewMonitoringService(), zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &services.ReasoningService{}, interp)
}

func TestNew_BadPromptPath(t *testing.T) {
	cfg := testConfig()
	cfg.AssistantPromptPath = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}
