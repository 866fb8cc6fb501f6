package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション設定です。
type Config struct {
	Port          string
	Environment   string
	APIKey        string
	AdminUsername string
	AdminPassword string
	LogLevel      string

	ReasoningProvider   string
	ReasoningTimeout    time.Duration
	ReasoningMaxRetries int

	GeminiAPIKey string
	GeminiModel  string

	AzureOpenAIEndpoint       string
	AzureOpenAIAPIKey         string
	AzureOpenAIAPIVersion     string
	AzureOpenAIDeploymentName string

	StateDBPath           string
	FilterNavigationDelay time.Duration
	AssistantPromptPath   string
}

// LoadConfig は環境変数から設定を読み込みます。
func LoadConfig() *Config {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		APIKey:        getEnv("API_KEY", ""),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		ReasoningTimeout:    getDuration("REASONING_TIMEOUT", 30*time.Second),
		ReasoningMaxRetries: getInt("REASONING_MAX_RETRIES", 1),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		AzureOpenAIEndpoint:       getEnv("AZURE_OPENAI_ENDPOINT", ""),
		AzureOpenAIAPIKey:         getEnv("AZURE_OPENAI_API_KEY", ""),
		AzureOpenAIAPIVersion:     getEnv("AZURE_OPENAI_API_VERSION", "2023-12-01-preview"),
		AzureOpenAIDeploymentName: getEnv("AZURE_OPENAI_DEPLOYMENT_NAME", "gpt-4o-mini"),

		StateDBPath:           getEnv("STATE_DB_PATH", ""),
		FilterNavigationDelay: getDuration("FILTER_NAVIGATION_DELAY", 500*time.Millisecond),
		AssistantPromptPath:   getEnv("ASSISTANT_PROMPT_PATH", ""),
	}

	// プロバイダ未指定時は Gemini キーの有無で決める
	cfg.ReasoningProvider = strings.ToLower(getEnv("REASONING_PROVIDER", ""))
	if cfg.ReasoningProvider == "" {
		cfg.ReasoningProvider = "local"
		if cfg.GeminiAPIKey != "" {
			cfg.ReasoningProvider = "gemini"
		}
	}
	return cfg
}

// IsDevelopment は開発環境かどうかを返します。
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "test"
}

// getEnv は環境変数を読み、未設定なら既定値を返します。
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d >= 0 {
		return d
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n >= 0 {
		return n
	}
	return defaultValue
}
