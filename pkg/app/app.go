// Package app は設定からサービス一式を組み立てます。
// cmd/server、cmd/telar、api のエントリーポイントで共有されます。
package app

import (
	"context"
	"fmt"

	config "telar-chat-api/configs"
	"telar-chat-api/pkg/azure"
	"telar-chat-api/pkg/gemini"
	"telar-chat-api/pkg/handlers"
	"telar-chat-api/pkg/realtime"
	"telar-chat-api/pkg/reasoning"
	"telar-chat-api/pkg/services"
	"telar-chat-api/pkg/state"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// App は組み立て済みのサービス群です。
type App struct {
	Config      *config.Config
	Logger      *zap.Logger
	Prompt      *config.AssistantPrompt
	Monitoring  *services.MonitoringService
	Data        *services.DataService
	Store       *state.Store
	Hub         *realtime.Hub
	Interpreter services.Interpreter
	Dispatcher  *services.Dispatcher

	closers []func() error
}

// New は設定に従って App を生成します。
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	prompt, err := config.LoadAssistantPrompt(cfg.AssistantPromptPath)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:     cfg,
		Logger:     logger,
		Prompt:     prompt,
		Monitoring: services.NewMonitoringService(),
		Data:       services.NewDataService(),
		Hub:        realtime.NewHub(logger.Named("realtime")),
	}

	var persister state.Persister
	if cfg.StateDBPath != "" {
		p, err := state.NewSQLitePersister(cfg.StateDBPath)
		if err != nil {
			return nil, fmt.Errorf("UI状態DBの初期化に失敗: %w", err)
		}
		a.closers = append(a.closers, p.Close)
		persister = p
		logger.Info("💾 UI状態を SQLite に保存します", zap.String("path", cfg.StateDBPath))
	}
	a.Store = state.NewStore(ctx, persister, logger.Named("state"))

	a.Interpreter, err = NewInterpreter(ctx, cfg, prompt, a.Monitoring, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Dispatcher = services.NewDispatcher(a.Interpreter, a.Data, a.Store, prompt, services.DispatcherOptions{
		Navigator:   a.Hub,
		Monitoring:  a.Monitoring,
		Logger:      logger.Named("dispatcher"),
		FilterDelay: cfg.FilterNavigationDelay,
	})
	return a, nil
}

// NewInterpreter は REASONING_PROVIDER に対応する Interpreter を返します。
func NewInterpreter(ctx context.Context, cfg *config.Config, prompt *config.AssistantPrompt, monitoring *services.MonitoringService, logger *zap.Logger) (services.Interpreter, error) {
	var r reasoning.Reasoner
	switch cfg.ReasoningProvider {
	case "local":
		logger.Info("🧭 ローカル解釈モードで起動します")
		return services.NewLocalInterpreter(prompt), nil
	case "gemini":
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		r = client
	case "azure":
		if cfg.AzureOpenAIEndpoint == "" || cfg.AzureOpenAIAPIKey == "" {
			return nil, fmt.Errorf("AZURE_OPENAI_ENDPOINT と AZURE_OPENAI_API_KEY が必要です")
		}
		r = azure.NewOpenAIClient(cfg.AzureOpenAIEndpoint, cfg.AzureOpenAIAPIKey, cfg.AzureOpenAIAPIVersion, cfg.AzureOpenAIDeploymentName)
	default:
		return nil, fmt.Errorf("未知の REASONING_PROVIDER です: %q", cfg.ReasoningProvider)
	}

	logger.Info("🤖 推論サービスを使用します", zap.String("provider", cfg.ReasoningProvider))
	retrying := reasoning.NewRetrying(r, cfg.ReasoningTimeout, cfg.ReasoningMaxRetries, logger.Named("reasoning"))
	return services.NewReasoningService(retrying, prompt, monitoring, logger.Named("reasoning")), nil
}

// Router は HTTP ルーターを返します。
func (a *App) Router() *gin.Engine {
	return handlers.NewRouter(handlers.Dependencies{
		Config:     a.Config,
		Logger:     a.Logger,
		Monitoring: a.Monitoring,
		Dispatcher: a.Dispatcher,
		Data:       a.Data,
		Store:      a.Store,
		Hub:        a.Hub,
	})
}

// Close は保持しているリソースを解放します。
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
