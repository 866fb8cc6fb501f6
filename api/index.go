package handler

import (
	"context"
	"log"
	"net/http"
	"sync"

	config "telar-chat-api/configs"
	"telar-chat-api/pkg/app"
	"telar-chat-api/pkg/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	engine *gin.Engine
	once   sync.Once
)

// setupApp はGinアプリケーションを初期化します。
// サーバーレス環境では、リクエストごとに初期化が走らないようsync.Onceで一度だけ実行します。
func setupApp() *gin.Engine {
	once.Do(func() {
		// .envファイルはVercelの環境変数設定から読み込まれるため、ここではgodotenvを呼び出しません。
		cfg := config.LoadConfig()

		logger, err := logging.New(cfg.Environment, cfg.LogLevel)
		if err != nil {
			log.Printf("⚠️ [setupApp] ロガーの初期化に失敗: %v", err)
			logger = zap.NewNop()
		}

		a, err := app.New(context.Background(), cfg, logger)
		if err != nil {
			logger.Error("❌ [setupApp] アプリケーションの初期化に失敗", zap.Error(err))
			engine = gin.New()
			engine.NoRoute(func(c *gin.Context) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "service not configured"})
			})
			return
		}

		go a.Hub.Run(context.Background())
		engine = a.Router()
		logger.Info("🟢 [setupApp] Gin application initialized", zap.String("provider", cfg.ReasoningProvider))
	})
	return engine
}

// Handler はVercelからのすべてのリクエストを処理するエントリーポイントです。
func Handler(w http.ResponseWriter, r *http.Request) {
	setupApp().ServeHTTP(w, r)
}
