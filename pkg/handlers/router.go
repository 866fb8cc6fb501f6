package handlers

import (
	"net/http"

	config "telar-chat-api/configs"
	"telar-chat-api/pkg/realtime"
	"telar-chat-api/pkg/services"
	"telar-chat-api/pkg/state"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies はルーターが使うサービス群です。Hub は nil でも構いません。
type Dependencies struct {
	Config     *config.Config
	Logger     *zap.Logger
	Monitoring *services.MonitoringService
	Dispatcher *services.Dispatcher
	Data       *services.DataService
	Store      *state.Store
	Hub        *realtime.Hub
}

// APIKeyAuth は X-API-KEY ヘッダーを検証します。キー未設定の場合は認証を行いません。
func APIKeyAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}
		if c.GetHeader("X-API-KEY") != apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// NewRouter はすべてのエンドポイントを登録した gin.Engine を返します。
func NewRouter(deps Dependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if !deps.Config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(deps.Monitoring.LoggingMiddleware())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "X-API-KEY"},
	}))

	assistantHandler := NewAssistantHandler(deps.Dispatcher, deps.Store, logger)
	dataHandler := NewDataHandler(deps.Data, logger)
	stateHandler := NewStateHandler(deps.Store)
	adminHandler := NewAdminHandler(deps.Config, logger)
	monitoringHandler := NewMonitoringHandler(deps.Monitoring)

	// ヘルスチェックとメトリクス
	r.GET("/health", HealthCheck)
	r.GET("/metrics", monitoringHandler.Metrics)
	if deps.Hub != nil {
		r.GET("/ws", deps.Hub.HandleWebSocket)
	}

	v1 := r.Group("/api/v1")
	v1.Use(APIKeyAuth(deps.Config.APIKey), MaintenanceMiddleware())
	{
		assistant := v1.Group("/assistant")
		{
			assistant.POST("/messages", assistantHandler.PostMessage)
			assistant.GET("/messages", assistantHandler.GetMessages)
			assistant.DELETE("/messages", assistantHandler.ClearMessages)
			assistant.POST("/classify", assistantHandler.Classify)
		}

		v1.GET("/inventory", dataHandler.GetInventory)
		v1.GET("/sales", dataHandler.GetSales)
		v1.GET("/metrics/business", dataHandler.GetBusinessMetrics)
		v1.GET("/reports/:type", dataHandler.GetReport)
		v1.POST("/charts", dataHandler.PostChart)

		st := v1.Group("/state")
		{
			st.GET("", stateHandler.GetState)
			st.PATCH("", stateHandler.PatchState)
			st.POST("/theme/toggle", stateHandler.ToggleTheme)
		}

		// モニタリングAPI
		v1.GET("/monitoring/logs", monitoringHandler.GetLogs)

		// 管理者向けAPI
		admin := v1.Group("/admin")
		{
			admin.GET("/health-status", adminHandler.GetHealthStatus)
			admin.POST("/maintenance/start", adminHandler.StartMaintenance)
			admin.POST("/maintenance/stop", adminHandler.StopMaintenance)
		}
	}
	return r
}
