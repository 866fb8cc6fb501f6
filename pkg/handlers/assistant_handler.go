package handlers

import (
	"errors"
	"net/http"

	"telar-chat-api/pkg/intent"
	"telar-chat-api/pkg/models"
	"telar-chat-api/pkg/services"
	"telar-chat-api/pkg/state"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AssistantHandler はアシスタントパネルの会話を扱います。
type AssistantHandler struct {
	dispatcher *services.Dispatcher
	store      *state.Store
	logger     *zap.Logger
}

// NewAssistantHandler は新しいAssistantHandlerを生成します。
func NewAssistantHandler(dispatcher *services.Dispatcher, store *state.Store, logger *zap.Logger) *AssistantHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssistantHandler{dispatcher: dispatcher, store: store, logger: logger}
}

// PostMessage はユーザーのメッセージを処理します。
// 処理中の失敗はすべてアシスタントの謝罪メッセージとして 200 で返ります。
func (h *AssistantHandler) PostMessage(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "message is required"})
		return
	}

	result, err := h.dispatcher.Submit(c.Request.Context(), req.Message)
	if errors.Is(err, services.ErrEmptyMessage) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if err != nil {
		h.logger.Error("❌ メッセージの処理に失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to process message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// GetMessages は会話ログを返します。
func (h *AssistantHandler) GetMessages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.store.Messages(),
		"typing":  h.store.Typing(),
	})
}

// ClearMessages は会話ログを消去します。
func (h *AssistantHandler) ClearMessages(c *gin.Context) {
	h.store.ClearMessages()
	h.logger.Info("🗑️ 会話ログを消去")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Classify はローカル分類器の結果とカテゴリ別スコアを返します。
func (h *AssistantHandler) Classify(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "message is required"})
		return
	}

	data := gin.H{
		"intent": intent.Classify(req.Message),
		"scores": intent.Score(req.Message),
	}
	if dest, ok := intent.ResolveDestination(req.Message); ok {
		data["destination"] = dest
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}
