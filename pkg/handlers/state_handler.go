package handlers

import (
	"net/http"

	"telar-chat-api/pkg/state"

	"github.com/gin-gonic/gin"
)

// StateHandler はUI状態の読み書きです。会話ログはアシスタント API からのみ変更されます。
type StateHandler struct {
	store *state.Store
}

// NewStateHandler は新しいStateHandlerを生成します。
func NewStateHandler(store *state.Store) *StateHandler {
	return &StateHandler{store: store}
}

// GetState は現在のUI状態を返します。
func (h *StateHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.store.Snapshot(), "typing": h.store.Typing()})
}

// PatchState は指定されたフィールドだけを更新します。
func (h *StateHandler) PatchState(c *gin.Context) {
	var patch state.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid state patch"})
		return
	}
	if patch.Theme != nil && *patch.Theme != state.ThemeLight && *patch.Theme != state.ThemeDark {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "theme must be light or dark"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.store.Apply(patch)})
}

// ToggleTheme はテーマを切り替えます。
func (h *StateHandler) ToggleTheme(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "theme": h.store.ToggleTheme()})
}
