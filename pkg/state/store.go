// Package state はダッシュボードのプロセス共有UI状態を保持します。
package state

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"telar-chat-api/pkg/models"
)

// Theme は画面テーマです。
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Snapshot は永続化されるUI状態です。入力中フラグは含みません。
type Snapshot struct {
	IsAuthenticated bool                         `json:"isAuthenticated"`
	Theme           Theme                        `json:"theme"`
	SidebarOpen     bool                         `json:"sidebarOpen"`
	ChatOpen        bool                         `json:"chatOpen"`
	CurrentPage     string                       `json:"currentPage"`
	InventoryFilter string                       `json:"inventoryFilter"`
	ChatMessages    []models.ConversationMessage `json:"chatMessages"`
}

func (s Snapshot) clone() Snapshot {
	s.ChatMessages = append([]models.ConversationMessage(nil), s.ChatMessages...)
	if s.ChatMessages == nil {
		s.ChatMessages = []models.ConversationMessage{}
	}
	return s
}

// DefaultSnapshot は初回起動時の状態です。
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Theme:        ThemeLight,
		SidebarOpen:  true,
		CurrentPage:  "/dashboard",
		ChatMessages: []models.ConversationMessage{},
	}
}

// Patch は部分更新です。nil のフィールドは変更しません。
type Patch struct {
	IsAuthenticated *bool   `json:"isAuthenticated,omitempty"`
	Theme           *Theme  `json:"theme,omitempty"`
	SidebarOpen     *bool   `json:"sidebarOpen,omitempty"`
	ChatOpen        *bool   `json:"chatOpen,omitempty"`
	CurrentPage     *string `json:"currentPage,omitempty"`
	InventoryFilter *string `json:"inventoryFilter,omitempty"`
}

// Store はUI状態の唯一の保持者です。
// 変更のたびに Persister へ保存しますが、保存の失敗はログに記録するだけです。
type Store struct {
	mu        sync.RWMutex
	snap      Snapshot
	typing    bool
	turn      string
	persister Persister
	logger    *zap.Logger
}

// NewStore は Persister から状態を復元して Store を生成します。
func NewStore(ctx context.Context, persister Persister, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if persister == nil {
		persister = NewMemoryPersister()
	}
	s := &Store{snap: DefaultSnapshot(), persister: persister, logger: logger}

	snap, err := persister.Load(ctx)
	switch {
	case err == nil:
		if snap.Theme == "" {
			snap.Theme = ThemeLight
		}
		s.snap = snap.clone()
		logger.Info("💾 UI状態を復元しました", zap.Int("messages", len(snap.ChatMessages)))
	case errors.Is(err, ErrNoSnapshot):
	default:
		logger.Warn("⚠️ UI状態の復元に失敗しました。既定値で起動します", zap.Error(err))
	}
	return s
}

// Snapshot は現在の状態のコピーを返します。
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

// update は書き込みロック下で fn を実行し、結果を保存します。
func (s *Store) update(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.snap)
	s.persistLocked()
}

func (s *Store) persistLocked() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.persister.Save(ctx, s.snap.clone()); err != nil {
		s.logger.Warn("⚠️ UI状態の保存に失敗しました", zap.Error(err))
	}
}

// Apply は部分更新を反映します。
func (s *Store) Apply(p Patch) Snapshot {
	s.update(func(snap *Snapshot) {
		if p.IsAuthenticated != nil {
			snap.IsAuthenticated = *p.IsAuthenticated
		}
		if p.Theme != nil {
			snap.Theme = *p.Theme
		}
		if p.SidebarOpen != nil {
			snap.SidebarOpen = *p.SidebarOpen
		}
		if p.ChatOpen != nil {
			snap.ChatOpen = *p.ChatOpen
		}
		if p.CurrentPage != nil {
			snap.CurrentPage = *p.CurrentPage
		}
		if p.InventoryFilter != nil {
			snap.InventoryFilter = *p.InventoryFilter
		}
	})
	return s.Snapshot()
}

// ToggleTheme はライトとダークを切り替えます。
func (s *Store) ToggleTheme() Theme {
	var t Theme
	s.update(func(snap *Snapshot) {
		if snap.Theme == ThemeDark {
			snap.Theme = ThemeLight
		} else {
			snap.Theme = ThemeDark
		}
		t = snap.Theme
	})
	return t
}

// SetInventoryFilter は在庫画面の絞り込み文字列を設定します。
func (s *Store) SetInventoryFilter(filter string) {
	s.update(func(snap *Snapshot) { snap.InventoryFilter = filter })
}

// InventoryFilter は在庫画面の絞り込み文字列を返します。
func (s *Store) InventoryFilter() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.InventoryFilter
}

// SetCurrentPage は表示中のページを記録します。
func (s *Store) SetCurrentPage(path string) {
	s.update(func(snap *Snapshot) { snap.CurrentPage = path })
}

// AppendMessage は会話ログの末尾にメッセージを追加します。
func (s *Store) AppendMessage(msg models.ConversationMessage) {
	s.update(func(snap *Snapshot) { snap.ChatMessages = append(snap.ChatMessages, msg) })
}

// Messages は会話ログのコピーを返します。
func (s *Store) Messages() []models.ConversationMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ConversationMessage{}, s.snap.ChatMessages...)
}

// ClearMessages は会話ログを消去します。ユーザー操作からのみ呼ばれます。
func (s *Store) ClearMessages() {
	s.update(func(snap *Snapshot) { snap.ChatMessages = []models.ConversationMessage{} })
}

// BeginTurn は入力中フラグを立て、このターンの相関トークンを返します。
func (s *Store) BeginTurn() string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turn = token
	s.typing = true
	return token
}

// EndTurn は token が最新のターンの場合だけ入力中フラグを下ろします。
func (s *Store) EndTurn(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.turn {
		return false
	}
	s.typing = false
	return true
}

// Typing は入力中フラグを返します。
func (s *Store) Typing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.typing
}
