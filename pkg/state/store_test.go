package state

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"telar-chat-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPersister struct{}

func (failingPersister) Load(ctx context.Context) (Snapshot, error) {
	return Snapshot{}, errors.New("disk gone")
}

func (failingPersister) Save(ctx context.Context, snap Snapshot) error {
	return errors.New("disk gone")
}

func message(id string) models.ConversationMessage {
	return models.ConversationMessage{ID: id, Role: models.RoleUser, Content: "hola", Timestamp: time.Unix(0, 0).UTC()}
}

func TestStore_Defaults(t *testing.T) {
	s := NewStore(context.Background(), nil, nil)
	snap := s.Snapshot()
	assert.Equal(t, ThemeLight, snap.Theme)
	assert.Equal(t, "/dashboard", snap.CurrentPage)
	assert.NotNil(t, snap.ChatMessages)
	assert.False(t, s.Typing())
}

func TestStore_AppendAndClear(t *testing.T) {
	p := NewMemoryPersister()
	s := NewStore(context.Background(), p, nil)

	s.AppendMessage(message("1"))
	s.AppendMessage(message("2"))
	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "1", msgs[0].ID)

	// 返却値の変更は内部状態に影響しない
	msgs[0].Content = "cambiado"
	assert.Equal(t, "hola", s.Messages()[0].Content)

	s.ClearMessages()
	assert.Empty(t, s.Messages())
	assert.Equal(t, 3, p.Saves())
}

func TestStore_ApplyAndToggle(t *testing.T) {
	s := NewStore(context.Background(), nil, nil)
	open := true
	filter := "camisa XL"
	snap := s.Apply(Patch{ChatOpen: &open, InventoryFilter: &filter})
	assert.True(t, snap.ChatOpen)
	assert.Equal(t, "camisa XL", snap.InventoryFilter)
	assert.Equal(t, "camisa XL", s.InventoryFilter())

	assert.Equal(t, ThemeDark, s.ToggleTheme())
	assert.Equal(t, ThemeLight, s.ToggleTheme())
}

func TestStore_TurnToken(t *testing.T) {
	s := NewStore(context.Background(), nil, nil)

	first := s.BeginTurn()
	second := s.BeginTurn()
	assert.NotEqual(t, first, second)

	// 古いターンの完了では入力中フラグは下りない
	assert.False(t, s.EndTurn(first))
	assert.True(t, s.Typing())

	assert.True(t, s.EndTurn(second))
	assert.False(t, s.Typing())
}

func TestStore_ConcurrentAppend(t *testing.T) {
	s := NewStore(context.Background(), nil, nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AppendMessage(message("x"))
		}()
	}
	wg.Wait()
	assert.Len(t, s.Messages(), 50)
}

func TestStore_PersisterFailureIsNotFatal(t *testing.T) {
	s := NewStore(context.Background(), failingPersister{}, nil)
	s.AppendMessage(message("1"))
	assert.Len(t, s.Messages(), 1)
}

func TestStore_RestoresFromPersister(t *testing.T) {
	p := NewMemoryPersister()
	first := NewStore(context.Background(), p, nil)
	first.AppendMessage(message("1"))
	first.ToggleTheme()

	second := NewStore(context.Background(), p, nil)
	snap := second.Snapshot()
	assert.Equal(t, ThemeDark, snap.Theme)
	require.Len(t, snap.ChatMessages, 1)
	assert.Equal(t, "1", snap.ChatMessages[0].ID)
}

func newTestSQLite(t *testing.T) *SQLitePersister {
	t.Helper()
	p, err := NewSQLitePersister(filepath.Join(t.TempDir(), "state", "telar.db"))
	if err != nil {
		t.Fatalf("create persister: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestSQLitePersister_RoundTrip(t *testing.T) {
	ctx := context.Background()
	p := newTestSQLite(t)

	_, err := p.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	snap := DefaultSnapshot()
	snap.InventoryFilter = "vestido"
	snap.ChatMessages = append(snap.ChatMessages, message("01J"))
	require.NoError(t, p.Save(ctx, snap))

	snap.Theme = ThemeDark
	require.NoError(t, p.Save(ctx, snap))

	got, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, got.Theme)
	assert.Equal(t, "vestido", got.InventoryFilter)
	require.Len(t, got.ChatMessages, 1)
	assert.Equal(t, "01J", got.ChatMessages[0].ID)
	assert.True(t, got.ChatMessages[0].Timestamp.Equal(time.Unix(0, 0)))
}

func TestSQLitePersister_BacksStore(t *testing.T) {
	p := newTestSQLite(t)
	s := NewStore(context.Background(), p, nil)
	s.SetCurrentPage("/dashboard/inventory")

	restored := NewStore(context.Background(), p, nil)
	assert.Equal(t, "/dashboard/inventory", restored.Snapshot().CurrentPage)
}
