package state

import (
	"context"
	"errors"
	"sync"
)

// ErrNoSnapshot は保存済みのスナップショットが無いことを表します。
var ErrNoSnapshot = errors.New("no saved snapshot")

// Persister はUI状態の保存先です。
type Persister interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// MemoryPersister はプロセス内に保持するだけの Persister です。
type MemoryPersister struct {
	mu    sync.Mutex
	snap  Snapshot
	saved bool
	saves int
}

// NewMemoryPersister は新しいMemoryPersisterを生成します。
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

// Load は Persister を実装します。
func (p *MemoryPersister) Load(ctx context.Context) (Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.saved {
		return Snapshot{}, ErrNoSnapshot
	}
	return p.snap.clone(), nil
}

// Save は Persister を実装します。
func (p *MemoryPersister) Save(ctx context.Context, snap Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap = snap.clone()
	p.saved = true
	p.saves++
	return nil
}

// Saves は Save が呼ばれた回数を返します。
func (p *MemoryPersister) Saves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}
