// Package reasoning は外部の言語モデルとの境界を定義します。
package reasoning

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrTransient はタイムアウトや 429 / 5xx などの一時的な失敗です。
	ErrTransient = errors.New("transient reasoning failure")
	// ErrEmptyReply はモデルが空の応答を返した場合です。
	ErrEmptyReply = errors.New("empty reply from reasoning service")
)

// Reasoner はシステム指示とユーザーテキストを送り、テキスト応答を受け取ります。
type Reasoner interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// IsTransient はリトライ対象のエラーかを返します。
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransient) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Retrying は試行ごとにタイムアウトを設定し、一時的な失敗を MaxRetries 回まで再試行します。
type Retrying struct {
	Next       Reasoner
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	Logger     *zap.Logger
}

// NewRetrying は新しいRetryingを生成します。
func NewRetrying(next Reasoner, timeout time.Duration, maxRetries int, logger *zap.Logger) *Retrying {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retrying{
		Next:       next,
		Timeout:    timeout,
		MaxRetries: maxRetries,
		Backoff:    200 * time.Millisecond,
		Logger:     logger,
	}
}

// Generate は Reasoner を実装します。
func (r *Retrying) Generate(ctx context.Context, system, user string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.MaxRetries; attempt++ {
		if attempt > 0 {
			r.Logger.Warn("🔁 推論呼び出しを再試行します", zap.Int("attempt", attempt), zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(r.Backoff):
			}
		}

		reply, err := r.once(ctx, system, user)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		// 呼び出し元のキャンセルは再試行しない
		if ctx.Err() != nil || !IsTransient(err) {
			return "", err
		}
	}
	return "", lastErr
}

func (r *Retrying) once(ctx context.Context, system, user string) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	reply, err := r.Next.Generate(ctx, system, user)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}

// Func は関数を Reasoner として扱うためのアダプタです。
type Func func(ctx context.Context, system, user string) (string, error)

// Generate は Reasoner を実装します。
func (f Func) Generate(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}
