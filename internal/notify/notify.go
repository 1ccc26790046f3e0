// Package notify implements the shopper-facing toast channel: short-lived,
// non-blocking messages that expire on their own.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Kind string

const (
	KindStockExhausted Kind = "stock_exhausted"
	KindAddFailed      Kind = "add_failed"
	KindRemoveFailed   Kind = "remove_failed"
	KindUpdateFailed   Kind = "update_failed"
)

type Level string

const (
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

const (
	DefaultTTL      = 5 * time.Second
	DefaultCapacity = 20
)

type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Notifier is what the cart reports to. Implementations must not block.
type Notifier interface {
	Notify(kind Kind, level Level, message string)
}

// Toaster keeps the most recent notifications in memory until they expire.
type Toaster struct {
	mu    sync.Mutex
	items []Notification
	ttl   time.Duration
	cap   int
	log   *zap.Logger
	now   func() time.Time
}

type Options struct {
	TTL      time.Duration
	Capacity int
	Log      *zap.Logger
}

func NewToaster(opts Options) *Toaster {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Toaster{
		ttl: opts.TTL,
		cap: opts.Capacity,
		log: opts.Log,
		now: time.Now,
	}
}

func (t *Toaster) Notify(kind Kind, level Level, message string) {
	now := t.now()
	n := Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Level:     level,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(t.ttl),
	}

	t.log.Info("notification",
		zap.String("id", n.ID),
		zap.String("kind", string(kind)),
		zap.String("level", string(level)),
		zap.String("message", message),
	)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.items = append(t.expire(now), n)
	if over := len(t.items) - t.cap; over > 0 {
		t.items = append([]Notification(nil), t.items[over:]...)
	}
}

// Active returns the notifications that have not yet expired, oldest first.
func (t *Toaster) Active() []Notification {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.items = t.expire(t.now())
	out := make([]Notification, len(t.items))
	copy(out, t.items)
	return out
}

// Dismiss removes a notification before it expires. It reports whether the
// id was still active.
func (t *Toaster) Dismiss(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, n := range t.items {
		if n.ID == id {
			t.items = append(t.items[:i:i], t.items[i+1:]...)
			return true
		}
	}
	return false
}

func (t *Toaster) expire(now time.Time) []Notification {
	kept := t.items[:0:0]
	for _, n := range t.items {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}
	return kept
}
