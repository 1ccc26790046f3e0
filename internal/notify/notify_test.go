package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestToaster(ttl time.Duration, capacity int) (*Toaster, *clock) {
	c := &clock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	tt := NewToaster(Options{TTL: ttl, Capacity: capacity})
	tt.now = c.now
	return tt, c
}

func TestToaster_NotifyAndExpire(t *testing.T) {
	tt, c := newTestToaster(5*time.Second, 0)

	tt.Notify(KindStockExhausted, LevelWarn, "Estoque esgotado!")
	c.advance(3 * time.Second)
	tt.Notify(KindAddFailed, LevelError, "Erro na adição do produto")

	active := tt.Active()
	require.Len(t, active, 2)
	assert.Equal(t, KindStockExhausted, active[0].Kind)
	assert.Equal(t, "Estoque esgotado!", active[0].Message)
	assert.Equal(t, LevelWarn, active[0].Level)
	assert.Equal(t, LevelError, active[1].Level)
	assert.NotEmpty(t, active[0].ID)
	assert.NotEqual(t, active[0].ID, active[1].ID)

	c.advance(2 * time.Second)
	active = tt.Active()
	require.Len(t, active, 1)
	assert.Equal(t, KindAddFailed, active[0].Kind)

	c.advance(3 * time.Second)
	assert.Empty(t, tt.Active())
}

func TestToaster_Capacity(t *testing.T) {
	tt, _ := newTestToaster(time.Minute, 2)

	tt.Notify(KindAddFailed, LevelError, "1")
	tt.Notify(KindAddFailed, LevelError, "2")
	tt.Notify(KindAddFailed, LevelError, "3")

	active := tt.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "2", active[0].Message)
	assert.Equal(t, "3", active[1].Message)
}

func TestToaster_Dismiss(t *testing.T) {
	tt, _ := newTestToaster(time.Minute, 0)

	tt.Notify(KindRemoveFailed, LevelError, "a")
	tt.Notify(KindUpdateFailed, LevelError, "b")
	first := tt.Active()[0]

	assert.True(t, tt.Dismiss(first.ID))
	assert.False(t, tt.Dismiss(first.ID))

	active := tt.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "b", active[0].Message)
}

func TestToaster_ActiveReturnsCopy(t *testing.T) {
	tt, _ := newTestToaster(time.Minute, 0)
	tt.Notify(KindAddFailed, LevelError, "a")

	got := tt.Active()
	got[0].Message = "changed"

	assert.Equal(t, "a", tt.Active()[0].Message)
}
