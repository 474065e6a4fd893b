package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smpadmin/internal/sml/models"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemory(time.Minute, WithClock(func() time.Time { return now }))

	_, ok, err := c.Get(ctx, "session")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "session", models.Capabilities{SMPID: "SMP-1", KeystoreValid: true}))

	t.Run("hit before expiry", func(t *testing.T) {
		got, ok, err := c.Get(ctx, "session")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "SMP-1", got.SMPID)
		assert.True(t, got.KeystoreValid)
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		got, _, _ := c.Get(ctx, "session")
		got.SMPID = "changed"
		again, _, _ := c.Get(ctx, "session")
		assert.Equal(t, "SMP-1", again.SMPID)
	})

	t.Run("miss at expiry", func(t *testing.T) {
		now = now.Add(time.Minute)
		_, ok, err := c.Get(ctx, "session")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestMemoryInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Hour)
	require.NoError(t, c.Set(ctx, "a", models.Capabilities{}))
	require.NoError(t, c.Set(ctx, "b", models.Capabilities{}))

	require.NoError(t, c.Invalidate(ctx, "a"))
	_, ok, _ := c.Get(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "b")
	assert.True(t, ok)

	require.NoError(t, c.Invalidate(ctx, ""))
	_, ok, _ = c.Get(ctx, "b")
	assert.False(t, ok)
}
