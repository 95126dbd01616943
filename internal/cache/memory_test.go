package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	var got []entry
	found, err := c.Get(ctx, "categories", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "categories", []entry{{ID: "1", Name: "Salat"}}, time.Minute))

	found, err = c.Get(ctx, "categories", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []entry{{ID: "1", Name: "Salat"}}, got)

	require.NoError(t, c.Delete(ctx, "categories"))
	found, err = c.Get(ctx, "categories", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryExpiration(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemory()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", entry{ID: "1"}, time.Minute))

	now = now.Add(2 * time.Minute)
	var got entry
	found, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, c.Size())
}

func TestMemorySetDropsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemory()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "old", entry{ID: "1"}, time.Minute))
	require.NoError(t, c.Set(ctx, "kept", entry{ID: "2"}, time.Hour))

	now = now.Add(2 * time.Minute)
	require.NoError(t, c.Set(ctx, "new", entry{ID: "3"}, time.Minute))
	assert.Equal(t, 2, c.Size())
}
