package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	require.NoError(t, m.Set(ctx, map[string]string{"a": "1", "b": "2"}))

	v, ok, err := m.Get(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	require.NoError(t, m.Delete(ctx, "a", "b", "missing"))
	_, ok, _ = m.Get(ctx, "a")
	assert.False(t, ok)
}
