package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filedrop/internal/common"
)

func TestMemoryStore_PutGetDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "k1", strings.NewReader("hello"), 5))

	rc, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.Delete(ctx, "k1"))
	_, err = s.Get(ctx, "k1")
	assert.True(t, errors.Is(err, common.ErrNotFound))

	// deleting a missing blob is not an error
	assert.NoError(t, s.Delete(ctx, "missing"))
}

func TestNewStorageKey_Unique(t *testing.T) {
	t.Parallel()

	k1 := NewStorageKey(1)
	k2 := NewStorageKey(1)
	assert.NotEqual(t, k1, k2)
	assert.True(t, strings.HasPrefix(k1, "users/1/"))
}
