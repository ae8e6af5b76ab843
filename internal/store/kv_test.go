package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileKVRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)

	_, err = kv.Get(ctx, "recordings")
	require.ErrorIs(t, err, ErrMiss)

	require.NoError(t, kv.Set(ctx, "recordings", `{"recordings":[]}`))

	got, err := kv.Get(ctx, "recordings")
	require.NoError(t, err)
	require.Equal(t, `{"recordings":[]}`, got)

	// Overwrite replaces the whole document.
	require.NoError(t, kv.Set(ctx, "recordings", `{"recordings":[1]}`))
	got, err = kv.Get(ctx, "recordings")
	require.NoError(t, err)
	require.Equal(t, `{"recordings":[1]}`, got)
}

func TestFileKVDelete(t *testing.T) {
	ctx := context.Background()
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, kv.Set(ctx, "settings", `{}`))
	require.NoError(t, kv.Delete(ctx, "settings"))

	_, err = kv.Get(ctx, "settings")
	require.ErrorIs(t, err, ErrMiss)

	// Deleting a missing key is not an error.
	require.NoError(t, kv.Delete(ctx, "settings"))
}
