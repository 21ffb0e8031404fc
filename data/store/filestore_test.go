package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_LoadMissingKey(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Load(context.Background(), KeyAssets)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	value := []byte(`[{"id":"1","name":"BTC"}]`)

	require.NoError(t, s.Save(ctx, KeyAssets, value))

	got, err := s.Load(ctx, KeyAssets)
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()

	require.NoError(t, s.Save(ctx, KeyTrades, []byte(`["old"]`)))
	require.NoError(t, s.Save(ctx, KeyTrades, []byte(`["new"]`)))

	got, err := s.Load(ctx, KeyTrades)
	require.NoError(t, err)
	assert.Equal(t, []byte(`["new"]`), got)
}

func TestFileStore_KeysAreIndependent(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()

	require.NoError(t, s.Save(ctx, KeyAssets, []byte(`["assets"]`)))
	require.NoError(t, s.Save(ctx, KeyAirdrops, []byte(`["airdrops"]`)))

	got, err := s.Load(ctx, KeyAssets)
	require.NoError(t, err)
	assert.Equal(t, []byte(`["assets"]`), got)

	_, err = s.Load(ctx, KeyManualPnL)
	assert.ErrorIs(t, err, ErrNotFound)
}
