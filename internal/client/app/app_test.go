package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()

	cfg := LoadConfig()
	cfg.DatabaseFile = filepath.Join(t.TempDir(), "coincraft.db")
	return cfg
}

func TestNew(t *testing.T) {
	t.Parallel()

	client, err := New(testConfig(t))
	require.NoError(t, err)
	defer client.Close()

	require.NotNil(t, client.Sessions)
	require.NotNil(t, client.Guard)
	require.NotNil(t, client.User)
	require.NotNil(t, client.Child)
	require.NotNil(t, client.Parent)
	require.NotNil(t, client.Teacher)
	require.NotNil(t, client.Dashboard)
	require.False(t, client.Sessions.IsAuthenticated())
}

func TestDeviceIDSurvivesReopen(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	ctx := context.Background()

	first, err := New(cfg)
	require.NoError(t, err)
	snap, err := first.db.Snapshots().Get(ctx, deviceIDSnapshot)
	require.NoError(t, err)
	require.NotEmpty(t, snap.Data)
	require.NoError(t, first.Close())

	second, err := New(cfg)
	require.NoError(t, err)
	defer second.Close()

	again, err := second.db.Snapshots().Get(ctx, deviceIDSnapshot)
	require.NoError(t, err)
	require.Equal(t, string(snap.Data), string(again.Data))
}
