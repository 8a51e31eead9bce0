package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"codeberg.org/mirrwin/upsmon/internal/store"
	"codeberg.org/mirrwin/upsmon/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "baselines.db")

	s, err := store.NewSQLite(store.Config{DBPath: dbPath})
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()

	_, ok, err := s.Get(ctx, telemetry.MetricPower)
	require.NoError(t, err)
	assert.False(t, ok, "unset metric must report ok=false")

	require.NoError(t, s.Set(ctx, telemetry.MetricPower, 230.5))

	value, ok, err := s.Get(ctx, telemetry.MetricPower)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 230.5, value, 1e-9)
}

func TestSQLiteOverwrite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "baselines.db")

	s, err := store.NewSQLite(store.Config{DBPath: dbPath})
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()

	require.NoError(t, s.Set(ctx, telemetry.MetricLoad, 40))
	require.NoError(t, s.Set(ctx, telemetry.MetricLoad, 55))

	value, ok, err := s.Get(ctx, telemetry.MetricLoad)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 55, value, 1e-9, "Set must fully replace the previous value")
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "baselines.db")
	ctx := context.Background()

	s, err := store.NewSQLite(store.Config{DBPath: dbPath})
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, telemetry.MetricPower, 180))
	require.NoError(t, s.Close())

	reopened, err := store.NewSQLite(store.Config{DBPath: dbPath})
	require.NoError(t, err)
	defer reopened.Close()

	value, ok, err := reopened.Get(ctx, telemetry.MetricPower)
	require.NoError(t, err)
	assert.True(t, ok, "value must survive a restart")
	assert.InDelta(t, 180, value, 1e-9)
}

func TestSQLiteEmptyPath(t *testing.T) {
	_, err := store.NewSQLite(store.Config{})
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	s := store.NewMemory()
	defer s.Close()

	ctx := context.Background()

	_, ok, err := s.Get(ctx, telemetry.MetricLoad)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, telemetry.MetricLoad, 72))

	value, ok, err := s.Get(ctx, telemetry.MetricLoad)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 72, value, 1e-9)
}
