package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.db")
	ctx := context.Background()

	s, err := NewSQLite(path)
	require.NoError(t, err)

	h, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, h)

	require.NoError(t, s.Save(ctx, Histories{1: {"old": 2}}))
	want := Histories{
		1:  {"hello": 3, "你好": 1},
		-9: {"x": 15},
	}
	require.NoError(t, s.Save(ctx, want))
	require.NoError(t, s.Close())

	reopened, err := NewSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got, "save replaces previous contents")
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	b, err := Open(DriverJSON, filepath.Join(dir, "m.json"))
	require.NoError(t, err)
	assert.IsType(t, &JSON{}, b)
	require.NoError(t, b.Close())

	b, err = Open(DriverSQLite, filepath.Join(dir, "m.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, b)
	require.NoError(t, b.Close())

	_, err = Open("bolt", filepath.Join(dir, "m"))
	assert.Error(t, err)
}
