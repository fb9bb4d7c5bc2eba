package dao

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"tagarena/pkg/config"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseGateway(t *testing.T, g Gateway) {
	t.Helper()
	ctx := context.Background()

	got, err := g.GetUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Coins)
	assert.NotNil(t, got.Inventory)
	assert.Empty(t, got.Inventory)

	require.NoError(t, g.SaveUser(ctx, "alice", Progression{Coins: 12, Inventory: []string{"hat", "cape"}}))
	got, err = g.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, Progression{Coins: 12, Inventory: []string{"hat", "cape"}}, got)

	// overwrite
	require.NoError(t, g.SaveUser(ctx, "alice", Progression{Coins: 3}))
	got, err = g.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Coins)
	assert.Equal(t, []string{}, got.Inventory)
}

func TestMemoryStore(t *testing.T) {
	exerciseGateway(t, NewMemoryStore())
}

func TestMemoryStoreCopiesInventory(t *testing.T) {
	m := NewMemoryStore()
	inv := []string{"hat"}
	require.NoError(t, m.SaveUser(context.Background(), "k", Progression{Inventory: inv}))
	inv[0] = "changed"

	got, err := m.GetUser(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, []string{"hat"}, got.Inventory)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.sqlite")
	s, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	exerciseGateway(t, s)
	require.NoError(t, s.Close())

	// data survives a reopen
	s, err = OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Coins)
}

func TestRedisStoreUnreachable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	s := NewRedisStore(rdb)
	defer s.Close()

	got, err := s.GetUser(context.Background(), "alice")
	assert.Error(t, err)
	assert.Equal(t, DefaultProgression(), got)
	assert.Error(t, s.SaveUser(context.Background(), "alice", DefaultProgression()))
}

func TestOpenDrivers(t *testing.T) {
	cfg := &config.Config{}
	cfg.Persistence.Driver = "memory"
	g, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, g)

	cfg.Persistence.Driver = "sqlite"
	cfg.Persistence.SQLitePath = filepath.Join(t.TempDir(), "x.sqlite")
	g, err = Open(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, g)
	g.Close()

	cfg.Persistence.Driver = "floppy"
	_, err = Open(context.Background(), cfg)
	assert.Error(t, err)
}

func TestInventoryCodec(t *testing.T) {
	s, err := encodeInventory(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", s)

	inv, err := decodeInventory("")
	require.NoError(t, err)
	assert.Equal(t, []string{}, inv)

	_, err = decodeInventory("{")
	assert.Error(t, err)
}
