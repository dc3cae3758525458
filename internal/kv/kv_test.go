package kv

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freight-ops-backend/config"
)

// brokenStore fails every call.
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}

func (brokenStore) Set(context.Context, string, string) error {
	return errors.New("disk on fire")
}

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", "v1"))
	require.NoError(t, s.Set(ctx, "k", "v2"))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestLoadJSON(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	t.Run("missing key yields zero value", func(t *testing.T) {
		assert.Nil(t, LoadJSON[map[string]sample](ctx, s, "nothing"))
	})

	t.Run("round trip", func(t *testing.T) {
		require.True(t, SaveJSON(ctx, s, "good", map[string]sample{"a": {Name: "a", Count: 2}}))
		got := LoadJSON[map[string]sample](ctx, s, "good")
		assert.Equal(t, map[string]sample{"a": {Name: "a", Count: 2}}, got)
	})

	t.Run("malformed JSON yields zero value", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "bad", "{not json"))
		assert.Nil(t, LoadJSON[[]sample](ctx, s, "bad"))
	})

	t.Run("wrong shape yields zero value", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "shape", `{"a": 1}`))
		assert.Nil(t, LoadJSON[[]sample](ctx, s, "shape"))
	})

	t.Run("read error yields zero value", func(t *testing.T) {
		assert.Nil(t, LoadJSON[[]sample](ctx, brokenStore{}, "any"))
	})
}

func TestSaveJSON_WriteErrorIsSwallowed(t *testing.T) {
	assert.False(t, SaveJSON(context.Background(), brokenStore{}, "k", []int{1}))
}

func TestNewKeys(t *testing.T) {
	keys := NewKeys("ops.")
	assert.Equal(t, "ops.snapshots.v1", keys.Snapshots)
	assert.Equal(t, "ops.actionState.v1", keys.ActionState)
	assert.Equal(t, "ops.contactLog.v1", keys.ContactLog)
	assert.Equal(t, "ops.notifications.v1", keys.Notifications)
	assert.Equal(t, "ops.notifications.read.v1", keys.NotificationsRead)
}

func TestOpen(t *testing.T) {
	s, err := Open(config.StorageConfig{Driver: "memory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(config.StorageConfig{Driver: "redis", Redis: config.RedisConfig{Addr: "localhost:6379"}}, nil)
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)

	_, err = Open(config.StorageConfig{Driver: "sql"}, nil)
	assert.Error(t, err)

	_, err = Open(config.StorageConfig{Driver: "etcd"}, nil)
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
