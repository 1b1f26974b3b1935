package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	r, err := NewRedis("redis://" + server.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r, server
}

func TestRedis_SetGetRemove(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx := context.Background()
	require.NoError(t, r.Ping(ctx))

	stored, err := r.Set(ctx, Key("Bank", 3), cachedBank{ID: 3, Name: "Acme"}, time.Minute)
	require.NoError(t, err)
	assert.True(t, stored)

	got, found, err := Get[cachedBank](ctx, r, Key("Bank", 3))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Acme", got.Name)

	require.NoError(t, r.Remove(ctx, Key("Bank", 3)))
	exists, err := r.Exists(ctx, Key("Bank", 3))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedis_MissingKey(t *testing.T) {
	r, _ := newTestRedis(t)

	_, found, err := Get[cachedBank](context.Background(), r, "Bank:1")

	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedis_TTLApplied(t *testing.T) {
	r, server := newTestRedis(t)
	ctx := context.Background()

	_, err := r.Set(ctx, "Bank:1", cachedBank{ID: 1}, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, server.TTL("Bank:1"))

	server.FastForward(2 * time.Minute)

	exists, err := r.Exists(ctx, "Bank:1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedis_NilValueIgnored(t *testing.T) {
	r, server := newTestRedis(t)

	stored, err := r.Set(context.Background(), "Bank:1", nil, time.Minute)

	require.NoError(t, err)
	assert.False(t, stored)
	assert.False(t, server.Exists("Bank:1"))

	stored, err = r.Set(context.Background(), "Bank:1", (*cachedBank)(nil), time.Minute)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.False(t, server.Exists("Bank:1"))
}

func TestRedis_ServerDown(t *testing.T) {
	r, server := newTestRedis(t)
	server.Close()

	_, err := r.Exists(context.Background(), "Bank:1")

	assert.Error(t, err)
}
