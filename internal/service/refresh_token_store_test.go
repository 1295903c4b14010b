package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRedisKVClient struct {
	lastSetKey string
	lastSetVal interface{}
	lastSetTTL time.Duration
	lastExists []string
	lastDel    []string

	setErr    error
	existsErr error
	delErr    error
	existsN   int64
}

func (m *mockRedisKVClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.lastSetKey = key
	m.lastSetVal = value
	m.lastSetTTL = expiration
	cmd := redis.NewStatusCmd(ctx)
	if m.setErr != nil {
		cmd.SetErr(m.setErr)
		return cmd
	}
	cmd.SetVal("OK")
	return cmd
}

func (m *mockRedisKVClient) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	m.lastExists = keys
	cmd := redis.NewIntCmd(ctx)
	if m.existsErr != nil {
		cmd.SetErr(m.existsErr)
		return cmd
	}
	cmd.SetVal(m.existsN)
	return cmd
}

func (m *mockRedisKVClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.lastDel = keys
	cmd := redis.NewIntCmd(ctx)
	if m.delErr != nil {
		cmd.SetErr(m.delErr)
		return cmd
	}
	cmd.SetVal(1)
	return cmd
}

func TestMemoryRefreshTokenStore_Expiry(t *testing.T) {
	store := NewMemoryRefreshTokenStore().(*memoryRefreshTokenStore)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ok, err := store.Exists("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Store("jti-1", "u1", time.Minute))
	ok, err = store.Exists(" jti-1 ")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(time.Minute)
	ok, err = store.Exists("jti-1")
	require.NoError(t, err)
	assert.False(t, ok, "token must expire at its deadline")
}

func TestMemoryRefreshTokenStore_RevokeAndEmptyJTI(t *testing.T) {
	store := NewMemoryRefreshTokenStore()

	require.NoError(t, store.Store("", "u1", time.Minute))
	require.NoError(t, store.Store("jti-2", "u1", 0))
	require.NoError(t, store.Revoke("jti-2"))

	ok, err := store.Exists("jti-2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisRefreshTokenStore_Keys(t *testing.T) {
	mock := &mockRedisKVClient{existsN: 1}
	store := &redisRefreshTokenStore{client: mock, prefix: "auth:refresh:"}

	require.NoError(t, store.Store(" j1 ", "u1", 0))
	assert.Equal(t, "auth:refresh:j1", mock.lastSetKey)
	assert.Equal(t, "u1", mock.lastSetVal)
	assert.Equal(t, fallbackRefreshTTL, mock.lastSetTTL)

	ok, err := store.Exists(" j1 ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"auth:refresh:j1"}, mock.lastExists)

	require.NoError(t, store.Revoke(" j1 "))
	assert.Equal(t, []string{"auth:refresh:j1"}, mock.lastDel)
}

func TestRedisRefreshTokenStore_Errors(t *testing.T) {
	mock := &mockRedisKVClient{
		setErr:    errors.New("set failed"),
		existsErr: errors.New("exists failed"),
		delErr:    errors.New("del failed"),
	}
	store := &redisRefreshTokenStore{client: mock, prefix: "auth:refresh:"}

	// jti vacío no llega a Redis.
	require.NoError(t, store.Store("", "u1", time.Minute))
	ok, err := store.Exists("")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, store.Revoke(""))

	assert.Error(t, store.Store("j2", "u1", time.Minute))
	_, err = store.Exists("j2")
	assert.Error(t, err)
	assert.Error(t, store.Revoke("j2"))
}
