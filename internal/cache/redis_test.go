package cache_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/backend/internal/cache"
)

func setupCache(t *testing.T) *cache.RedisCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return cache.NewRedisCacheFromClient(client)
}

func TestSetAndGet(t *testing.T) {
	c := setupCache(t)

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	err := c.Set("key1", payload{Name: "tasks", Count: 3}, time.Minute)
	require.NoError(t, err)

	var got payload
	err = c.Get("key1", &got)
	require.NoError(t, err)
	assert.Equal(t, "tasks", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestGetMiss(t *testing.T) {
	c := setupCache(t)

	var dest string
	err := c.Get("absent", &dest)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestDelete(t *testing.T) {
	c := setupCache(t)

	require.NoError(t, c.Set("key1", "value", time.Minute))
	require.NoError(t, c.Delete("key1"))

	var dest string
	assert.ErrorIs(t, c.Get("key1", &dest), cache.ErrCacheMiss)
}

func TestNamespaceInvalidation(t *testing.T) {
	c := setupCache(t)

	key, err := c.NamespacedKey("tasks", "list:alice")
	require.NoError(t, err)
	require.NoError(t, c.Set(key, []string{"a", "b"}, time.Minute))

	var got []string
	require.NoError(t, c.Get(key, &got))
	assert.Len(t, got, 2)

	require.NoError(t, c.InvalidateNamespace("tasks"))

	// The same logical key now resolves to a fresh version.
	newKey, err := c.NamespacedKey("tasks", "list:alice")
	require.NoError(t, err)
	assert.NotEqual(t, key, newKey)

	assert.ErrorIs(t, c.Get(newKey, &got), cache.ErrCacheMiss)
}

func TestNamespacesAreIndependent(t *testing.T) {
	c := setupCache(t)

	taskKey, err := c.NamespacedKey("tasks", "x")
	require.NoError(t, err)
	userKey, err := c.NamespacedKey("users", "x")
	require.NoError(t, err)
	require.NoError(t, c.Set(taskKey, "t", time.Minute))
	require.NoError(t, c.Set(userKey, "u", time.Minute))

	require.NoError(t, c.InvalidateNamespace("tasks"))

	var got string
	require.NoError(t, c.Get(userKey, &got))
	assert.Equal(t, "u", got)
}
