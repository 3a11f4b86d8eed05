package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/driving-lesson-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest map[string]string
	assert.ErrorIs(t, repo.Get(ctx, "availability:inst-1:2024-01-01", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "availability:inst-1:2024-01-01", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "availability:*"))
	assert.NoError(t, repo.Ping(ctx))
	assert.NoError(t, repo.Close())
}

func TestCacheRepositoryWrapsRedisErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	repo := NewCacheRepository(client, nil)
	defer repo.Close() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Get(ctx, "availability:inst-1:2024-01-01", new(string))
	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.Contains(t, err.Error(), "redis get availability:inst-1:2024-01-01")

	err = repo.Set(ctx, "k", make(chan int), time.Minute)
	assert.ErrorContains(t, err, "marshal cache value for k")

	assert.ErrorContains(t, repo.Set(ctx, "k", "v", time.Minute), "redis set k")
	assert.ErrorContains(t, repo.DeleteByPattern(ctx, "availability:*"), "redis scan pattern availability:*")
}
