package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/bible-studies-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest []string
	assert.ErrorIs(t, repo.Get(ctx, "options:lecturers:active", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "options:lecturers:active", []string{"a"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "schedules:upcoming:*"))
	assert.Error(t, repo.PingContext(ctx))
	assert.NoError(t, repo.Close())
}

func TestCacheRepositoryUnreachableRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	repo := NewCacheRepository(client, nil)
	defer repo.Close()

	ctx := context.Background()
	var dest []string
	err := repo.Get(ctx, "options:classes:active", &dest)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.Error(t, repo.Set(ctx, "options:classes:active", []string{"x"}, time.Minute))
	assert.Error(t, repo.PingContext(ctx))
}
