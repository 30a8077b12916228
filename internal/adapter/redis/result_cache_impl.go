package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/html5-auditor/internal/entity"
	"github.com/user/html5-auditor/internal/repository"
	"github.com/user/html5-auditor/pkg/utils"
)

const resultKeyPrefix = "audit:"

// ResultCacheImpl keeps recent audit results in Redis with an expiry.
type ResultCacheImpl struct {
	client *redis.Client
}

var _ repository.ResultCacheRepository = (*ResultCacheImpl)(nil)

func NewResultCache(client *redis.Client) *ResultCacheImpl {
	return &ResultCacheImpl{client: client}
}

// generateKey creates a consistent Redis key for a given URL by hashing it.
func (r *ResultCacheImpl) generateKey(url string) string {
	return fmt.Sprintf("%s%s", resultKeyPrefix, utils.HashURL(url))
}

// Get returns the cached result for url, or nil when nothing is cached.
func (r *ResultCacheImpl) Get(ctx context.Context, url string) (*entity.AuditResult, error) {
	raw, err := r.client.Get(ctx, r.generateKey(url)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var res entity.AuditResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &res, nil
}

// Set caches result under its URL without the raw markup. SET with EX is atomic.
func (r *ResultCacheImpl) Set(ctx context.Context, result *entity.AuditResult, ttl time.Duration) error {
	raw, err := json.Marshal(result.WithoutHTML())
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	return r.client.Set(ctx, r.generateKey(result.URL), raw, ttl).Err()
}

// Invalidate drops the cached result for url, used for forced audits.
func (r *ResultCacheImpl) Invalidate(ctx context.Context, url string) error {
	return r.client.Del(ctx, r.generateKey(url)).Err()
}

func (r *ResultCacheImpl) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
