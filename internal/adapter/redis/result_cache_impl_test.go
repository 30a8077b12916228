package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/html5-auditor/internal/entity"
	"github.com/user/html5-auditor/pkg/utils"
)

func newTestCache(t *testing.T) (*ResultCacheImpl, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewResultCache(client), mr
}

func sampleResult(url string) *entity.AuditResult {
	valid := true
	return &entity.AuditResult{
		ID:              "6f1c1c51-2b9e-4d5a-8f67-6b4a5e0b1a11",
		URL:             url,
		AuditedAt:       time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		FetchDurationMS: 2300,
		RawHTML:         "<!DOCTYPE html><html></html>",
		Findings:        entity.Findings{Doctype: "<!DOCTYPE html>", H1s: []string{}},
		Checks:          entity.Checks{Doctype: entity.Check{Name: "DOCTYPE", Severity: entity.SeverityHealthy, Value: "<!DOCTYPE html>"}},
		Validation:      entity.ValidationResult{Available: true, Valid: &valid, Messages: []entity.Diagnostic{}},
	}
}

func TestResultCache_Miss(t *testing.T) {
	cache, _ := newTestCache(t)

	got, err := cache.Get(context.Background(), "http://example.com")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestResultCache_SetGet(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	res := sampleResult("http://example.com")

	require.NoError(t, cache.Set(ctx, res, time.Minute))

	key := "audit:" + utils.HashURL("http://example.com")
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))

	got, err := cache.Get(ctx, "http://example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, res.ID, got.ID)
	assert.Empty(t, got.RawHTML, "markup is not cached")
	assert.Equal(t, entity.SeverityHealthy, got.Checks.Doctype.Severity)
	require.NotNil(t, got.Validation.Valid)
	assert.True(t, *got.Validation.Valid)

	// The caller's value is left alone.
	assert.NotEmpty(t, res.RawHTML)
}

func TestResultCache_Expiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, sampleResult("http://example.com"), time.Minute))
	mr.FastForward(2 * time.Minute)

	got, err := cache.Get(ctx, "http://example.com")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestResultCache_Invalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, sampleResult("http://example.com"), time.Minute))
	require.NoError(t, cache.Invalidate(ctx, "http://example.com"))

	got, err := cache.Get(ctx, "http://example.com")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestResultCache_CorruptEntry(t *testing.T) {
	cache, mr := newTestCache(t)
	require.NoError(t, mr.Set("audit:"+utils.HashURL("http://example.com"), "{not json"))

	_, err := cache.Get(context.Background(), "http://example.com")
	assert.Error(t, err)
}

func TestResultCache_PingFailsWhenDown(t *testing.T) {
	cache, mr := newTestCache(t)
	require.NoError(t, cache.Ping(context.Background()))

	mr.Close()
	assert.Error(t, cache.Ping(context.Background()))
}
