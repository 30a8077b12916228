package repository

import (
	"context"
	"time"

	"github.com/user/html5-auditor/internal/entity"
)

// AuditResultRepository keeps the latest audit per URL.
type AuditResultRepository interface {
	// Save stores the result for its URL, replacing any earlier one.
	Save(ctx context.Context, result *entity.AuditResult) error
	// FindByURL returns ErrNotFound when the URL was never audited.
	FindByURL(ctx context.Context, url string) (*entity.AuditResult, error)
	Ping(ctx context.Context) error
}

// ResultCacheRepository is a short-lived cache of audit results.
type ResultCacheRepository interface {
	// Get returns (nil, nil) on a miss.
	Get(ctx context.Context, url string) (*entity.AuditResult, error)
	Set(ctx context.Context, result *entity.AuditResult, ttl time.Duration) error
	Invalidate(ctx context.Context, url string) error
	Ping(ctx context.Context) error
}
