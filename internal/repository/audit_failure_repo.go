package repository

import (
	"context"

	"github.com/user/html5-auditor/internal/entity"
)

// AuditFailureRepository tracks URLs whose last audit could not fetch the page.
type AuditFailureRepository interface {
	// Record creates or updates the failure for its URL, incrementing Attempts.
	Record(ctx context.Context, failure *entity.AuditFailure) error
	// FindByURL returns ErrNotFound when the URL has no recorded failure.
	FindByURL(ctx context.Context, url string) (*entity.AuditFailure, error)
	// Delete clears the record, typically after a successful audit.
	Delete(ctx context.Context, url string) error
}
