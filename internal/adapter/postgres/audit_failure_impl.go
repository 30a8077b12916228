package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/html5-auditor/internal/entity"
	"github.com/user/html5-auditor/internal/repository"
)

// AuditFailureRepoImpl provides the AuditFailureRepository on PostgreSQL.
type AuditFailureRepoImpl struct {
	db *pgxpool.Pool
}

var _ repository.AuditFailureRepository = (*AuditFailureRepoImpl)(nil)

func NewAuditFailureRepo(db *pgxpool.Pool) *AuditFailureRepoImpl {
	return &AuditFailureRepoImpl{db: db}
}

// Record creates or updates the failure for a URL.
// It increments attempts on conflict.
func (r *AuditFailureRepoImpl) Record(ctx context.Context, f *entity.AuditFailure) error {
	query := `
		INSERT INTO audit_failures (url, reason, error_type, attempts, last_attempt_at)
		VALUES ($1, $2, $3, 1, $4)
		ON CONFLICT (url) DO UPDATE SET
			reason = EXCLUDED.reason,
			error_type = EXCLUDED.error_type,
			attempts = audit_failures.attempts + 1,
			last_attempt_at = EXCLUDED.last_attempt_at;
	`
	_, err := r.db.Exec(ctx, query, f.URL, f.Reason, f.ErrorType, f.LastAttemptAt)
	return err
}

func (r *AuditFailureRepoImpl) FindByURL(ctx context.Context, url string) (*entity.AuditFailure, error) {
	query := `
		SELECT url, reason, error_type, attempts, last_attempt_at
		FROM audit_failures
		WHERE url = $1;
	`
	var f entity.AuditFailure
	err := r.db.QueryRow(ctx, query, url).Scan(&f.URL, &f.Reason, &f.ErrorType, &f.Attempts, &f.LastAttemptAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Delete removes the failure record, typically after a successful audit.
func (r *AuditFailureRepoImpl) Delete(ctx context.Context, url string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM audit_failures WHERE url = $1;`, url)
	return err
}
