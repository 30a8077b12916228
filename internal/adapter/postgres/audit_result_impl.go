package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/html5-auditor/internal/entity"
	"github.com/user/html5-auditor/internal/repository"
)

// AuditResultRepoImpl stores the latest audit per URL in PostgreSQL.
type AuditResultRepoImpl struct {
	db *pgxpool.Pool
}

var _ repository.AuditResultRepository = (*AuditResultRepoImpl)(nil)

func NewAuditResultRepo(db *pgxpool.Pool) *AuditResultRepoImpl {
	return &AuditResultRepoImpl{db: db}
}

// Save stores the result, replacing whatever was stored for the same URL.
func (r *AuditResultRepoImpl) Save(ctx context.Context, result *entity.AuditResult) error {
	findings, err := json.Marshal(result.Findings)
	if err != nil {
		return fmt.Errorf("marshal findings: %w", err)
	}
	checks, err := json.Marshal(result.Checks)
	if err != nil {
		return fmt.Errorf("marshal checks: %w", err)
	}
	validation, err := json.Marshal(result.Validation)
	if err != nil {
		return fmt.Errorf("marshal validation: %w", err)
	}

	query := `
		INSERT INTO audit_results (url, id, audited_at, fetch_duration_ms, page_load_ms, screenshot_path, findings, checks, validation)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (url) DO UPDATE SET
			id = EXCLUDED.id,
			audited_at = EXCLUDED.audited_at,
			fetch_duration_ms = EXCLUDED.fetch_duration_ms,
			page_load_ms = EXCLUDED.page_load_ms,
			screenshot_path = EXCLUDED.screenshot_path,
			findings = EXCLUDED.findings,
			checks = EXCLUDED.checks,
			validation = EXCLUDED.validation;
	`
	_, err = r.db.Exec(ctx, query,
		result.URL,
		result.ID,
		result.AuditedAt,
		result.FetchDurationMS,
		result.PageLoadMS,
		result.ScreenshotPath,
		findings,
		checks,
		validation,
	)
	if err != nil {
		return fmt.Errorf("save audit result: %w", err)
	}
	return nil
}

// FindByURL returns the latest stored result for url.
func (r *AuditResultRepoImpl) FindByURL(ctx context.Context, url string) (*entity.AuditResult, error) {
	query := `
		SELECT url, id, audited_at, fetch_duration_ms, page_load_ms, screenshot_path, findings, checks, validation
		FROM audit_results
		WHERE url = $1;
	`
	var res entity.AuditResult
	var findings, checks, validation []byte

	err := r.db.QueryRow(ctx, query, url).Scan(
		&res.URL,
		&res.ID,
		&res.AuditedAt,
		&res.FetchDurationMS,
		&res.PageLoadMS,
		&res.ScreenshotPath,
		&findings,
		&checks,
		&validation,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find audit result: %w", err)
	}

	if err := json.Unmarshal(findings, &res.Findings); err != nil {
		return nil, fmt.Errorf("decode findings: %w", err)
	}
	if err := json.Unmarshal(checks, &res.Checks); err != nil {
		return nil, fmt.Errorf("decode checks: %w", err)
	}
	if err := json.Unmarshal(validation, &res.Validation); err != nil {
		return nil, fmt.Errorf("decode validation: %w", err)
	}
	return &res, nil
}

func (r *AuditResultRepoImpl) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
