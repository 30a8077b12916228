package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/user/html5-auditor/internal/entity"
	"github.com/user/html5-auditor/internal/repository"
	"github.com/user/html5-auditor/pkg/metrics"
	"github.com/user/html5-auditor/pkg/utils"
)

var (
	ErrEmptyURL       = errors.New("url is empty")
	ErrAnalysisFailed = errors.New("markup analysis failed")
)

// Analyzer turns fetched markup into findings and classified checks.
type Analyzer interface {
	Analyze(html string) (entity.Findings, entity.Checks, error)
}

// Auditor defines the interface for running a single-page audit.
type Auditor interface {
	Audit(ctx context.Context, rawURL string, opts Options) (*entity.AuditResult, error)
}

// Options tune a single Audit call.
type Options struct {
	// Force skips the result cache.
	Force bool
	// OnStatus receives stage changes. It is called from the auditing
	// goroutine and must not block.
	OnStatus func(entity.StatusUpdate)
}

// Config wires the optional stores and limits into the use case. Nil stores
// are skipped.
type Config struct {
	Results  repository.AuditResultRepository
	Failures repository.AuditFailureRepository
	Cache    repository.ResultCacheRepository
	CacheTTL time.Duration

	// MaxConcurrency bounds the number of browsers running at once.
	MaxConcurrency int
	// ScreenshotPath picks where the screenshot of a URL is written.
	ScreenshotPath func(url string) string
}

type auditUseCase struct {
	browser   repository.BrowserRepository
	validator repository.ValidatorRepository
	analyzer  Analyzer
	cfg       Config
	sem       *semaphore.Weighted
	now       func() time.Time
}

// NewAuditUseCase creates the fetch, analyze and validate pipeline.
func NewAuditUseCase(
	browser repository.BrowserRepository,
	validator repository.ValidatorRepository,
	analyzer Analyzer,
	cfg Config,
) Auditor {
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = 1
	}
	if cfg.ScreenshotPath == nil {
		cfg.ScreenshotPath = FixedScreenshotPath("page_preview.png")
	}
	return &auditUseCase{
		browser:   browser,
		validator: validator,
		analyzer:  analyzer,
		cfg:       cfg,
		sem:       semaphore.NewWeighted(int64(cfg.MaxConcurrency)),
		now:       time.Now,
	}
}

// FixedScreenshotPath writes every screenshot to the same file, as the
// single-user front ends do.
func FixedScreenshotPath(path string) func(string) string {
	return func(string) string { return path }
}

// HashedScreenshotPath gives every URL its own file under dir.
func HashedScreenshotPath(dir string) func(string) string {
	return func(url string) string {
		return filepath.Join(dir, utils.HashURL(url)+".png")
	}
}

func (uc *auditUseCase) Audit(ctx context.Context, rawURL string, opts Options) (*entity.AuditResult, error) {
	url := utils.NormalizeURL(rawURL)
	if url == "" {
		return nil, ErrEmptyURL
	}
	emit := func(stage entity.Stage) {
		if opts.OnStatus != nil {
			opts.OnStatus(entity.StatusUpdate{URL: url, Stage: stage, Message: entity.StatusMessage(stage, url)})
		}
	}

	if cached := uc.cached(ctx, url, opts.Force); cached != nil {
		metrics.AuditsTotal.WithLabelValues("cached", "").Inc()
		emit(entity.StageDone)
		return cached, nil
	}

	if err := uc.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for a browser slot: %w", err)
	}
	defer uc.sem.Release(1)
	metrics.AuditsInFlight.Inc()
	defer metrics.AuditsInFlight.Dec()

	start := uc.now()
	slog.Info("Starting audit", "url", url)

	emit(entity.StageFetching)
	fetched, err := uc.browser.Fetch(ctx, url, uc.cfg.ScreenshotPath(url))
	if err != nil {
		emit(entity.StageFailed)
		return nil, uc.handleFailure(ctx, url, err)
	}

	emit(entity.StageAnalyzing)
	findings, checks, err := uc.analyzer.Analyze(fetched.HTML)
	if err != nil {
		emit(entity.StageFailed)
		return nil, uc.handleFailure(ctx, url, fmt.Errorf("%w: %w", ErrAnalysisFailed, err))
	}

	emit(entity.StageValidating)
	validation := uc.validator.Validate(ctx, fetched.HTML)

	result := &entity.AuditResult{
		ID:              uuid.NewString(),
		URL:             url,
		AuditedAt:       uc.now().UTC(),
		FetchDurationMS: fetched.DurationMS,
		PageLoadMS:      fetched.PageLoadMS,
		ScreenshotPath:  fetched.ScreenshotPath,
		RawHTML:         fetched.HTML,
		Findings:        findings,
		Checks:          checks,
		Validation:      validation,
	}

	duration := uc.now().Sub(start)
	metrics.AuditDuration.WithLabelValues(utils.Hostname(url)).Observe(duration.Seconds())
	metrics.AuditsTotal.WithLabelValues("success", "").Inc()
	slog.Info("Audit finished", "url", url, "duration_ms", duration.Milliseconds(), "valid", validation.Valid)

	uc.store(ctx, result)
	emit(entity.StageDone)
	return result, nil
}

// cached returns a cached result, or nil when there is none or force is set.
// Cache errors only cost a fresh audit.
func (uc *auditUseCase) cached(ctx context.Context, url string, force bool) *entity.AuditResult {
	if uc.cfg.Cache == nil {
		return nil
	}
	if force {
		if err := uc.cfg.Cache.Invalidate(ctx, url); err != nil {
			slog.Warn("Failed to invalidate cached result for forced audit", "url", url, "error", err)
		}
		return nil
	}
	res, err := uc.cfg.Cache.Get(ctx, url)
	if err != nil {
		slog.Warn("Result cache lookup failed", "url", url, "error", err)
		return nil
	}
	if res != nil {
		slog.Debug("Serving cached audit", "url", url, "id", res.ID)
	}
	return res
}

// store persists a finished audit. Failures are logged, the audit itself
// already succeeded.
func (uc *auditUseCase) store(ctx context.Context, result *entity.AuditResult) {
	if uc.cfg.Results != nil {
		if err := uc.cfg.Results.Save(ctx, result); err != nil {
			slog.Error("Failed to save audit result", "url", result.URL, "error", err)
		}
	}
	if uc.cfg.Failures != nil {
		if err := uc.cfg.Failures.Delete(ctx, result.URL); err != nil {
			slog.Warn("Failed to clear audit failure after successful audit", "url", result.URL, "error", err)
		}
	}
	if uc.cfg.Cache != nil {
		if err := uc.cfg.Cache.Set(ctx, result, uc.cfg.CacheTTL); err != nil {
			slog.Warn("Failed to cache audit result", "url", result.URL, "error", err)
		}
	}
}

func (uc *auditUseCase) handleFailure(ctx context.Context, url string, auditErr error) error {
	errorType := ErrorType(auditErr)
	metrics.AuditsTotal.WithLabelValues("failure", errorType).Inc()
	slog.Error("Audit failed", "url", url, "error_type", errorType, "error", auditErr)

	if uc.cfg.Failures != nil {
		failure := &entity.AuditFailure{
			URL:           url,
			Reason:        auditErr.Error(),
			ErrorType:     errorType,
			LastAttemptAt: uc.now().UTC(),
		}
		if err := uc.cfg.Failures.Record(ctx, failure); err != nil {
			slog.Warn("Failed to record audit failure", "url", url, "error", err)
		}
	}
	return fmt.Errorf("audit %s: %w", url, auditErr)
}

// ErrorType names the failure kind of err for metrics labels and API responses.
func ErrorType(err error) string {
	switch {
	case errors.Is(err, repository.ErrFetchTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, repository.ErrBrowserStart):
		return "browser"
	case errors.Is(err, repository.ErrNavigationFailed):
		return "navigation"
	case errors.Is(err, repository.ErrCaptureFailed):
		return "capture"
	case errors.Is(err, ErrAnalysisFailed):
		return "analysis"
	default:
		return "unknown"
	}
}
