package chromedp_browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/user/html5-auditor/internal/entity"
	"github.com/user/html5-auditor/internal/repository"
	"github.com/user/html5-auditor/pkg/metrics"
)

const (
	userAgent    = `Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36`
	windowWidth  = 1400
	windowHeight = 1000

	pageLoadScript = `performance.timing.loadEventEnd - performance.timing.navigationStart`
)

type ChromedpFetcher struct {
	timeout     time.Duration
	settleDelay time.Duration
	execPath    string
}

// NewChromedpFetcher creates a fetcher that starts a fresh headless browser
// for every call.
func NewChromedpFetcher(pageLoadTimeout, settleDelay time.Duration) *ChromedpFetcher {
	return &ChromedpFetcher{
		timeout:     pageLoadTimeout,
		settleDelay: settleDelay,
	}
}

var _ repository.BrowserRepository = (*ChromedpFetcher)(nil)

// WithExecPath pins the browser binary instead of letting chromedp search for one.
func (f *ChromedpFetcher) WithExecPath(path string) *ChromedpFetcher {
	f.execPath = path
	return f
}

func (f *ChromedpFetcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(windowWidth, windowHeight),
		chromedp.UserAgent(userAgent),
	)
	if f.execPath != "" {
		opts = append(opts, chromedp.ExecPath(f.execPath))
	}
	return opts
}

// Fetch loads url, waits for the settle delay and captures the serialized
// document and a screenshot. The browser is torn down before returning.
func (f *ChromedpFetcher) Fetch(ctx context.Context, url, screenshotPath string) (*entity.FetchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, f.allocatorOptions()...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx, chromedp.WithLogf(debugf))
	defer cancelTask()

	// An empty Run starts the browser so launch failures are told apart from
	// navigation failures.
	if err := chromedp.Run(taskCtx); err != nil {
		return nil, classify(ctx, repository.ErrBrowserStart, err)
	}

	start := time.Now()
	if err := chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(f.settleDelay),
	); err != nil {
		slog.Error("Failed to load page", "url", url, "error", err)
		return nil, classify(ctx, repository.ErrNavigationFailed, err)
	}

	var loadMS float64
	if err := chromedp.Run(taskCtx, chromedp.Evaluate(pageLoadScript, &loadMS)); err != nil {
		slog.Debug("Page load timing unavailable", "url", url, "error", err)
		loadMS = 0
	}

	var html string
	var shot []byte
	if err := chromedp.Run(taskCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			root, err := dom.GetDocument().Do(ctx)
			if err != nil {
				return err
			}
			html, err = dom.GetOuterHTML().WithNodeID(root.NodeID).Do(ctx)
			return err
		}),
		chromedp.CaptureScreenshot(&shot),
	); err != nil {
		return nil, classify(ctx, repository.ErrCaptureFailed, err)
	}
	duration := time.Since(start)

	if err := writeScreenshot(screenshotPath, shot); err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrCaptureFailed, err)
	}

	metrics.FetchDuration.Observe(duration.Seconds())
	slog.Info("Fetched page", "url", url, "duration_ms", duration.Milliseconds(), "bytes", len(html))

	return &entity.FetchResult{
		HTML:           html,
		ScreenshotPath: screenshotPath,
		PageLoadMS:     pageLoadEstimate(loadMS),
		DurationMS:     duration.Milliseconds(),
	}, nil
}

// classify reports expiry of the overall deadline as a timeout and anything
// else as kind.
func classify(ctx context.Context, kind, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", repository.ErrFetchTimeout, err)
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// pageLoadEstimate keeps only positive timings; pages that never fired the
// load event report zero or a negative difference.
func pageLoadEstimate(ms float64) *int64 {
	if ms <= 0 {
		return nil
	}
	v := int64(ms)
	return &v
}

func writeScreenshot(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create screenshot dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write screenshot: %w", err)
	}
	return nil
}

func debugf(format string, args ...any) {
	slog.Debug(fmt.Sprintf(format, args...))
}
