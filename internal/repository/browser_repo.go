package repository

import (
	"context"

	"github.com/user/html5-auditor/internal/entity"
)

// BrowserRepository defines the contract for loading a page in a headless browser.
type BrowserRepository interface {
	// Fetch loads url, waits for it to settle and returns the rendered markup,
	// a screenshot written to screenshotPath and timing information.
	Fetch(ctx context.Context, url, screenshotPath string) (*entity.FetchResult, error)
}
