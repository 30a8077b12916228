package main

import (
	"github.com/user/html5-auditor/internal/adapter/chromedp_browser"
	"github.com/user/html5-auditor/internal/adapter/vnu"
	"github.com/user/html5-auditor/internal/analyzer"
	"github.com/user/html5-auditor/internal/usecase"
	"github.com/user/html5-auditor/pkg/config"
)

// newAuditor builds the single-user pipeline: one browser at a time and a
// fixed screenshot path.
func newAuditor(cfg *config.Config) usecase.Auditor {
	fetcher := chromedp_browser.NewChromedpFetcher(cfg.PageLoadTimeout(), cfg.SettleDelay())
	validator := vnu.NewValidator(cfg.ValidatorDir, cfg.ValidatorTimeout())
	an := analyzer.New(analyzer.TitleBounds{Min: cfg.TitleMinLength, Max: cfg.TitleMaxLength})

	return usecase.NewAuditUseCase(fetcher, validator, an, usecase.Config{
		MaxConcurrency: 1,
		ScreenshotPath: usecase.FixedScreenshotPath(cfg.ScreenshotPath),
	})
}

func newInstaller(cfg *config.Config) *vnu.Installer {
	return vnu.NewInstaller(cfg.ValidatorDir, cfg.ValidatorURL, cfg.DownloadTimeout())
}
