package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"

	"github.com/user/html5-auditor/internal/adapter/vnu"
	"github.com/user/html5-auditor/internal/entity"
	"github.com/user/html5-auditor/internal/report"
	"github.com/user/html5-auditor/internal/tui"
	"github.com/user/html5-auditor/internal/usecase"
)

type AuditCmd struct {
	URL        string `arg:"" help:"Page to audit. http:// is assumed when no scheme is given."`
	Output     string `short:"o" help:"Also write the plain-text report to this file." type:"path"`
	NoDownload bool   `help:"Do not download vnu.jar when it is missing."`
	NoColor    bool   `help:"Print the report without colors."`
}

func (c *AuditCmd) Run(app *appContext) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	installer := newInstaller(app.cfg)
	if !installer.Installed() && !c.NoDownload {
		if err := downloadWithSpinner(ctx, installer, os.Stderr); err != nil {
			// The audit still runs; the report says the validator is unavailable.
			slog.Warn("Validator download failed", "error", err)
		}
	}

	s := newSpinner(os.Stderr, "Queued, starting audit...")
	s.Start()
	result, err := newAuditor(app.cfg).Audit(ctx, c.URL, usecase.Options{
		OnStatus: func(u entity.StatusUpdate) { setSuffix(s, u.Message) },
	})
	s.Stop()
	if err != nil {
		return err
	}

	styles := report.DefaultStyles()
	if c.NoColor {
		styles = report.PlainStyles()
	}
	rep := report.Build(result)
	fmt.Fprint(os.Stdout, rep.ANSI(styles))

	preview := report.Preview(result.ScreenshotPath, app.cfg.PreviewPath)
	if preview.Path != "" {
		fmt.Fprintf(os.Stdout, "\nPreview: %s\n", preview.Path)
	} else {
		fmt.Fprintf(os.Stdout, "\n%s\n", preview.Placeholder)
	}

	if c.Output != "" {
		if err := writeReport(c.Output, rep.Text()); err != nil {
			return fmt.Errorf("could not save report: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Report saved to %s\n", c.Output)
	}
	return nil
}

type TUICmd struct {
	NoDownload bool `help:"Do not download vnu.jar when it is missing."`
}

func (c *TUICmd) Run(app *appContext) error {
	var installer *vnu.Installer
	if !c.NoDownload {
		installer = newInstaller(app.cfg)
	}
	opts := tui.Options{ReportPath: app.cfg.ReportPath, PreviewPath: app.cfg.PreviewPath}
	if installer == nil {
		return tui.Run(newAuditor(app.cfg), nil, opts)
	}
	return tui.Run(newAuditor(app.cfg), installer, opts)
}

type InstallValidatorCmd struct {
	Force bool `help:"Download again even when vnu.jar is present."`
}

func (c *InstallValidatorCmd) Run(app *appContext) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	installer := newInstaller(app.cfg)
	if installer.Installed() {
		if !c.Force {
			fmt.Fprintf(os.Stdout, "vnu.jar already present at %s\n", installer.JarPath())
			return nil
		}
		if err := os.Remove(installer.JarPath()); err != nil {
			return fmt.Errorf("remove existing vnu.jar: %w", err)
		}
	}
	if err := downloadWithSpinner(ctx, installer, os.Stderr); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "vnu.jar downloaded to %s\n", installer.JarPath())
	return nil
}

func newSpinner(w io.Writer, suffix string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + suffix
	return s
}

func setSuffix(s *spinner.Spinner, text string) {
	s.Lock()
	s.Suffix = " " + text
	s.Unlock()
}

func downloadWithSpinner(ctx context.Context, installer *vnu.Installer, w io.Writer) error {
	s := newSpinner(w, "Downloading vnu.jar...")
	s.Start()
	defer s.Stop()
	return installer.Install(ctx, func(downloaded, total int64) {
		setSuffix(s, entity.DownloadStatus(downloaded, total))
	})
}

func writeReport(path, text string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(text), 0o644)
}
