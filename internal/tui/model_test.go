package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/html5-auditor/internal/entity"
	"github.com/user/html5-auditor/internal/usecase"
)

type fakeAuditor struct {
	result *entity.AuditResult
	err    error
}

func (f *fakeAuditor) Audit(ctx context.Context, rawURL string, opts usecase.Options) (*entity.AuditResult, error) {
	if opts.OnStatus != nil {
		opts.OnStatus(entity.StatusUpdate{URL: rawURL, Stage: entity.StageFetching, Message: entity.StatusMessage(entity.StageFetching, rawURL)})
	}
	return f.result, f.err
}

type fakeInstaller struct {
	installed bool
	err       error
}

func (f *fakeInstaller) Installed() bool { return f.installed }

func (f *fakeInstaller) Install(ctx context.Context, progress func(int64, int64)) error {
	progress(50, 100)
	return f.err
}

func sampleResult() *entity.AuditResult {
	valid := true
	return &entity.AuditResult{
		URL:            "http://example.com",
		ScreenshotPath: "does-not-exist.png",
		Checks: entity.Checks{
			Doctype: entity.Check{Name: "DOCTYPE", Severity: entity.SeverityHealthy, Value: "<!DOCTYPE html>"},
		},
		Validation: entity.ValidationResult{Available: true, Valid: &valid},
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func TestEnter_EmptyURL(t *testing.T) {
	m := New(&fakeAuditor{}, nil, Options{})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, m.running)
	assert.Equal(t, "Please enter a URL to scan.", m.status)
}

func TestAuditFlow(t *testing.T) {
	dir := t.TempDir()
	a := &fakeAuditor{result: sampleResult()}
	m := New(a, nil, Options{ReportPath: filepath.Join(dir, "audit_report.txt"), PreviewPath: filepath.Join(dir, "small.png")})
	m.input.SetValue("example.com")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.running)

	// A second Enter while running does nothing.
	_, again := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, again)

	done := m.runAudit("example.com")()
	status := <-m.updates
	m, _ = update(t, m, status)
	assert.Equal(t, "Fetching example.com...", m.status)

	m, _ = update(t, m, done)
	assert.False(t, m.running)
	require.NotNil(t, m.result)
	assert.Equal(t, "No preview.", m.preview.Placeholder)
	assert.Contains(t, m.viewport.View(), "Website Audit: http://example.com")

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, "Report saved to "+m.opts.ReportPath, m.status)

	saved, err := os.ReadFile(m.opts.ReportPath)
	require.NoError(t, err)
	assert.Contains(t, string(saved), "- DOCTYPE: ✅ <!DOCTYPE html>")
}

func TestAuditFailure(t *testing.T) {
	reportPath := filepath.Join(t.TempDir(), "audit_report.txt")
	m := New(&fakeAuditor{err: errors.New("navigation failed: net::ERR_NAME_NOT_RESOLVED")}, nil, Options{ReportPath: reportPath})
	m.input.SetValue("nope.invalid")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	done := m.runAudit("nope.invalid")()
	<-m.updates
	m, _ = update(t, m, done)

	assert.Nil(t, m.result)
	assert.Equal(t, "No preview.", m.preview.Placeholder)
	assert.Contains(t, m.viewport.View(), "Error: navigation failed")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, "Report saved to "+reportPath, m.status)

	saved, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Equal(t, "Error: navigation failed: net::ERR_NAME_NOT_RESOLVED\n", string(saved))
}

func TestSave_NothingOnScreen(t *testing.T) {
	m := New(&fakeAuditor{}, nil, Options{})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Nil(t, cmd)
	assert.Equal(t, "No report to save.", m.status)
}

func TestDownload(t *testing.T) {
	inst := &fakeInstaller{}
	m := New(&fakeAuditor{}, inst, Options{})

	done := m.download()()
	progress := <-m.updates

	m, cmd := update(t, m, progress)
	assert.Equal(t, "Downloading vnu.jar (50%)", m.status)
	assert.NotNil(t, cmd, "relay is re-armed")

	m, _ = update(t, m, done)
	assert.Equal(t, "vnu.jar downloaded, full HTML5 validation available", m.status)

	inst.err = errors.New("connection reset")
	m, _ = update(t, m, m.download()())
	assert.Equal(t, "vnu.jar download failed", m.status)
}

func TestInit_SkipsDownloadWhenInstalled(t *testing.T) {
	m := New(&fakeAuditor{}, &fakeInstaller{installed: true}, Options{})
	assert.NotNil(t, m.Init())
}

func TestView(t *testing.T) {
	m := New(&fakeAuditor{}, nil, Options{ReportPath: "audit_report.txt"})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	v := m.View()
	assert.Contains(t, v, "HTML5 + SEO Auditor")
	assert.Contains(t, v, "Status: Ready")
	assert.Contains(t, v, "Preview will appear here.")
	assert.Contains(t, v, "audit_report.txt")
}
