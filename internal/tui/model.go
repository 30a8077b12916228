// Package tui is the interactive terminal front end: a URL input, a scrolling
// report and a status line, driven by a single bubbletea event loop.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/user/html5-auditor/internal/entity"
	"github.com/user/html5-auditor/internal/report"
	"github.com/user/html5-auditor/internal/repository"
	"github.com/user/html5-auditor/internal/usecase"
)

const updateBuffer = 32

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			PaddingLeft(1)

	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("110"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")).
			Italic(true)
)

// Messages delivered to Update. Workers never touch the model; they only
// send these.
type statusMsg entity.StatusUpdate

type progressMsg struct {
	downloaded, total int64
}

type auditDoneMsg struct {
	result  *entity.AuditResult
	preview report.PreviewResult
	err     error
}

type downloadDoneMsg struct {
	err error
}

type savedMsg struct {
	path string
	err  error
}

// Options configure the model's file locations.
type Options struct {
	ReportPath  string
	PreviewPath string
}

type Model struct {
	auditor   usecase.Auditor
	installer repository.ValidatorInstaller
	opts      Options

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	styles   report.Styles

	updates chan tea.Msg
	status  string
	running bool
	result  *entity.AuditResult
	preview report.PreviewResult
	errText string
	width   int
	height  int
}

// New builds the model. installer may be nil, in which case no download is
// attempted.
func New(auditor usecase.Auditor, installer repository.ValidatorInstaller, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "https://example.com"
	ti.Prompt = "URL: "
	ti.CharLimit = 2048
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	return Model{
		auditor:   auditor,
		installer: installer,
		opts:      opts,
		input:     ti,
		viewport:  viewport.New(80, 20),
		spinner:   sp,
		styles:    report.DefaultStyles(),
		updates:   make(chan tea.Msg, updateBuffer),
		status:    "Ready",
		preview:   report.PreviewResult{Placeholder: "Preview will appear here."},
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.waitForUpdate()}
	if m.installer != nil && !m.installer.Installed() {
		cmds = append(cmds, m.download())
	}
	return tea.Batch(cmds...)
}

// waitForUpdate relays one message from the worker channel into the loop.
// It is re-armed after every relayed message.
func (m Model) waitForUpdate() tea.Cmd {
	ch := m.updates
	return func() tea.Msg {
		return <-ch
	}
}

// download runs the one-time validator install independently of audits.
func (m Model) download() tea.Cmd {
	installer, ch := m.installer, m.updates
	return func() tea.Msg {
		err := installer.Install(context.Background(), func(downloaded, total int64) {
			select {
			case ch <- progressMsg{downloaded, total}:
			default:
				// The loop is behind; the next chunk reports again.
			}
		})
		return downloadDoneMsg{err: err}
	}
}

func (m Model) runAudit(url string) tea.Cmd {
	auditor, ch, previewPath := m.auditor, m.updates, m.opts.PreviewPath
	return func() tea.Msg {
		res, err := auditor.Audit(context.Background(), url, usecase.Options{
			OnStatus: func(u entity.StatusUpdate) { ch <- statusMsg(u) },
		})
		if err != nil {
			return auditDoneMsg{err: err, preview: report.PreviewResult{Placeholder: report.NoPreview}}
		}
		return auditDoneMsg{result: res, preview: report.Preview(res.ScreenshotPath, previewPath)}
	}
}

func saveReport(path, text string) tea.Cmd {
	return func() tea.Msg {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return savedMsg{path: path, err: err}
			}
		}
		return savedMsg{path: path, err: os.WriteFile(path, []byte(text), 0o644)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = max(msg.Width-4, 20)
		m.viewport.Height = max(msg.Height-9, 5)
		m.input.Width = max(msg.Width-10, 20)
		m.refresh()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			return m.startAudit()
		case "ctrl+s":
			switch {
			case m.result != nil:
				return m, saveReport(m.opts.ReportPath, report.Build(m.result).Text())
			case m.errText != "":
				return m, saveReport(m.opts.ReportPath, m.errText+"\n")
			}
			m.status = "No report to save."
			return m, nil
		case "pgup", "pgdown", "up", "down":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case statusMsg:
		m.status = msg.Message
		return m, m.waitForUpdate()

	case progressMsg:
		m.status = entity.DownloadStatus(msg.downloaded, msg.total)
		return m, m.waitForUpdate()

	case downloadDoneMsg:
		if msg.err != nil {
			m.status = "vnu.jar download failed"
		} else {
			m.status = "vnu.jar downloaded, full HTML5 validation available"
		}
		return m, nil

	case auditDoneMsg:
		m.running = false
		m.preview = msg.preview
		if msg.err != nil {
			m.errText = "Error: " + msg.err.Error()
			m.status = "Ready"
		} else {
			m.result = msg.result
			m.status = "Ready"
		}
		m.refresh()
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.status = "Could not save report: " + msg.err.Error()
		} else {
			m.status = "Report saved to " + msg.path
		}
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// startAudit drops the previous result and launches one audit. Enter is
// ignored while an audit is running.
func (m Model) startAudit() (tea.Model, tea.Cmd) {
	if m.running {
		return m, nil
	}
	url := strings.TrimSpace(m.input.Value())
	if url == "" {
		m.status = "Please enter a URL to scan."
		return m, nil
	}

	m.running = true
	m.result = nil
	m.errText = ""
	m.preview = report.PreviewResult{Placeholder: "Preview will appear here."}
	m.status = "Queued, starting audit..."
	m.refresh()
	return m, tea.Batch(m.runAudit(url), m.spinner.Tick)
}

func (m *Model) refresh() {
	switch {
	case m.errText != "":
		m.viewport.SetContent(m.errText)
	case m.result != nil:
		m.viewport.SetContent(report.Build(m.result).ANSI(m.styles))
	default:
		m.viewport.SetContent("")
	}
	m.viewport.GotoTop()
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("HTML5 + SEO Auditor"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(borderStyle.Render(m.viewport.View()))
	b.WriteString("\n")

	preview := m.preview.Placeholder
	if m.preview.Path != "" {
		preview = "Preview: " + m.preview.Path
	}
	b.WriteString(helpStyle.Render(preview))
	b.WriteString("\n")

	status := "Status: " + m.status
	if m.running {
		status = m.spinner.View() + " " + status
	}
	b.WriteString(statusStyle.Render(status))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("enter: scan • ctrl+s: save to %s • ↑/↓: scroll • esc: quit", m.opts.ReportPath)))
	return b.String()
}

// Run starts the program and blocks until the user quits.
func Run(auditor usecase.Auditor, installer repository.ValidatorInstaller, opts Options) error {
	_, err := tea.NewProgram(New(auditor, installer, opts), tea.WithAltScreen()).Run()
	return err
}
