package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/html5-auditor/internal/entity"
)

// Styles maps severities and line kinds to terminal styles.
type Styles struct {
	Healthy lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Unknown lipgloss.Style
	Label   lipgloss.Style
	Section lipgloss.Style
	Header  lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Healthy: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Unknown: lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
		Label:   lipgloss.NewStyle().Bold(true),
		Section: lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("63")),
		Header:  lipgloss.NewStyle().Foreground(lipgloss.Color("110")),
	}
}

// PlainStyles renders without any escape sequences.
func PlainStyles() Styles {
	s := lipgloss.NewStyle()
	return Styles{Healthy: s, Warning: s, Error: s, Unknown: s, Label: s, Section: s, Header: s}
}

func (s Styles) severity(sev entity.Severity) lipgloss.Style {
	switch sev {
	case entity.SeverityHealthy:
		return s.Healthy
	case entity.SeverityWarning:
		return s.Warning
	case entity.SeverityError:
		return s.Error
	default:
		return s.Unknown
	}
}

// ANSI renders the report with s. Labels are bold, values are colored by
// severity and detail rows without a severity stay uncolored.
func (r Report) ANSI(s Styles) string {
	var sb strings.Builder
	for _, l := range r.Lines {
		sb.WriteString(s.line(l))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (s Styles) line(l Line) string {
	switch l.Kind {
	case KindHeader:
		return s.Header.Render(l.Text)
	case KindSection:
		return s.Section.Render(l.Text)
	case KindCheck:
		return s.Label.Render("- "+l.Label+":") + " " + s.severity(l.Severity).Render(body(l))
	case KindGroup:
		return s.Label.Render("- " + l.Label + ":")
	case KindDetail:
		if l.Glyph {
			return "    " + s.severity(l.Severity).Render(detail(l))
		}
		return "    " + detail(l)
	case KindNote:
		return s.severity(l.Severity).Render("- " + body(l))
	default:
		return ""
	}
}
