// Package report turns an audit result into an ordered, sectioned report and
// renders it as plain text, ANSI-colored text or sanitized HTML.
package report

import (
	"fmt"
	"strings"

	"github.com/user/html5-auditor/internal/entity"
)

// Kind says how a line is laid out.
type Kind int

const (
	KindHeader  Kind = iota // report title and timing lines
	KindSection             // section heading
	KindCheck               // "- Label: <glyph> Text"
	KindGroup               // "- Label:" opening an indented block
	KindDetail              // indented line under a check or group
	KindNote                // "- Text" without a label
	KindBlank
)

const (
	SectionStructure  = "Structure"
	SectionSEO        = "SEO Essentials"
	SectionValidation = "HTML5 Validation & Actionables"
)

// Line is one rendered row of the report.
type Line struct {
	Kind     Kind
	Label    string
	Text     string
	Severity entity.Severity
	// Glyph shows the severity marker in front of Text.
	Glyph bool
}

// Report is the view model handed to renderers.
type Report struct {
	URL   string
	Lines []Line
}

// Glyph is the textual marker for a severity.
func Glyph(s entity.Severity) string {
	switch s {
	case entity.SeverityHealthy:
		return "✅"
	case entity.SeverityWarning:
		return "⚠️"
	case entity.SeverityError:
		return "❌"
	default:
		return "❔"
	}
}

// Build lays out result in the fixed section order.
func Build(result *entity.AuditResult) Report {
	b := &builder{}

	b.add(Line{Kind: KindHeader, Text: "Website Audit: " + result.URL})
	b.add(Line{Kind: KindHeader, Text: fmt.Sprintf("Audit Duration: Fetched in %dms", result.FetchDurationMS)})
	b.add(Line{Kind: KindHeader, Text: "Estimated Page Load: " + pageLoad(result.PageLoadMS)})
	b.add(Line{Kind: KindBlank})

	c := result.Checks
	b.section(SectionStructure)
	b.check(c.Doctype)
	b.check(c.Lang)

	b.add(Line{Kind: KindBlank})
	b.section(SectionSEO)
	b.check(c.Title)
	b.check(c.H1)
	b.check(c.Canonical)
	b.add(Line{Kind: KindGroup, Label: "Robots Meta"})
	for _, rc := range c.Robots {
		b.add(Line{Kind: KindDetail, Label: rc.Name, Text: rc.Value, Severity: rc.Severity, Glyph: true})
	}
	b.check(c.ImageAlt)
	for _, img := range result.Findings.Images {
		b.add(Line{Kind: KindDetail, Label: orDefault(img.Src, "(no src)"), Text: orDefault(img.Alt, "(missing alt)")})
	}
	b.check(c.OpenGraph)
	b.check(c.TwitterCards)

	b.add(Line{Kind: KindBlank})
	b.section(SectionValidation)
	b.validation(result.Validation)

	return Report{URL: result.URL, Lines: b.lines}
}

func pageLoad(ms *int64) string {
	if ms == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2fs", float64(*ms)/1000)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

type builder struct {
	lines []Line
}

func (b *builder) add(l Line) {
	b.lines = append(b.lines, l)
}

func (b *builder) section(title string) {
	b.add(Line{Kind: KindSection, Text: title})
}

func (b *builder) check(c entity.Check) {
	b.add(Line{Kind: KindCheck, Label: c.Name, Text: c.Value, Severity: c.Severity, Glyph: true})
}

func (b *builder) validation(v entity.ValidationResult) {
	if !v.Available {
		reason := v.Error
		if reason == "" {
			reason = "vnu.jar or Java missing"
		}
		b.add(Line{Kind: KindNote, Text: "Validator unavailable: " + reason, Severity: entity.SeverityUnknown})
		b.add(Line{Kind: KindNote, Text: "Performing basic structural checks instead.", Severity: entity.SeverityUnknown})
		return
	}
	switch {
	case v.Valid == nil:
		b.add(Line{Kind: KindNote, Text: "Validation run but result unknown: " + v.Error, Severity: entity.SeverityUnknown})
	case *v.Valid:
		b.add(Line{Kind: KindNote, Text: "Page is valid HTML5 (no errors)", Severity: entity.SeverityHealthy, Glyph: true})
	default:
		b.add(Line{Kind: KindNote, Text: fmt.Sprintf("Page has %d HTML5 issues", len(v.Messages)), Severity: entity.SeverityError, Glyph: true})
		b.add(Line{Kind: KindGroup, Label: "Actionable tips"})
		for _, m := range v.Messages {
			b.add(Line{Kind: KindDetail, Label: diagnosticLabel(m), Text: m.Text()})
		}
	}
}

// diagnosticLabel renders "ERROR line 12"; the line is left out when unknown.
func diagnosticLabel(d entity.Diagnostic) string {
	typ := strings.ToUpper(orDefault(d.Type, "info"))
	if n := d.Line(); n > 0 {
		return fmt.Sprintf("%s line %d", typ, n)
	}
	return typ
}

// Text renders the report without colors, as written to report files.
func (r Report) Text() string {
	var sb strings.Builder
	for _, l := range r.Lines {
		sb.WriteString(plainLine(l))
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func body(l Line) string {
	if l.Glyph {
		return Glyph(l.Severity) + " " + l.Text
	}
	return l.Text
}

func plainLine(l Line) string {
	switch l.Kind {
	case KindCheck:
		return "- " + l.Label + ": " + body(l)
	case KindGroup:
		return "- " + l.Label + ":"
	case KindDetail:
		return "    " + detail(l)
	case KindNote:
		return "- " + body(l)
	case KindBlank:
		return ""
	default:
		return l.Text
	}
}

// detail renders an indented row. Robots rows carry the glyph before the
// label, image and diagnostic rows read "label: text".
func detail(l Line) string {
	if l.Glyph {
		return Glyph(l.Severity) + " " + l.Label + ": " + l.Text
	}
	return "- " + l.Label + ": " + l.Text
}
