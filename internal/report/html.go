package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	markdown = goldmark.New()
	policy   = bluemonday.UGCPolicy()
)

// Markdown renders the report as a Markdown document.
func (r Report) Markdown() string {
	var sb strings.Builder
	headerDone := false
	for _, l := range r.Lines {
		switch l.Kind {
		case KindHeader:
			if !headerDone {
				sb.WriteString("# " + escapeMarkdown(l.Text) + "\n\n")
				headerDone = true
				continue
			}
			sb.WriteString(escapeMarkdown(l.Text) + "  \n")
		case KindSection:
			sb.WriteString("\n## " + escapeMarkdown(l.Text) + "\n\n")
		case KindCheck:
			fmt.Fprintf(&sb, "- **%s:** %s\n", escapeMarkdown(l.Label), escapeMarkdown(body(l)))
		case KindGroup:
			fmt.Fprintf(&sb, "- **%s:**\n", escapeMarkdown(l.Label))
		case KindDetail:
			if l.Glyph {
				fmt.Fprintf(&sb, "    - %s %s: %s\n", Glyph(l.Severity), escapeMarkdown(l.Label), escapeMarkdown(l.Text))
			} else {
				fmt.Fprintf(&sb, "    - `%s`: %s\n", codeSpan(l.Label), escapeMarkdown(l.Text))
			}
		case KindNote:
			sb.WriteString("- " + escapeMarkdown(body(l)) + "\n")
		}
	}
	return sb.String()
}

// HTML renders the report to an HTML fragment. Page content such as titles
// and validator messages passes through the sanitizer.
func (r Report) HTML() (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(r.Markdown()), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return policy.Sanitize(buf.String()), nil
}

const markdownSpecials = "\\`*_{}[]<>()#+-.!|~&"

func escapeMarkdown(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if strings.ContainsRune(markdownSpecials, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// codeSpan keeps backticks from closing the span early.
func codeSpan(s string) string {
	return strings.ReplaceAll(s, "`", "'")
}
