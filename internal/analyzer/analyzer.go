package analyzer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/user/html5-auditor/internal/entity"
)

const h1PreviewRunes = 50

// Check names as they appear in reports.
const (
	CheckDoctype      = "DOCTYPE"
	CheckLang         = "HTML <lang>"
	CheckTitle        = "Title Tag"
	CheckH1           = "H1 Tags"
	CheckCanonical    = "Canonical Tag"
	CheckIndexing     = "Indexing"
	CheckFollowing    = "Following Links"
	CheckSnippets     = "Snippets"
	CheckImagePreview = "Image Previews"
	CheckImageAlt     = "Image Alts"
	CheckOpenGraph    = "OpenGraph Tags"
	CheckTwitterCards = "Twitter Cards"
)

// TitleBounds is the inclusive range of title lengths, in characters,
// considered healthy.
type TitleBounds struct {
	Min int
	Max int
}

// DefaultTitleBounds matches the range most SERPs display in full.
var DefaultTitleBounds = TitleBounds{Min: 10, Max: 70}

// Analyzer turns rendered markup into findings and classified checks.
type Analyzer struct {
	title TitleBounds
}

func New(title TitleBounds) *Analyzer {
	return &Analyzer{title: title}
}

// Analyze extracts and classifies in one step.
func (a *Analyzer) Analyze(htmlContent string) (entity.Findings, entity.Checks, error) {
	f, err := Extract(htmlContent)
	if err != nil {
		return entity.Findings{}, entity.Checks{}, err
	}
	return f, a.Classify(f), nil
}

// Classify maps findings to severities using fixed thresholds.
func (a *Analyzer) Classify(f entity.Findings) entity.Checks {
	return entity.Checks{
		Doctype:      presence(CheckDoctype, f.Doctype),
		Lang:         presence(CheckLang, f.Lang),
		Title:        a.classifyTitle(f.Title),
		H1:           classifyH1(f.H1s),
		Canonical:    presence(CheckCanonical, f.Canonical),
		Robots:       classifyRobots(f.Robots),
		ImageAlt:     classifyImages(f),
		OpenGraph:    classifyTags(CheckOpenGraph, f.OpenGraph),
		TwitterCards: classifyTags(CheckTwitterCards, f.TwitterCards),
	}
}

func presence(name, value string) entity.Check {
	if value == "" {
		return entity.Check{Name: name, Severity: entity.SeverityError, Value: "Missing"}
	}
	return entity.Check{Name: name, Severity: entity.SeverityHealthy, Value: value}
}

// ClassifyTitleLength reports the severity of a title of n characters.
func (a *Analyzer) ClassifyTitleLength(n int) entity.Severity {
	switch {
	case n == 0:
		return entity.SeverityError
	case n >= a.title.Min && n <= a.title.Max:
		return entity.SeverityHealthy
	default:
		return entity.SeverityWarning
	}
}

func (a *Analyzer) classifyTitle(title string) entity.Check {
	if title == "" {
		return entity.Check{Name: CheckTitle, Severity: entity.SeverityError, Value: "Missing"}
	}
	n := utf8.RuneCountInString(title)
	return entity.Check{
		Name:     CheckTitle,
		Severity: a.ClassifyTitleLength(n),
		Value:    fmt.Sprintf("'%s' (%d chars)", title, n),
	}
}

func classifyH1(h1s []string) entity.Check {
	switch len(h1s) {
	case 0:
		return entity.Check{Name: CheckH1, Severity: entity.SeverityError, Value: "No H1 tag found"}
	case 1:
		return entity.Check{Name: CheckH1, Severity: entity.SeverityHealthy, Value: fmt.Sprintf("Found 1 H1: '%s'", truncate(h1s[0], h1PreviewRunes))}
	default:
		return entity.Check{Name: CheckH1, Severity: entity.SeverityWarning, Value: fmt.Sprintf("Found %d H1 tags (consider 1)", len(h1s))}
	}
}

func classifyRobots(r entity.RobotsDirectives) []entity.Check {
	directive := func(name, value string) entity.Check {
		sev := entity.SeverityHealthy
		if value == entity.RobotsDisallowed || value == entity.ImagePreviewNone {
			sev = entity.SeverityError
		}
		return entity.Check{Name: name, Severity: sev, Value: value}
	}
	return []entity.Check{
		directive(CheckIndexing, r.Indexing),
		directive(CheckFollowing, r.Following),
		directive(CheckSnippets, r.Snippets),
		directive(CheckImagePreview, r.ImagePreview),
	}
}

func classifyImages(f entity.Findings) entity.Check {
	if len(f.Images) == 0 {
		return entity.Check{Name: CheckImageAlt, Severity: entity.SeverityWarning, Value: "No images found"}
	}
	missing := f.ImagesMissingAlt()
	sev := entity.SeverityHealthy
	if missing > 0 {
		sev = entity.SeverityWarning
	}
	return entity.Check{
		Name:     CheckImageAlt,
		Severity: sev,
		Value:    fmt.Sprintf("%d/%d missing alt text", missing, len(f.Images)),
	}
}

func classifyTags(name string, tags []string) entity.Check {
	if len(tags) == 0 {
		return entity.Check{Name: name, Severity: entity.SeverityError, Value: "Found 0"}
	}
	return entity.Check{
		Name:     name,
		Severity: entity.SeverityHealthy,
		Value:    fmt.Sprintf("Found %d: %s", len(tags), strings.Join(tags, ", ")),
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
