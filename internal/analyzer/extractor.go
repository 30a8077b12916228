package analyzer

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/user/html5-auditor/internal/entity"
)

const (
	openGraphPrefix   = "og:"
	twitterCardPrefix = "twitter:"
)

// Extract parses rendered markup and collects the raw audit signals.
// It performs no I/O.
func Extract(htmlContent string) (entity.Findings, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return entity.Findings{}, fmt.Errorf("parse html: %w", err)
	}

	f := entity.Findings{
		H1s:          []string{},
		Images:       []entity.ImageInfo{},
		OpenGraph:    []string{},
		TwitterCards: []string{},
	}

	f.Doctype = doctypeOf(doc)
	f.Lang = strings.TrimSpace(doc.Find("html").First().AttrOr("lang", ""))

	if title := doc.Find("title").First(); title.Length() > 0 {
		f.Title = strings.TrimSpace(title.Text())
	}

	doc.Find("h1").Each(func(i int, s *goquery.Selection) {
		f.H1s = append(f.H1s, strings.TrimSpace(s.Text()))
	})

	if canonical := doc.Find(`link[rel~="canonical"]`).First(); canonical.Length() > 0 {
		f.Canonical = strings.TrimSpace(canonical.AttrOr("href", ""))
	}

	robots := doc.Find("meta[name]").FilterFunction(func(i int, s *goquery.Selection) bool {
		return strings.EqualFold(strings.TrimSpace(s.AttrOr("name", "")), "robots")
	}).First()
	f.RobotsContent = robots.AttrOr("content", "")
	f.Robots = ParseRobots(f.RobotsContent)

	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		img := entity.ImageInfo{Src: s.AttrOr("src", ""), Alt: s.AttrOr("alt", "")}
		if img.Alt != "" {
			f.ImagesWithAlt++
		}
		f.Images = append(f.Images, img)
	})

	doc.Find(fmt.Sprintf(`meta[property^="%s"]`, openGraphPrefix)).Each(func(i int, s *goquery.Selection) {
		f.OpenGraph = append(f.OpenGraph, s.AttrOr("property", ""))
	})
	doc.Find(fmt.Sprintf(`meta[name^="%s"]`, twitterCardPrefix)).Each(func(i int, s *goquery.Selection) {
		f.TwitterCards = append(f.TwitterCards, s.AttrOr("name", ""))
	})

	return f, nil
}

// doctypeOf renders the document's doctype declaration, or "" when absent.
func doctypeOf(doc *goquery.Document) string {
	if len(doc.Nodes) == 0 {
		return ""
	}
	for n := doc.Nodes[0].FirstChild; n != nil; n = n.NextSibling {
		if n.Type != html.DoctypeNode {
			continue
		}
		var b strings.Builder
		b.WriteString("<!DOCTYPE ")
		b.WriteString(n.Data)
		for _, a := range n.Attr {
			switch a.Key {
			case "public":
				fmt.Fprintf(&b, ` PUBLIC "%s"`, a.Val)
			case "system":
				fmt.Fprintf(&b, ` "%s"`, a.Val)
			}
		}
		b.WriteString(">")
		return b.String()
	}
	return ""
}

// ParseRobots decomposes a robots meta content string by literal token presence.
func ParseRobots(content string) entity.RobotsDirectives {
	content = strings.ToLower(content)

	allowedUnless := func(token string) string {
		if strings.Contains(content, token) {
			return entity.RobotsDisallowed
		}
		return entity.RobotsAllowed
	}

	preview := entity.ImagePreviewNotSpecified
	switch {
	case strings.Contains(content, "max-image-preview:large"):
		preview = entity.ImagePreviewLarge
	case strings.Contains(content, "max-image-preview:standard"):
		preview = entity.ImagePreviewStandard
	case strings.Contains(content, "max-image-preview:none"):
		preview = entity.ImagePreviewNone
	}

	return entity.RobotsDirectives{
		Indexing:     allowedUnless("noindex"),
		Following:    allowedUnless("nofollow"),
		Snippets:     allowedUnless("nosnippet"),
		ImagePreview: preview,
	}
}
