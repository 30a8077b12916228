package entity

import "time"

// ImageInfo is one <img> element found on the page.
type ImageInfo struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// RobotsDirectives is the decomposition of a robots meta content string.
type RobotsDirectives struct {
	Indexing     string `json:"indexing"`
	Following    string `json:"following"`
	Snippets     string `json:"snippets"`
	ImagePreview string `json:"image_preview"`
}

const (
	RobotsAllowed    = "Allowed"
	RobotsDisallowed = "Disallowed"

	ImagePreviewLarge        = "Large"
	ImagePreviewStandard     = "Standard"
	ImagePreviewNone         = "None"
	ImagePreviewNotSpecified = "Not specified"
)

// Findings holds the raw signals extracted from the rendered document.
type Findings struct {
	Doctype       string           `json:"doctype,omitempty"` // empty when missing
	Lang          string           `json:"lang,omitempty"`
	Title         string           `json:"title,omitempty"`
	H1s           []string         `json:"h1s"`
	Canonical     string           `json:"canonical,omitempty"`
	RobotsContent string           `json:"robots_content"`
	Robots        RobotsDirectives `json:"robots"`
	Images        []ImageInfo      `json:"images"`
	ImagesWithAlt int              `json:"images_with_alt"`
	OpenGraph     []string         `json:"open_graph"`
	TwitterCards  []string         `json:"twitter_cards"`
}

// ImagesMissingAlt is the number of images without a non-empty alt attribute.
func (f Findings) ImagesMissingAlt() int {
	return len(f.Images) - f.ImagesWithAlt
}

// Checks holds the classified version of Findings.
type Checks struct {
	Doctype      Check   `json:"doctype"`
	Lang         Check   `json:"lang"`
	Title        Check   `json:"title"`
	H1           Check   `json:"h1"`
	Canonical    Check   `json:"canonical"`
	Robots       []Check `json:"robots"` // indexing, following, snippets, image previews
	ImageAlt     Check   `json:"image_alt"`
	OpenGraph    Check   `json:"open_graph"`
	TwitterCards Check   `json:"twitter_cards"`
}

// FetchResult is what the browser hands back for one URL.
type FetchResult struct {
	HTML           string
	ScreenshotPath string
	PageLoadMS     *int64
	DurationMS     int64
}

// AuditResult is the outcome of one audit run. It is built once and not
// modified afterwards.
type AuditResult struct {
	ID              string           `json:"id"`
	URL             string           `json:"url"`
	AuditedAt       time.Time        `json:"audited_at"`
	FetchDurationMS int64            `json:"fetch_duration_ms"`
	PageLoadMS      *int64           `json:"page_load_ms,omitempty"`
	ScreenshotPath  string           `json:"screenshot_path"`
	RawHTML         string           `json:"raw_html,omitempty"`
	Findings        Findings         `json:"findings"`
	Checks          Checks           `json:"checks"`
	Validation      ValidationResult `json:"validation"`
}

// WithoutHTML returns a copy with the raw markup dropped, for caches and API responses.
func (r AuditResult) WithoutHTML() AuditResult {
	r.RawHTML = ""
	return r
}
