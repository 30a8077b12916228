package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/html5-auditor/internal/entity"
)

func TestAnalyze_ScenarioPage(t *testing.T) {
	const page = `<!DOCTYPE html><html lang="en"><head><title>Short</title></head><body><h1>A</h1><h1>B</h1><img src="x.png"></body></html>`

	f, c, err := New(DefaultTitleBounds).Analyze(page)
	require.NoError(t, err)

	assert.Equal(t, entity.SeverityHealthy, c.Doctype.Severity)
	assert.Equal(t, "<!DOCTYPE html>", f.Doctype)

	assert.Equal(t, entity.SeverityHealthy, c.Lang.Severity)
	assert.Equal(t, "en", c.Lang.Value)

	assert.Equal(t, entity.SeverityWarning, c.Title.Severity)
	assert.Equal(t, "'Short' (5 chars)", c.Title.Value)

	assert.Equal(t, entity.SeverityWarning, c.H1.Severity)
	assert.Equal(t, []string{"A", "B"}, f.H1s)

	assert.Equal(t, entity.SeverityWarning, c.ImageAlt.Severity)
	assert.Equal(t, "1/1 missing alt text", c.ImageAlt.Value)

	assert.Equal(t, entity.SeverityError, c.Canonical.Severity)
	assert.Equal(t, "Missing", c.Canonical.Value)

	require.Len(t, c.Robots, 4)
	for _, r := range c.Robots {
		assert.Equal(t, entity.SeverityHealthy, r.Severity, r.Name)
	}
	assert.Equal(t, entity.ImagePreviewNotSpecified, c.Robots[3].Value)

	assert.Equal(t, entity.SeverityError, c.OpenGraph.Severity)
	assert.Equal(t, entity.SeverityError, c.TwitterCards.Severity)
}

func TestAnalyze_FullyHealthyPage(t *testing.T) {
	const page = `<!DOCTYPE html>
<html lang="de">
<head>
  <title>  A perfectly reasonable page title  </title>
  <link rel="alternate stylesheet" href="/alt.css">
  <link rel="canonical" href="https://example.com/page">
  <meta name="ROBOTS" content="index, follow, max-image-preview:large">
  <meta property="og:title" content="x">
  <meta property="og:image" content="y">
  <meta name="twitter:card" content="summary">
</head>
<body>
  <h1>  Welcome  </h1>
  <img src="a.png" alt="A">
  <img src="b.png" alt="B">
</body>
</html>`

	f, c, err := New(DefaultTitleBounds).Analyze(page)
	require.NoError(t, err)

	assert.Equal(t, "A perfectly reasonable page title", f.Title)
	assert.Equal(t, entity.SeverityHealthy, c.Title.Severity)
	assert.Equal(t, "Found 1 H1: 'Welcome'", c.H1.Value)
	assert.Equal(t, "https://example.com/page", c.Canonical.Value)
	assert.Equal(t, entity.ImagePreviewLarge, f.Robots.ImagePreview)
	assert.Equal(t, "0/2 missing alt text", c.ImageAlt.Value)
	assert.Equal(t, entity.SeverityHealthy, c.ImageAlt.Severity)
	assert.Equal(t, []string{"og:title", "og:image"}, f.OpenGraph)
	assert.Equal(t, "Found 2: og:title, og:image", c.OpenGraph.Value)
	assert.Equal(t, []string{"twitter:card"}, f.TwitterCards)
	assert.Equal(t, entity.SeverityHealthy, c.TwitterCards.Severity)
}

func TestAnalyze_MissingEverything(t *testing.T) {
	f, c, err := New(DefaultTitleBounds).Analyze(`<p>hello</p>`)
	require.NoError(t, err)

	assert.Empty(t, f.Doctype)
	assert.Equal(t, entity.SeverityError, c.Doctype.Severity)
	assert.Equal(t, entity.SeverityError, c.Lang.Severity)
	assert.Equal(t, entity.SeverityError, c.Title.Severity)
	assert.Equal(t, "Missing", c.Title.Value)
	assert.Equal(t, entity.SeverityError, c.H1.Severity)
	assert.Equal(t, "No H1 tag found", c.H1.Value)
	assert.Equal(t, entity.SeverityWarning, c.ImageAlt.Severity)
	assert.Equal(t, "No images found", c.ImageAlt.Value)
}

func TestDoctype_Legacy(t *testing.T) {
	const page = `<!DOCTYPE HTML PUBLIC "-//W3C//DTD HTML 4.01//EN" "http://www.w3.org/TR/html4/strict.dtd"><html></html>`
	f, err := Extract(page)
	require.NoError(t, err)
	assert.Equal(t, `<!DOCTYPE html PUBLIC "-//W3C//DTD HTML 4.01//EN" "http://www.w3.org/TR/html4/strict.dtd">`, f.Doctype)
}

func TestClassifyTitleLength(t *testing.T) {
	tests := []struct {
		name   string
		bounds TitleBounds
		length int
		want   entity.Severity
	}{
		{"empty", DefaultTitleBounds, 0, entity.SeverityError},
		{"below", DefaultTitleBounds, 9, entity.SeverityWarning},
		{"lower bound", DefaultTitleBounds, 10, entity.SeverityHealthy},
		{"upper bound", DefaultTitleBounds, 70, entity.SeverityHealthy},
		{"above", DefaultTitleBounds, 71, entity.SeverityWarning},
		{"narrow variant above", TitleBounds{Min: 10, Max: 60}, 65, entity.SeverityWarning},
		{"narrow variant inside", TitleBounds{Min: 10, Max: 60}, 60, entity.SeverityHealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.bounds).ClassifyTitleLength(tt.length))
		})
	}
}

func TestTitleLength_CountsCharacters(t *testing.T) {
	// 10 characters, 20 bytes.
	_, c, err := New(DefaultTitleBounds).Analyze(`<title>éééééééééé</title>`)
	require.NoError(t, err)
	assert.Equal(t, entity.SeverityHealthy, c.Title.Severity)
	assert.Contains(t, c.Title.Value, "(10 chars)")
}

func TestClassifyH1_Counts(t *testing.T) {
	for n, want := range map[int]entity.Severity{
		0: entity.SeverityError,
		1: entity.SeverityHealthy,
		2: entity.SeverityWarning,
		5: entity.SeverityWarning,
	} {
		page := strings.Repeat("<h1>x</h1>", n)
		_, c, err := New(DefaultTitleBounds).Analyze(page)
		require.NoError(t, err)
		assert.Equal(t, want, c.H1.Severity, "%d h1 elements", n)
	}
}

func TestClassifyH1_TruncatesPreview(t *testing.T) {
	long := strings.Repeat("a", 80)
	_, c, err := New(DefaultTitleBounds).Analyze("<h1>" + long + "</h1>")
	require.NoError(t, err)
	assert.Equal(t, "Found 1 H1: '"+strings.Repeat("a", 50)+"'", c.H1.Value)
}

func TestImages_MissingCount(t *testing.T) {
	const page = `<img src="a.png" alt=""><img src="b.png" alt="b"><img alt="c"><img src="d.png">`
	f, c, err := New(DefaultTitleBounds).Analyze(page)
	require.NoError(t, err)

	require.Len(t, f.Images, 4)
	assert.Equal(t, 2, f.ImagesWithAlt)
	assert.Equal(t, 2, f.ImagesMissingAlt())
	assert.Equal(t, "2/4 missing alt text", c.ImageAlt.Value)
	assert.Equal(t, entity.ImageInfo{Src: "", Alt: "c"}, f.Images[2])
}

func TestRobotsChecks_Severity(t *testing.T) {
	_, c, err := New(DefaultTitleBounds).Analyze(`<meta name="robots" content="noindex, max-image-preview:none">`)
	require.NoError(t, err)

	got := map[string]entity.Severity{}
	for _, r := range c.Robots {
		got[r.Name] = r.Severity
	}
	assert.Equal(t, entity.SeverityError, got[CheckIndexing])
	assert.Equal(t, entity.SeverityHealthy, got[CheckFollowing])
	assert.Equal(t, entity.SeverityHealthy, got[CheckSnippets])
	assert.Equal(t, entity.SeverityError, got[CheckImagePreview])
}
