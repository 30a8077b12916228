package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverity_JSON(t *testing.T) {
	c := Check{Name: "Title Tag", Severity: SeverityWarning, Value: "'Short' (5 chars)"}

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Title Tag","severity":"warning","value":"'Short' (5 chars)"}`, string(data))

	var back Check
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, c, back)
}

func TestSeverity_UnknownName(t *testing.T) {
	var s Severity
	require.NoError(t, json.Unmarshal([]byte(`"bogus"`), &s))
	assert.Equal(t, SeverityUnknown, s)
	assert.Equal(t, "severity(42)", Severity(42).String())
}

func TestDiagnostic_LineAndText(t *testing.T) {
	assert.Equal(t, 7, Diagnostic{FirstLine: 3, LastLine: 7}.Line())
	assert.Equal(t, 3, Diagnostic{FirstLine: 3}.Line())
	assert.Equal(t, 0, Diagnostic{}.Line())

	assert.Equal(t, "msg", Diagnostic{Message: "msg", Extract: "ext"}.Text())
	assert.Equal(t, "ext", Diagnostic{Extract: "ext"}.Text())
}

func TestFindings_ImagesMissingAlt(t *testing.T) {
	f := Findings{Images: []ImageInfo{{Src: "a"}, {Src: "b", Alt: "b"}, {Src: "c"}}, ImagesWithAlt: 1}
	assert.Equal(t, 2, f.ImagesMissingAlt())
	assert.Equal(t, 0, Findings{}.ImagesMissingAlt())
}

func TestDownloadStatus(t *testing.T) {
	assert.Equal(t, "Downloading vnu.jar (50%)", DownloadStatus(512, 1024))
	assert.Equal(t, "Downloading vnu.jar (100%)", DownloadStatus(1024, 1024))
	assert.Equal(t, "Downloading vnu.jar (2048 bytes)", DownloadStatus(2048, 0))
}

func TestStatusMessage(t *testing.T) {
	assert.Equal(t, "Fetching http://example.com...", StatusMessage(StageFetching, "http://example.com"))
	assert.Equal(t, "Audit complete.", StatusMessage(StageDone, ""))
	assert.Equal(t, "custom", StatusMessage(Stage("custom"), ""))
}
