package entity

import "fmt"

// Stage is a step of a running audit reported to front ends.
type Stage string

const (
	StageFetching   Stage = "fetching"
	StageAnalyzing  Stage = "analyzing"
	StageValidating Stage = "validating"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)

type StatusUpdate struct {
	URL     string `json:"url"`
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
}

// StatusMessage is the one-line text shown in status bars for a stage.
func StatusMessage(stage Stage, url string) string {
	switch stage {
	case StageFetching:
		return "Fetching " + url + "..."
	case StageAnalyzing:
		return "Analyzing markup..."
	case StageValidating:
		return "Running HTML5 validator..."
	case StageDone:
		return "Audit complete."
	case StageFailed:
		return "Audit failed."
	default:
		return string(stage)
	}
}

// DownloadStatus describes validator download progress. total is 0 when the
// size is unknown.
func DownloadStatus(downloaded, total int64) string {
	if total > 0 {
		return fmt.Sprintf("Downloading vnu.jar (%d%%)", downloaded*100/total)
	}
	return fmt.Sprintf("Downloading vnu.jar (%d bytes)", downloaded)
}
