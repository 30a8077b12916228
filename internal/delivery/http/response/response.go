package response

import "github.com/user/html5-auditor/internal/entity"

type ErrorResponse struct {
	Error     string `json:"error"`
	ErrorType string `json:"error_type,omitempty"`
	// LastFailure is set on lookups for URLs whose last audit failed.
	LastFailure *entity.AuditFailure `json:"last_failure,omitempty"`
}

type HealthResponse struct {
	Status string            `json:"status"` // "ok" or "degraded"
	Checks map[string]string `json:"checks"`
}

// Frame types sent over the audit stream.
const (
	FrameStatus = "status"
	FrameResult = "result"
	FrameError  = "error"
)

// StreamFrame is one websocket message. Exactly one of Status, Result and
// Error is set, matching Type.
type StreamFrame struct {
	Type   string               `json:"type"`
	Status *entity.StatusUpdate `json:"status,omitempty"`
	Result *entity.AuditResult  `json:"result,omitempty"`
	Error  *ErrorResponse       `json:"error,omitempty"`
}
