package request

type AuditRequest struct {
	URL   string `json:"url"`
	Force bool   `json:"force"` // skip the result cache
}
