package entity

import "time"

// AuditFailure mirrors the `audit_failures` PostgreSQL table: the last failed
// attempt per URL and how many attempts in a row have failed.
type AuditFailure struct {
	URL           string    `json:"url"`
	Reason        string    `json:"reason"`
	ErrorType     string    `json:"error_type"`
	Attempts      int       `json:"attempts"`
	LastAttemptAt time.Time `json:"last_attempt_at"`
}
