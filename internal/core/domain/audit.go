package domain

import "time"

// AuditEntry is one line of the append-only action trail. Writing it is
// best-effort: a failed insert never fails the operation it records.
type AuditEntry struct {
	ID        string    `json:"id,omitempty"`
	UserID    int64     `json:"user_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details,omitempty"`
}
