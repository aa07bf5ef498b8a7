package domain

import "time"

// AuditLog represents a security-relevant event inside an organization.
type AuditLog struct {
	ID        string
	OrgID     string
	UserID    string
	Action    string
	Resource  string
	Metadata  string
	CreatedAt time.Time
}
