package domain

import (
	"errors"
	"time"
)

// Org represents an organization: the top-level tenant boundary owning
// projects and memberships. Every org has exactly one owner; the owner
// implicitly holds SUPER_ADMIN even without a membership row.
type Org struct {
	ID      string
	Name    string
	OwnerID string
	// IsDefault marks the organization auto-created for a first-time user. A
	// partial unique index on (owner_id) WHERE is_default guarantees at most
	// one default org per principal even under concurrent bootstraps.
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate validates the organization for persistence. Returns an error describing the first validation failure.
func (o *Org) Validate() error {
	if o.Name == "" {
		return errors.New("name is required")
	}
	if o.OwnerID == "" {
		return errors.New("owner_id is required")
	}
	return nil
}
