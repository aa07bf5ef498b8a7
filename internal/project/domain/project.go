package domain

import (
	"errors"
	"time"
)

// Project is a unit of work inside an organization with its own membership
// roster. The owner is a principal (not necessarily the org owner) and
// implicitly holds PROJECT_ADMIN even without a membership row.
type Project struct {
	ID          string
	OrgID       string
	Name        string
	Description string
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate validates the project for persistence. Returns an error describing the first validation failure.
func (p *Project) Validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.OrgID == "" {
		return errors.New("org_id is required")
	}
	if p.OwnerID == "" {
		return errors.New("owner_id is required")
	}
	return nil
}
