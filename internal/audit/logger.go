package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"projecthub/backend/internal/audit/domain"
	auditrepo "projecthub/backend/internal/audit/repository"
)

// Actions recorded by the membership and organization code paths.
const (
	ActionOrgCreated         = "org_created"
	ActionProjectCreated     = "project_created"
	ActionMemberInvited      = "member_invited"
	ActionInvitationResponse = "invitation_response"
)

// SentinelOrgID is the org_id used for events that have no org yet.
const SentinelOrgID = "_system"

// AuditLogger writes a single audit event with explicit action/resource.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, orgID, userID, action, resource, metadata string)
}

// Logger implements AuditLogger using the audit repository.
type Logger struct {
	repo auditrepo.Repository
	log  logrus.FieldLogger
}

// NewLogger returns an AuditLogger that persists to repo.
func NewLogger(repo auditrepo.Repository, log logrus.FieldLogger) *Logger {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Logger{repo: repo, log: log}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, orgID, userID, action, resource, metadata string) {
	if l.repo == nil {
		return
	}
	if orgID == "" {
		orgID = SentinelOrgID
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		OrgID:     orgID,
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		l.log.WithError(err).Warnf("audit: failed to log event %s/%s", action, resource)
	}
}

// Nop is an AuditLogger that discards events. Useful in tests and when audit
// persistence is not configured.
type Nop struct{}

func (Nop) LogEvent(context.Context, string, string, string, string, string) {}
