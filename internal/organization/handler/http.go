// Package handler exposes organization and org-membership endpoints over HTTP.
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	auditdomain "projecthub/backend/internal/audit/domain"
	membershipdomain "projecthub/backend/internal/membership/domain"
	membershipservice "projecthub/backend/internal/membership/service"
	"projecthub/backend/internal/organization/domain"
	"projecthub/backend/internal/platform/rbac"
	"projecthub/backend/internal/server/httpjson"
	"projecthub/backend/internal/server/middleware"
)

// OrgService creates organizations on explicit request.
type OrgService interface {
	Create(ctx context.Context, ownerID, name string) (*domain.Org, error)
}

// OrgStore is the read side used directly by the handler.
type OrgStore interface {
	GetOrganizationByID(ctx context.Context, id string) (*domain.Org, error)
	ListOrganizationsByUser(ctx context.Context, userID string) ([]*domain.Org, error)
}

// MembershipStore lists an organization's membership rows.
type MembershipStore interface {
	ListOrgMemberships(ctx context.Context, orgID string) ([]*membershipdomain.OrgMembership, error)
}

// Invitations drives the invitation lifecycle.
type Invitations interface {
	InviteOrgMember(ctx context.Context, orgID string, in membershipservice.InviteInput) (*membershipdomain.OrgMembership, error)
	RespondOrgInvitation(ctx context.Context, callerID, orgID, targetUserID string, status membershipdomain.Status) (*membershipdomain.OrgMembership, error)
}

// RoleResolver resolves the caller's effective organization role.
type RoleResolver interface {
	ResolveOrgRole(ctx context.Context, userID, orgID string, allowed ...membershipdomain.Role) (membershipdomain.Role, error)
}

// AuditStore reads an organization's audit trail.
type AuditStore interface {
	ListByOrg(ctx context.Context, orgID string, limit, offset int32) ([]*auditdomain.AuditLog, error)
}

// Orgs handles the organization endpoints. All routes require authentication.
type Orgs struct {
	svc         OrgService
	store       OrgStore
	memberships MembershipStore
	invitations Invitations
	resolver    RoleResolver
	auditStore  AuditStore
}

func NewOrgs(svc OrgService, store OrgStore, memberships MembershipStore, invitations Invitations, resolver RoleResolver, auditStore AuditStore) *Orgs {
	return &Orgs{svc: svc, store: store, memberships: memberships, invitations: invitations, resolver: resolver, auditStore: auditStore}
}

// Register mounts the organization routes on the authenticated subrouter.
func (h *Orgs) Register(r *mux.Router) {
	r.HandleFunc("/organizations", h.create).Methods(http.MethodPost)
	r.HandleFunc("/organizations", h.listMine).Methods(http.MethodGet)
	r.HandleFunc("/organizations/{id}", h.get).Methods(http.MethodGet)
	r.HandleFunc("/organizations/{id}/members", h.listMembers).Methods(http.MethodGet)
	r.HandleFunc("/organizations/{id}/members", h.invite).Methods(http.MethodPost)
	r.HandleFunc("/organizations/{id}/members/{userID}", h.respond).Methods(http.MethodPatch)
	r.HandleFunc("/organizations/{id}/audit-logs", h.listAuditLogs).Methods(http.MethodGet)
}

type orgView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

func toOrgView(o *domain.Org) orgView {
	return orgView{ID: o.ID, Name: o.Name, OwnerID: o.OwnerID, IsDefault: o.IsDefault, CreatedAt: o.CreatedAt}
}

type membershipView struct {
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	InvitedBy string    `json:"invited_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toMembershipView(m *membershipdomain.OrgMembership) membershipView {
	return membershipView{
		UserID:    m.UserID,
		Role:      string(m.Role),
		Status:    string(m.Status),
		InvitedBy: m.InvitedBy,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type createOrgRequest struct {
	Name string `json:"name"`
}

func (h *Orgs) create(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r.Context())
	var req createOrgRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, err)
		return
	}
	org, err := h.svc.Create(r.Context(), callerID, req.Name)
	if err != nil {
		httpjson.Error(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, toOrgView(org))
}

func (h *Orgs) listMine(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r.Context())
	orgs, err := h.store.ListOrganizationsByUser(r.Context(), callerID)
	if err != nil {
		httpjson.Error(w, err)
		return
	}
	views := make([]orgView, 0, len(orgs))
	for _, o := range orgs {
		views = append(views, toOrgView(o))
	}
	httpjson.Write(w, http.StatusOK, views)
}

func (h *Orgs) get(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r.Context())
	orgID := mux.Vars(r)["id"]

	if _, err := h.resolver.ResolveOrgRole(r.Context(), callerID, orgID); err != nil {
		httpjson.Error(w, err)
		return
	}
	org, err := h.store.GetOrganizationByID(r.Context(), orgID)
	if err != nil {
		httpjson.Error(w, err)
		return
	}
	if org == nil {
		httpjson.Error(w, rbac.ErrNotFound)
		return
	}
	httpjson.Write(w, http.StatusOK, toOrgView(org))
}

func (h *Orgs) listMembers(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r.Context())
	orgID := mux.Vars(r)["id"]

	if _, err := h.resolver.ResolveOrgRole(r.Context(), callerID, orgID); err != nil {
		httpjson.Error(w, err)
		return
	}
	members, err := h.memberships.ListOrgMemberships(r.Context(), orgID)
	if err != nil {
		httpjson.Error(w, err)
		return
	}
	views := make([]membershipView, 0, len(members))
	for _, m := range members {
		views = append(views, toMembershipView(m))
	}
	httpjson.Write(w, http.StatusOK, views)
}

type inviteRequest struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

func (h *Orgs) invite(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r.Context())
	orgID := mux.Vars(r)["id"]

	if _, err := h.resolver.ResolveOrgRole(r.Context(), callerID, orgID, rbac.OrgManagerRoles...); err != nil {
		httpjson.Error(w, err)
		return
	}

	var req inviteRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, err)
		return
	}
	m, err := h.invitations.InviteOrgMember(r.Context(), orgID, membershipservice.InviteInput{
		InviterID:    callerID,
		TargetUserID: req.UserID,
		TargetEmail:  req.Email,
		Role:         membershipdomain.Role(req.Role),
	})
	if err != nil {
		httpjson.Error(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, toMembershipView(m))
}

type respondRequest struct {
	Status string `json:"status"`
}

func (h *Orgs) respond(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r.Context())
	vars := mux.Vars(r)

	var req respondRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, err)
		return
	}
	m, err := h.invitations.RespondOrgInvitation(r.Context(), callerID, vars["id"], vars["userID"], membershipdomain.Status(req.Status))
	if err != nil {
		httpjson.Error(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toMembershipView(m))
}

type auditLogView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Orgs) listAuditLogs(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r.Context())
	orgID := mux.Vars(r)["id"]

	if _, err := h.resolver.ResolveOrgRole(r.Context(), callerID, orgID, rbac.OrgManagerRoles...); err != nil {
		httpjson.Error(w, err)
		return
	}
	limit, offset := pagination(r)
	logs, err := h.auditStore.ListByOrg(r.Context(), orgID, limit, offset)
	if err != nil {
		httpjson.Error(w, err)
		return
	}
	views := make([]auditLogView, 0, len(logs))
	for _, l := range logs {
		views = append(views, auditLogView{
			ID:        l.ID,
			UserID:    l.UserID,
			Action:    l.Action,
			Resource:  l.Resource,
			Metadata:  l.Metadata,
			CreatedAt: l.CreatedAt,
		})
	}
	httpjson.Write(w, http.StatusOK, views)
}

func pagination(r *http.Request) (limit, offset int32) {
	limit = 50
	if v, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 32); err == nil && v > 0 && v <= 200 {
		limit = int32(v)
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("offset"), 10, 32); err == nil && v >= 0 {
		offset = int32(v)
	}
	return limit, offset
}
