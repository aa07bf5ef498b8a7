// Package handler exposes project and project-membership endpoints over HTTP.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	membershipdomain "projecthub/backend/internal/membership/domain"
	membershipservice "projecthub/backend/internal/membership/service"
	"projecthub/backend/internal/platform/rbac"
	"projecthub/backend/internal/project/domain"
	"projecthub/backend/internal/server/httpjson"
	"projecthub/backend/internal/server/middleware"
)

// ProjectService is the project business-logic surface used by the handler.
type ProjectService interface {
	Create(ctx context.Context, callerID, orgID, name, description string) (*domain.Project, error)
	Get(ctx context.Context, callerID, projectID string) (*domain.Project, error)
	ListByOrg(ctx context.Context, callerID, orgID string) ([]*domain.Project, error)
}

// MembershipStore lists a project's membership rows.
type MembershipStore interface {
	ListProjectMemberships(ctx context.Context, projectID string) ([]*membershipdomain.ProjectMembership, error)
}

// Invitations drives the project invitation lifecycle.
type Invitations interface {
	InviteProjectMember(ctx context.Context, projectID string, in membershipservice.InviteInput) (*membershipdomain.ProjectMembership, error)
	RespondProjectInvitation(ctx context.Context, callerID, projectID, targetUserID string, status membershipdomain.Status) (*membershipdomain.ProjectMembership, error)
}

// RoleResolver resolves the caller's effective project role.
type RoleResolver interface {
	ResolveProjectRole(ctx context.Context, userID, projectID string, allowed ...membershipdomain.Role) (*rbac.ProjectAccess, error)
}

// Projects handles the project endpoints. All routes require authentication.
type Projects struct {
	svc         ProjectService
	memberships MembershipStore
	invitations Invitations
	resolver    RoleResolver
}

func NewProjects(svc ProjectService, memberships MembershipStore, invitations Invitations, resolver RoleResolver) *Projects {
	return &Projects{svc: svc, memberships: memberships, invitations: invitations, resolver: resolver}
}

// Register mounts the project routes on the authenticated subrouter.
func (h *Projects) Register(r *mux.Router) {
	r.HandleFunc("/projects", h.create).Methods(http.MethodPost)
	r.HandleFunc("/projects/{id}", h.get).Methods(http.MethodGet)
	r.HandleFunc("/projects/{id}/members", h.listMembers).Methods(http.MethodGet)
	r.HandleFunc("/projects/{id}/members", h.invite).Methods(http.MethodPost)
	r.HandleFunc("/projects/{id}/members/{userID}", h.respond).Methods(http.MethodPatch)
	r.HandleFunc("/organizations/{id}/projects", h.listByOrg).Methods(http.MethodGet)
}

type projectView struct {
	ID          string    `json:"id"`
	OrgID       string    `json:"org_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func toProjectView(p *domain.Project) projectView {
	return projectView{
		ID:          p.ID,
		OrgID:       p.OrgID,
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		CreatedAt:   p.CreatedAt,
	}
}

type membershipView struct {
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	InvitedBy string    `json:"invited_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toMembershipView(m *membershipdomain.ProjectMembership) membershipView {
	return membershipView{
		UserID:    m.UserID,
		Role:      string(m.Role),
		Status:    string(m.Status),
		InvitedBy: m.InvitedBy,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type createProjectRequest struct {
	OrgID       string `json:"org_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (h *Projects) create(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r.Context())
	var req createProjectRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, err)
		return
	}
	p, err := h.svc.Create(r.Context(), callerID, req.OrgID, req.Name, req.Description)
	if err != nil {
		httpjson.Error(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, toProjectView(p))
}

func (h *Projects) get(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r.Context())
	p, err := h.svc.Get(r.Context(), callerID, mux.Vars(r)["id"])
	if err != nil {
		httpjson.Error(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toProjectView(p))
}

func (h *Projects) listByOrg(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r.Context())
	projects, err := h.svc.ListByOrg(r.Context(), callerID, mux.Vars(r)["id"])
	if err != nil {
		httpjson.Error(w, err)
		return
	}
	views := make([]projectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, toProjectView(p))
	}
	httpjson.Write(w, http.StatusOK, views)
}

func (h *Projects) listMembers(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r.Context())
	projectID := mux.Vars(r)["id"]

	if _, err := h.resolver.ResolveProjectRole(r.Context(), callerID, projectID); err != nil {
		httpjson.Error(w, err)
		return
	}
	members, err := h.memberships.ListProjectMemberships(r.Context(), projectID)
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

func (h *Projects) invite(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r.Context())
	projectID := mux.Vars(r)["id"]

	if _, err := h.resolver.ResolveProjectRole(r.Context(), callerID, projectID, rbac.ProjectManagerRoles...); err != nil {
		httpjson.Error(w, err)
		return
	}

	var req inviteRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, err)
		return
	}
	m, err := h.invitations.InviteProjectMember(r.Context(), projectID, membershipservice.InviteInput{
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

func (h *Projects) respond(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r.Context())
	vars := mux.Vars(r)

	var req respondRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, err)
		return
	}
	m, err := h.invitations.RespondProjectInvitation(r.Context(), callerID, vars["id"], vars["userID"], membershipdomain.Status(req.Status))
	if err != nil {
		httpjson.Error(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toMembershipView(m))
}
