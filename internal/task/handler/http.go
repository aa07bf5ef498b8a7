// Package handler exposes task endpoints over HTTP.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"projecthub/backend/internal/server/httpjson"
	"projecthub/backend/internal/server/middleware"
	"projecthub/backend/internal/task/domain"
	"projecthub/backend/internal/task/service"
)

// TaskService is the task business-logic surface used by the handler.
type TaskService interface {
	ListByProject(ctx context.Context, callerID, projectID string) ([]*domain.Task, error)
	Create(ctx context.Context, callerID, projectID, title, assigneeID string) (*domain.Task, error)
	Update(ctx context.Context, callerID, taskID string, in service.UpdateInput) (*domain.Task, error)
}

// Tasks handles the task endpoints. All routes require authentication.
type Tasks struct {
	svc TaskService
}

func NewTasks(svc TaskService) *Tasks {
	return &Tasks{svc: svc}
}

// Register mounts the task routes on the authenticated subrouter.
func (h *Tasks) Register(r *mux.Router) {
	r.HandleFunc("/projects/{id}/tasks", h.list).Methods(http.MethodGet)
	r.HandleFunc("/projects/{id}/tasks", h.create).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{id}", h.update).Methods(http.MethodPatch)
}

type taskView struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	AssigneeID string    `json:"assignee_id,omitempty"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toTaskView(t *domain.Task) taskView {
	return taskView{
		ID:         t.ID,
		ProjectID:  t.ProjectID,
		Title:      t.Title,
		Status:     string(t.Status),
		AssigneeID: t.AssigneeID,
		CreatedBy:  t.CreatedBy,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

func (h *Tasks) list(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r.Context())
	tasks, err := h.svc.ListByProject(r.Context(), callerID, mux.Vars(r)["id"])
	if err != nil {
		httpjson.Error(w, err)
		return
	}
	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, toTaskView(t))
	}
	httpjson.Write(w, http.StatusOK, views)
}

type createTaskRequest struct {
	Title      string `json:"title"`
	AssigneeID string `json:"assignee_id,omitempty"`
}

func (h *Tasks) create(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r.Context())
	var req createTaskRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, err)
		return
	}
	t, err := h.svc.Create(r.Context(), callerID, mux.Vars(r)["id"], req.Title, req.AssigneeID)
	if err != nil {
		httpjson.Error(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, toTaskView(t))
}

type updateTaskRequest struct {
	Title      *string `json:"title,omitempty"`
	Status     *string `json:"status,omitempty"`
	AssigneeID *string `json:"assignee_id,omitempty"`
}

func (h *Tasks) update(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r.Context())
	var req updateTaskRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, err)
		return
	}
	in := service.UpdateInput{Title: req.Title, AssigneeID: req.AssigneeID}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		in.Status = &status
	}
	t, err := h.svc.Update(r.Context(), callerID, mux.Vars(r)["id"], in)
	if err != nil {
		httpjson.Error(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toTaskView(t))
}
