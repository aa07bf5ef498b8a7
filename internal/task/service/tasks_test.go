package service

import (
	"context"
	"errors"
	"testing"

	membershipdomain "projecthub/backend/internal/membership/domain"
	"projecthub/backend/internal/platform/rbac"
	"projecthub/backend/internal/task/domain"
)

type memTasks struct {
	tasks   map[string]*domain.Task
	byProj  map[string][]*domain.Task
	created *domain.Task
	updated *domain.Task
}

func newMemTasks() *memTasks {
	return &memTasks{
		tasks:  map[string]*domain.Task{},
		byProj: map[string][]*domain.Task{},
	}
}

func (m *memTasks) GetTaskByID(_ context.Context, id string) (*domain.Task, error) {
	return m.tasks[id], nil
}

func (m *memTasks) ListTasksByProject(_ context.Context, projectID string) ([]*domain.Task, error) {
	return m.byProj[projectID], nil
}

func (m *memTasks) CreateTask(_ context.Context, t *domain.Task) error {
	m.created = t
	m.tasks[t.ID] = t
	m.byProj[t.ProjectID] = append(m.byProj[t.ProjectID], t)
	return nil
}

func (m *memTasks) UpdateTask(_ context.Context, t *domain.Task) error {
	m.updated = t
	m.tasks[t.ID] = t
	return nil
}

type fakeResolver struct {
	err  error
	role membershipdomain.Role
}

func (f *fakeResolver) ResolveProjectRole(_ context.Context, _, _ string, _ ...membershipdomain.Role) (*rbac.ProjectAccess, error) {
	if f.err != nil {
		return nil, f.err
	}
	role := f.role
	if role == "" {
		role = membershipdomain.RoleTeamMember
	}
	return &rbac.ProjectAccess{Role: role}, nil
}

func TestTasksCreate(t *testing.T) {
	store := newMemTasks()
	svc := NewTasks(store, &fakeResolver{})

	task, err := svc.Create(context.Background(), "u-1", "p-1", "  Write docs  ", "u-2")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.Title != "Write docs" {
		t.Fatalf("title = %q, want trimmed Write docs", task.Title)
	}
	if task.Status != domain.TaskStatusTodo {
		t.Fatalf("status = %s, want todo", task.Status)
	}
	if task.CreatedBy != "u-1" || task.AssigneeID != "u-2" {
		t.Fatalf("unexpected task %+v", task)
	}
}

func TestTasksCreate_EmptyTitle(t *testing.T) {
	svc := NewTasks(newMemTasks(), &fakeResolver{})
	if _, err := svc.Create(context.Background(), "u-1", "p-1", "  ", ""); !errors.Is(err, rbac.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestTasksCreate_WriteGateDenied(t *testing.T) {
	store := newMemTasks()
	svc := NewTasks(store, &fakeResolver{err: rbac.ErrForbidden})

	if _, err := svc.Create(context.Background(), "u-client", "p-1", "Write docs", ""); !errors.Is(err, rbac.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if store.created != nil {
		t.Fatalf("denied caller must not create a task")
	}
}

func TestTasksListByProject(t *testing.T) {
	store := newMemTasks()
	store.byProj["p-1"] = []*domain.Task{{ID: "t-1"}, {ID: "t-2"}}

	svc := NewTasks(store, &fakeResolver{role: membershipdomain.RoleClient})
	tasks, err := svc.ListByProject(context.Background(), "u-1", "p-1")
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(tasks))
	}
}

func TestTasksUpdate(t *testing.T) {
	store := newMemTasks()
	store.tasks["t-1"] = &domain.Task{ID: "t-1", ProjectID: "p-1", Title: "Old", Status: domain.TaskStatusTodo}

	svc := NewTasks(store, &fakeResolver{})
	newTitle := "New"
	newStatus := domain.TaskStatusDone
	task, err := svc.Update(context.Background(), "u-1", "t-1", UpdateInput{Title: &newTitle, Status: &newStatus})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if task.Title != "New" || task.Status != domain.TaskStatusDone {
		t.Fatalf("unexpected task %+v", task)
	}
}

func TestTasksUpdate_UnknownTask(t *testing.T) {
	svc := NewTasks(newMemTasks(), &fakeResolver{})
	if _, err := svc.Update(context.Background(), "u-1", "ghost", UpdateInput{}); !errors.Is(err, rbac.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestTasksUpdate_InvalidStatus(t *testing.T) {
	store := newMemTasks()
	store.tasks["t-1"] = &domain.Task{ID: "t-1", ProjectID: "p-1", Title: "Old"}

	svc := NewTasks(store, &fakeResolver{})
	bad := domain.TaskStatus("archived")
	if _, err := svc.Update(context.Background(), "u-1", "t-1", UpdateInput{Status: &bad}); !errors.Is(err, rbac.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestTasksUpdate_GateUsesStoredProject(t *testing.T) {
	store := newMemTasks()
	store.tasks["t-1"] = &domain.Task{ID: "t-1", ProjectID: "p-1", Title: "Old"}

	svc := NewTasks(store, &fakeResolver{err: rbac.ErrForbidden})
	if _, err := svc.Update(context.Background(), "u-9", "t-1", UpdateInput{}); !errors.Is(err, rbac.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if store.updated != nil {
		t.Fatalf("denied caller must not update a task")
	}
}
