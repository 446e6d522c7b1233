package review

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
)

type mockTaskRepo struct {
	tasks map[uuid.UUID]*Task
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: make(map[uuid.UUID]*Task)}
}

func (m *mockTaskRepo) ReplaceForReport(_ context.Context, reportID uuid.UUID, tasks []*Task) error {
	for id, t := range m.tasks {
		if t.ReportID == reportID {
			delete(m.tasks, id)
		}
	}
	for _, t := range tasks {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		m.tasks[t.ID] = t
	}
	return nil
}

func (m *mockTaskRepo) ListByReport(_ context.Context, reportID uuid.UUID) ([]*Task, error) {
	var items []*Task
	for _, t := range m.tasks {
		if t.ReportID == reportID {
			items = append(items, t)
		}
	}
	return items, nil
}

func (m *mockTaskRepo) ListOpenForScope(_ context.Context, scopeID uuid.UUID, limit, offset int) ([]*Task, int, error) {
	return nil, 0, nil
}

func (m *mockTaskRepo) GetByID(_ context.Context, id uuid.UUID) (*Task, error) {
	return m.tasks[id], nil
}

func (m *mockTaskRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	m.tasks[id].Status = status
	return nil
}

func seedTask(repo *mockTaskRepo, status string) *Task {
	t := &Task{
		ID:        uuid.New(),
		ReportID:  uuid.New(),
		FieldPath: "results[0].value_numeric",
		Reason:    ReasonLowConfidence,
		Status:    status,
	}
	repo.tasks[t.ID] = t
	return t
}

func TestUpdateStatus_OpenToInReview(t *testing.T) {
	repo := newMockTaskRepo()
	task := seedTask(repo, StatusOpen)
	svc := NewService(repo)

	updated, err := svc.UpdateStatus(context.Background(), task.ID, StatusInReview)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusInReview {
		t.Errorf("expected in-review, got %s", updated.Status)
	}
}

func TestUpdateStatus_ResolvedIsFinal(t *testing.T) {
	repo := newMockTaskRepo()
	task := seedTask(repo, StatusResolved)
	svc := NewService(repo)

	_, err := svc.UpdateStatus(context.Background(), task.ID, StatusOpen)
	if err == nil {
		t.Fatal("expected error reopening a resolved task")
	}
	if repo.tasks[task.ID].Status != StatusResolved {
		t.Errorf("status mutated despite rejected transition: %s", repo.tasks[task.ID].Status)
	}
}

func TestUpdateStatus_UnknownStatusRejected(t *testing.T) {
	repo := newMockTaskRepo()
	task := seedTask(repo, StatusOpen)
	svc := NewService(repo)

	_, err := svc.UpdateStatus(context.Background(), task.ID, "done")
	if err == nil || !strings.Contains(err.Error(), "unknown status") {
		t.Fatalf("expected unknown status error, got %v", err)
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	svc := NewService(newMockTaskRepo())

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), StatusResolved)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}
