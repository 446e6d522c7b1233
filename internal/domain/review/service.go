package review

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListByReport(ctx context.Context, reportID uuid.UUID) ([]*Task, error) {
	return s.repo.ListByReport(ctx, reportID)
}

func (s *Service) ListOpen(ctx context.Context, scopeID uuid.UUID, limit, offset int) ([]*Task, int, error) {
	return s.repo.ListOpenForScope(ctx, scopeID, limit, offset)
}

// UpdateStatus moves a task through its lifecycle. Resolved tasks are final.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Task, error) {
	switch status {
	case StatusOpen, StatusInReview, StatusResolved:
	default:
		return nil, fmt.Errorf("unknown status %q", status)
	}

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("review task %s not found", id)
	}
	if !CanTransition(t.Status, status) {
		return nil, fmt.Errorf("cannot move task from %q to %q", t.Status, status)
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}
	return s.repo.GetByID(ctx, id)
}
