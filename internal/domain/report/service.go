package report

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

func (s *Service) CreateReport(ctx context.Context, scopeID, patientID uuid.UUID, sourceFile *string) (*Report, error) {
	rp := &Report{
		PatientID:     patientID,
		ScopeID:       scopeID,
		SourceFile:    sourceFile,
		ParsingStatus: StatusPending,
	}
	if err := s.repo.Create(ctx, rp); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	return rp, nil
}

func (s *Service) GetReport(ctx context.Context, scopeID, id uuid.UUID) (*Report, error) {
	return s.repo.GetForScope(ctx, scopeID, id)
}

func (s *Service) ListReports(ctx context.Context, scopeID uuid.UUID, status string, limit, offset int) ([]*Report, int, error) {
	switch status {
	case "", StatusPending, StatusCompleted, StatusNeedsReview, StatusFailed:
	default:
		return nil, 0, fmt.Errorf("unknown parsing status %q", status)
	}
	return s.repo.List(ctx, scopeID, status, limit, offset)
}

func (s *Service) ListComments(ctx context.Context, scopeID, reportID uuid.UUID) ([]*Comment, error) {
	rp, err := s.repo.GetForScope(ctx, scopeID, reportID)
	if err != nil {
		return nil, err
	}
	if rp == nil {
		return nil, fmt.Errorf("report %s not found", reportID)
	}
	return s.repo.ListComments(ctx, reportID)
}

func (s *Service) DeleteReport(ctx context.Context, scopeID, id uuid.UUID) error {
	return s.repo.Delete(ctx, scopeID, id)
}
