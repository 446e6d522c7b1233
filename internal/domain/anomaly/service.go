package anomaly

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/labfeed/labfeed/internal/domain/result"
)

// Service loads a patient's history and runs the scanner over it.
type Service struct {
	results result.Repository
}

func NewService(results result.Repository) *Service {
	return &Service{results: results}
}

func (s *Service) ScanPatient(ctx context.Context, scopeID, patientID uuid.UUID) ([]Anomaly, error) {
	history, err := s.results.HistoryByPatient(ctx, scopeID, patientID)
	if err != nil {
		return nil, fmt.Errorf("load patient history: %w", err)
	}
	return Scan(history), nil
}
