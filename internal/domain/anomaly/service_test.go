package anomaly

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/labfeed/labfeed/internal/domain/result"
	"github.com/labfeed/labfeed/internal/platform/auth"
)

type mockHistoryRepo struct {
	// history is keyed by scope then patient; a patient's results from
	// another scope's reports are invisible.
	history map[uuid.UUID]map[uuid.UUID][]*result.Result

	lastScope uuid.UUID
}

func (m *mockHistoryRepo) DeleteByReport(_ context.Context, reportID uuid.UUID) error { return nil }

func (m *mockHistoryRepo) InsertBatch(_ context.Context, results []*result.Result) error { return nil }

func (m *mockHistoryRepo) ListByReport(_ context.Context, reportID uuid.UUID) ([]*result.Result, error) {
	return nil, nil
}

func (m *mockHistoryRepo) HistoryByPatient(_ context.Context, scopeID, patientID uuid.UUID) ([]*result.Result, error) {
	m.lastScope = scopeID
	return m.history[scopeID][patientID], nil
}

func (m *mockHistoryRepo) Series(_ context.Context, scopeID, patientID uuid.UUID, shortCode string) ([]*result.SeriesPoint, error) {
	return nil, nil
}

func TestScanPatient_OnlyOwnScopeHistory(t *testing.T) {
	scopeID := uuid.New()
	patientID := uuid.New()
	repo := &mockHistoryRepo{history: map[uuid.UUID]map[uuid.UUID][]*result.Result{
		scopeID: {patientID: {
			numeric("HGB", 10, "g/dL", 0),
			numeric("HGB", 40, "g/dL", 1),
		}},
	}}
	svc := NewService(repo)

	anomalies, err := svc.ScanPatient(context.Background(), scopeID, patientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(anomalies) != 1 || anomalies[0].Kind != KindSuddenChange {
		t.Fatalf("expected one sudden-change anomaly, got %v", anomalies)
	}
	if repo.lastScope != scopeID {
		t.Errorf("history loaded under scope %s, want %s", repo.lastScope, scopeID)
	}

	foreign, err := svc.ScanPatient(context.Background(), uuid.New(), patientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(foreign) != 0 {
		t.Errorf("another scope must not see the patient's history, got %v", foreign)
	}
}

func TestScanPatientHandler_MissingScope(t *testing.T) {
	h := NewHandler(NewService(&mockHistoryRepo{}))
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/patients/"+uuid.New().String()+"/anomalies", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/patients/:id/anomalies")
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.ScanPatient(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestScanPatientHandler_ScopeForwarded(t *testing.T) {
	repo := &mockHistoryRepo{}
	h := NewHandler(NewService(repo))
	scopeID := uuid.New()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/patients/"+uuid.New().String()+"/anomalies", nil)
	ctx := context.WithValue(req.Context(), auth.ScopeIDKey, scopeID.String())
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/patients/:id/anomalies")
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	if err := h.ScanPatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastScope != scopeID {
		t.Errorf("scan ran under scope %s, want %s", repo.lastScope, scopeID)
	}
}
