package audit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/labfeed/labfeed/internal/domain/report"
	"github.com/labfeed/labfeed/internal/platform/auth"
)

type mockReportRepo struct {
	reports map[uuid.UUID]*report.Report
}

func newMockReportRepo() *mockReportRepo {
	return &mockReportRepo{reports: make(map[uuid.UUID]*report.Report)}
}

func (m *mockReportRepo) Create(_ context.Context, r *report.Report) error {
	m.reports[r.ID] = r
	return nil
}

func (m *mockReportRepo) GetForScope(_ context.Context, scopeID, id uuid.UUID) (*report.Report, error) {
	r, ok := m.reports[id]
	if !ok || r.ScopeID != scopeID {
		return nil, nil
	}
	return r, nil
}

func (m *mockReportRepo) List(_ context.Context, scopeID uuid.UUID, status string, limit, offset int) ([]*report.Report, int, error) {
	return nil, 0, nil
}

func (m *mockReportRepo) UpdateParsingStatus(_ context.Context, id uuid.UUID, status string, parsingVersion *string) error {
	return nil
}

func (m *mockReportRepo) ReplaceComments(_ context.Context, reportID uuid.UUID, comments []*report.Comment) error {
	return nil
}

func (m *mockReportRepo) ListComments(_ context.Context, reportID uuid.UUID) ([]*report.Comment, error) {
	return nil, nil
}

func (m *mockReportRepo) Delete(_ context.Context, scopeID, id uuid.UUID) error {
	delete(m.reports, id)
	return nil
}

type mockAuditRepo struct {
	records []*Record
}

func (m *mockAuditRepo) Insert(_ context.Context, rec *Record) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *mockAuditRepo) ListByReport(_ context.Context, reportID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	var items []*Record
	for _, rec := range m.records {
		if rec.ReportID == reportID {
			items = append(items, rec)
		}
	}
	return items, len(items), nil
}

func auditRequest(h *Handler, reportID string, scopeID uuid.UUID) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/reports/"+reportID+"/audit", nil)
	if scopeID != uuid.Nil {
		ctx := context.WithValue(req.Context(), auth.ScopeIDKey, scopeID.String())
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/reports/:id/audit")
	c.SetParamNames("id")
	c.SetParamValues(reportID)
	return rec, h.ListByReport(c)
}

func TestListByReport_OwnScope(t *testing.T) {
	reports := newMockReportRepo()
	scopeID := uuid.New()
	rp := &report.Report{ID: uuid.New(), ScopeID: scopeID}
	reports.reports[rp.ID] = rp
	repo := &mockAuditRepo{records: []*Record{
		{ID: uuid.New(), ReportID: rp.ID, ScopeID: scopeID, ResultCount: 3, Outcome: "success"},
	}}

	h := NewHandler(repo, reports)
	rec, err := auditRequest(h, rp.ID.String(), scopeID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"result_count":3`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestListByReport_ForeignScopeNotFound(t *testing.T) {
	reports := newMockReportRepo()
	owner := uuid.New()
	rp := &report.Report{ID: uuid.New(), ScopeID: owner}
	reports.reports[rp.ID] = rp
	repo := &mockAuditRepo{records: []*Record{
		{ID: uuid.New(), ReportID: rp.ID, ScopeID: owner, Outcome: "success"},
	}}

	h := NewHandler(repo, reports)
	_, err := auditRequest(h, rp.ID.String(), uuid.New())
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("another scope's report must read as absent, got %v", err)
	}
}

func TestListByReport_MissingScope(t *testing.T) {
	h := NewHandler(&mockAuditRepo{}, newMockReportRepo())

	_, err := auditRequest(h, uuid.New().String(), uuid.Nil)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
