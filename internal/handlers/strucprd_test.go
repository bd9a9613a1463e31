package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ficcboard/backend/internal/models"
	"github.com/ficcboard/backend/internal/services"
)

type mockStrucprdService struct {
	snapshot *models.HoldingsSnapshot
	page     *models.StrucprdPage
	holdings []*models.Strucprd

	gotQuery  string
	gotPage   int
	gotFilter models.CallFilter
}

func (m *mockStrucprdService) GetHoldingsSnapshot(_ context.Context) (*models.HoldingsSnapshot, error) {
	return m.snapshot, nil
}

func (m *mockStrucprdService) ListProducts(_ context.Context, query string, page int, callFilter models.CallFilter) (*models.StrucprdPage, error) {
	m.gotQuery = query
	m.gotPage = page
	m.gotFilter = callFilter
	if m.page != nil {
		return m.page, nil
	}
	return &models.StrucprdPage{Rows: []*models.Strucprd{}, Page: page, TotalPages: 0}, nil
}

func (m *mockStrucprdService) ListHoldings(_ context.Context, query string, callFilter models.CallFilter) ([]*models.Strucprd, error) {
	m.gotQuery = query
	m.gotFilter = callFilter
	return m.holdings, nil
}

var _ services.StrucprdService = (*mockStrucprdService)(nil)

func TestHandleProducts_ParsesQueryParams(t *testing.T) {
	ms := &mockStrucprdService{}
	h := NewStrucprdHandler(ms)

	req := httptest.NewRequest("GET", "/api/strucprd/products?query=swap&page=3&call=ALL", nil)
	rec := httptest.NewRecorder()
	h.HandleProducts(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ms.gotQuery != "swap" || ms.gotPage != 3 || ms.gotFilter != models.CallFilterAll {
		t.Fatalf("unexpected params: %q %d %q", ms.gotQuery, ms.gotPage, ms.gotFilter)
	}
}

func TestHandleProducts_RejectsBadCallFilter(t *testing.T) {
	h := NewStrucprdHandler(&mockStrucprdService{})

	req := httptest.NewRequest("GET", "/api/strucprd/products?call=maybe", nil)
	rec := httptest.NewRecorder()
	h.HandleProducts(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleProducts_BadPageFallsBackToFirst(t *testing.T) {
	ms := &mockStrucprdService{}
	h := NewStrucprdHandler(ms)

	req := httptest.NewRequest("GET", "/api/strucprd/products?page=abc", nil)
	rec := httptest.NewRecorder()
	h.HandleProducts(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ms.gotPage != 1 {
		t.Fatalf("expected page 1, got %d", ms.gotPage)
	}
}

func TestHandleSummary_NilSnapshotIsNullBody(t *testing.T) {
	h := NewStrucprdHandler(&mockStrucprdService{})

	req := httptest.NewRequest("GET", "/api/strucprd/summary", nil)
	rec := httptest.NewRecorder()
	h.HandleSummary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "null" {
		t.Fatalf("expected null body, got %q", body)
	}
}

func TestHandleHoldings_EmptyIsJSONArray(t *testing.T) {
	h := NewStrucprdHandler(&mockStrucprdService{})

	req := httptest.NewRequest("GET", "/api/strucprd/holdings", nil)
	rec := httptest.NewRecorder()
	h.HandleHoldings(rec, req)

	var rows []*models.Strucprd
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("body is not a JSON array: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty array, got %d rows", len(rows))
	}
}

func TestHandleProducts_MethodNotAllowed(t *testing.T) {
	h := NewStrucprdHandler(&mockStrucprdService{})

	req := httptest.NewRequest("POST", "/api/strucprd/products", nil)
	rec := httptest.NewRecorder()
	h.HandleProducts(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
