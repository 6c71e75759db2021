package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkrawiec/catalog-import/internal/config"
	"github.com/pkrawiec/catalog-import/internal/importer"
)

// stubService returns canned results for handler tests.
type stubService struct {
	summary   *importer.ImportSummary
	importErr error
	view      *importer.ProductView
	lookupErr error
}

func (s *stubService) RunImport(context.Context) (*importer.ImportSummary, error) {
	return s.summary, s.importErr
}

func (s *stubService) GetBySku(_ context.Context, sku string) (*importer.ProductView, error) {
	return s.view, s.lookupErr
}

func testServer(svc ProductService) *Server {
	return NewServer(svc, config.ServerConfig{
		Port:           8080,
		RequestTimeout: 5 * time.Second,
	})
}

func TestHandleImport(t *testing.T) {
	tests := []struct {
		name       string
		svc        *stubService
		wantStatus int
	}{
		{
			name:       "success",
			svc:        &stubService{summary: &importer.ImportSummary{ImportID: "id-1", ProductsImported: 2}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "already running",
			svc:        &stubService{importErr: importer.ErrImportInProgress},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "pipeline failure",
			svc:        &stubService{importErr: errors.New("load: copy failed")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(tt.svc)
			req := httptest.NewRequest(http.MethodPost, "/api/products/import", nil)
			rec := httptest.NewRecorder()

			srv.Router().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}

			if tt.wantStatus == http.StatusOK {
				var summary importer.ImportSummary
				if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
					t.Fatalf("decode summary: %v", err)
				}
				if summary.ImportID != "id-1" || summary.ProductsImported != 2 {
					t.Errorf("summary = %+v", summary)
				}
			}
		})
	}
}

func TestHandleImportHidesInternalDetail(t *testing.T) {
	srv := testServer(&stubService{importErr: errors.New("pq: secret dsn detail")})
	req := httptest.NewRequest(http.MethodPost, "/api/products/import", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	var body ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error != "internal server error" {
		t.Errorf("error body = %q, 5xx detail must not leak", body.Error)
	}
}

func TestHandleGetProduct(t *testing.T) {
	qty := int32(10)
	tests := []struct {
		name       string
		svc        *stubService
		wantStatus int
	}{
		{
			name:       "found",
			svc:        &stubService{view: &importer.ProductView{SKU: "A1", Name: "Widget", Qty: &qty}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "not found",
			svc:        &stubService{lookupErr: importer.ErrNotFound},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "store failure",
			svc:        &stubService{lookupErr: errors.New("query product view: timeout")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(tt.svc)
			req := httptest.NewRequest(http.MethodGet, "/api/products/A1", nil)
			rec := httptest.NewRecorder()

			srv.Router().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			if tt.wantStatus == http.StatusOK {
				var view importer.ProductView
				if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
					t.Fatalf("decode view: %v", err)
				}
				if view.SKU != "A1" || view.Qty == nil || *view.Qty != 10 {
					t.Errorf("view = %+v", view)
				}
				if view.NetPrice != nil {
					t.Errorf("netPrice = %v, want null passthrough", view.NetPrice)
				}
			}
		})
	}
}

func TestHandleHealth(t *testing.T) {
	srv := testServer(&stubService{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
