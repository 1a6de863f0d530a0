package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func tenantEcho() http.Handler {
	return RequireTenant(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(TenantID(r)))
	}))
}

func TestRequireTenantAccepts(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TenantHeader, "acme-corp")
	rec := httptest.NewRecorder()

	tenantEcho().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "acme-corp" {
		t.Fatalf("expected tenant in context, got %q", rec.Body.String())
	}
}

func TestRequireTenantRejectsMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	tenantEcho().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Missing X-Tenant-Id") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestRequireTenantRejectsOversized(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TenantHeader, strings.Repeat("x", 129))
	rec := httptest.NewRecorder()

	tenantEcho().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRequireTenantBoundaryLengths(t *testing.T) {
	for _, n := range []int{1, 128} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(TenantHeader, strings.Repeat("t", n))
		rec := httptest.NewRecorder()

		tenantEcho().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("length %d should be accepted, got %d", n, rec.Code)
		}
	}
}

func TestTenantIDWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := TenantID(req); got != "" {
		t.Fatalf("expected empty tenant, got %q", got)
	}
}
