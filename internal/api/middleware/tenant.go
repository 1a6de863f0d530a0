package middleware

import (
	"context"
	"net/http"
)

// TenantHeader carries the caller-supplied tenant identifier. The value is an
// opaque token, validated only for presence and length; callers are treated
// as pre-authenticated by an upstream collaborator.
const TenantHeader = "X-Tenant-Id"

const (
	tenantMinLen = 1
	tenantMaxLen = 128
)

type tenantContextKey struct{}

// RequireTenant extracts and validates the X-Tenant-Id header and stores the
// tenant ID in the request context. Requests without a valid header are
// rejected before any handler state is touched.
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.Header.Get(TenantHeader)

		if tenantID == "" {
			writeError(w, "Missing X-Tenant-Id header",
				"All requests must include a valid X-Tenant-Id header")
			return
		}

		if len(tenantID) < tenantMinLen || len(tenantID) > tenantMaxLen {
			writeError(w, "Invalid X-Tenant-Id header",
				"X-Tenant-Id must be between 1 and 128 characters")
			return
		}

		ctx := context.WithValue(r.Context(), tenantContextKey{}, tenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TenantID returns the validated tenant ID from the request context, or ""
// when the request did not pass through RequireTenant.
func TenantID(r *http.Request) string {
	id, _ := r.Context().Value(tenantContextKey{}).(string)
	return id
}

func writeError(w http.ResponseWriter, errMsg, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	w.Write([]byte(`{"error":` + quote(errMsg) + `,"message":` + quote(detail) + `}`))
}

// quote wraps a known-safe literal in JSON quotes.
func quote(s string) string {
	return `"` + s + `"`
}
