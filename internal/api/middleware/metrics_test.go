package middleware

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/health", "/health"},
		{"/api/v2/chat", "/api/v2/chat"},
		{"/api/v2/chat/stream", "/api/v2/chat/stream"},
		{"/api/v2/debug/state", "/api/v2/debug/state"},
		{"/respond", "/respond"},
		{"/", "/"},
		{"/wp-admin/setup.php", "other"},
		{"/api/v2/chat/unknown", "other"},
		{"/favicon.ico", "other"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
