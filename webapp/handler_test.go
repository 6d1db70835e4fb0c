package webapp

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestHandlerRoutes tests that all expected routes are registered
func TestHandlerRoutes(t *testing.T) {
	handler := Handler()

	tests := []struct {
		name string
		path string
	}{
		{
			name: "Convert page",
			path: "/",
		},
		{
			name: "Jobs page",
			path: "/jobs",
		},
		{
			name: "About page",
			path: "/about",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			// Should return 200 OK or at least not 404
			if rec.Code == http.StatusNotFound {
				t.Errorf("Route %s returned 404 Not Found - route may not be registered", tt.path)
			}

			// Should return HTML content
			contentType := rec.Header().Get("Content-Type")
			if !strings.Contains(contentType, "text/html") && rec.Code == http.StatusOK {
				t.Logf("Note: Route %s returned status %d with Content-Type: %s", tt.path, rec.Code, contentType)
			}

			t.Logf("Route %s returned status %d", tt.path, rec.Code)
		})
	}
}

// TestBuildAPIURLOnServer tests URL building outside the browser
func TestBuildAPIURLOnServer(t *testing.T) {
	// Server side there is no window config so URLs stay relative
	if got := BuildAPIURL("/api/files"); got != "/api/files" {
		t.Errorf("BuildAPIURL(/api/files) = %q, want relative URL", got)
	}
}

// TestFormatSize checks the human readable size rendering
func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 * 1024 * 1024, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.bytes); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}
