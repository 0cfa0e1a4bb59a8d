package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
)

func TestHealthChecker(t *testing.T) {
	t.Parallel()

	healthy := func(context.Context) error { return nil }
	failing := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name         string
		query        string
		checks       map[string]CheckFunc
		expectStatus int
		expectHealth string
		expectChecks map[string]string
	}{
		{
			name:         "basic mode skips checks",
			query:        "",
			checks:       map[string]CheckFunc{"database": failing},
			expectStatus: http.StatusOK,
			expectHealth: "healthy",
		},
		{
			name:         "extended mode all healthy",
			query:        "?mode=extended",
			checks:       map[string]CheckFunc{"session_store": healthy, "queue": healthy},
			expectStatus: http.StatusOK,
			expectHealth: "healthy",
			expectChecks: map[string]string{"session_store": "healthy", "queue": "healthy"},
		},
		{
			name:         "extended mode one failing",
			query:        "?mode=extended",
			checks:       map[string]CheckFunc{"session_store": healthy, "database": failing},
			expectStatus: http.StatusServiceUnavailable,
			expectHealth: "unhealthy",
			expectChecks: map[string]string{"session_store": "healthy", "database": "unhealthy: connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewHealthChecker()
			for name, c := range tt.checks {
				h.WithCheck(name, c)
			}

			w := httptest.NewRecorder()
			h.HealthCheck(w, httptest.NewRequest(http.MethodGet, "/healthz"+tt.query, nil))

			if w.Code != tt.expectStatus {
				t.Errorf("Expected status %d, got %d", tt.expectStatus, w.Code)
			}
			var body HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if body.Status != tt.expectHealth {
				t.Errorf("Expected status '%s', got '%s'", tt.expectHealth, body.Status)
			}
			if len(body.Checks) != len(tt.expectChecks) {
				t.Errorf("Expected %d checks, got %d", len(tt.expectChecks), len(body.Checks))
			}
			for name, want := range tt.expectChecks {
				if body.Checks[name] != want {
					t.Errorf("Expected check[%s] = %s, got %s", name, want, body.Checks[name])
				}
			}
		})
	}
}

func TestHealthChecker_NilCheckIgnored(t *testing.T) {
	t.Parallel()

	h := NewHealthChecker().WithCheck("database", nil)
	if len(h.checks) != 0 {
		t.Errorf("Expected nil check to be ignored, got %d checks", len(h.checks))
	}
}

func TestVersionInfo(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	VersionInfo(w, httptest.NewRequest(http.MethodGet, "/version", nil))

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["version"] != Version {
		t.Errorf("Expected version '%s', got '%s'", Version, body["version"])
	}
}
