package commands

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const kidsDomain = `
domains:
  - name: kids
    title: CineMate Kids
    strategy: rating
    primary:
      key: Genres
      label: Genres
      options: [Komödie, Animation, Abenteuer, Familie]
      count: 2
      action: genres_selected
    ranges:
      - key: RatingRange
        label: Bewertung
        bounds: {low: 1, high: 10}
        default: {low: 5, high: 10}
    candidates: [Kiko, Pip, Lumo]
    attributes:
      rating: RatingRange
      votes: {min: 100, max: 200}
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "domains.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write domains file: %v", err)
	}
	return path
}

func TestDomainsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr bool
		wantOut string
	}{
		{name: "valid file", content: kidsDomain, wantOut: "ok  kids (CineMate Kids)"},
		{name: "malformed yaml", content: "domains: [", wantErr: true},
		{name: "invalid domain", content: strings.Replace(kidsDomain, "count: 2", "count: 9", 1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			cmd := NewDomainsCmd()
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SetArgs([]string{"validate", writeFile(t, tt.content)})

			err := cmd.Execute()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if tt.wantOut != "" && !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("Expected output to contain %q, got %q", tt.wantOut, out.String())
			}
		})
	}
}

func TestDomainsList(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cmd := NewDomainsCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"list", "--file", writeFile(t, kidsDomain)})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	for _, name := range []string{"movie", "car", "kids"} {
		if !strings.Contains(out.String(), name) {
			t.Errorf("Expected %s in listing, got %q", name, out.String())
		}
	}
}

func TestRatelimitSet_RejectsInvalidRate(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cmd := NewRatelimitCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"set", "--rate", "fast"})
	// Fails on the rate before any database connection is attempted
	if err := cmd.Execute(); err == nil {
		t.Error("Expected invalid rate to be rejected")
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
		wantOut string
	}{
		{
			name:    "healthy",
			status:  http.StatusOK,
			body:    `{"status":"healthy","checks":{"session_store":"healthy","queue":"healthy"}}`,
			wantOut: "  queue: healthy\n  session_store: healthy\n",
		},
		{
			name:    "unhealthy",
			status:  http.StatusServiceUnavailable,
			body:    `{"status":"unhealthy","checks":{"database":"unhealthy: connection refused"}}`,
			wantErr: true,
			wantOut: "database: unhealthy: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/healthz" || r.URL.Query().Get("mode") != "extended" {
					t.Errorf("Unexpected request %s", r.URL.String())
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			var out bytes.Buffer
			cmd := NewCheckCmd()
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SetArgs([]string{"--url", srv.URL})

			err := cmd.Execute()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("Expected output to contain %q, got %q", tt.wantOut, out.String())
			}
		})
	}
}
