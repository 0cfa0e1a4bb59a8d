package database

import (
	"testing"
)

func TestAllowedOriginsSlice(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"single", "https://cinemate.example.com", []string{"https://cinemate.example.com"}},
		{"comma", "https://a.com, https://b.com", []string{"https://a.com", "https://b.com"}},
		{"dedup", "x, x, y", []string{"x", "y"}},
		{"trim", "  a  ,  b  ", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := AllowedOriginsSlice(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("AllowedOriginsSlice(%q) length = %d, want %d", tt.raw, len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("AllowedOriginsSlice(%q)[%d] = %q, want %q", tt.raw, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestValidateOrigins(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		origins []string
		wantErr bool
	}{
		{"https", []string{"https://cinemate.example.com"}, false},
		{"with port", []string{"http://localhost:3000"}, false},
		{"trailing slash", []string{"https://a.com/"}, false},
		{"missing scheme", []string{"cinemate.example.com"}, true},
		{"path", []string{"https://a.com/app"}, true},
		{"ftp", []string{"ftp://a.com"}, true},
		{"one bad of two", []string{"https://a.com", "nope"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := ValidateOrigins(tt.origins); (err != nil) != tt.wantErr {
				t.Errorf("ValidateOrigins(%v) error = %v, wantErr %v", tt.origins, err, tt.wantErr)
			}
		})
	}
}
