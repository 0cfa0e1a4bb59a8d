package database

import (
	"testing"
	"time"
)

func TestParseRate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		rate       string
		wantErr    bool
		wantLimit  int64
		wantPeriod time.Duration
	}{
		{rate: "5-S", wantLimit: 5, wantPeriod: time.Second},
		{rate: " 100-M ", wantLimit: 100, wantPeriod: time.Minute},
		{rate: "1000-H", wantLimit: 1000, wantPeriod: time.Hour},
		{rate: "", wantErr: true},
		{rate: "fast", wantErr: true},
		{rate: "10-X", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.rate, func(t *testing.T) {
			t.Parallel()
			r, err := ParseRate(tt.rate)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRate(%q) error = %v, wantErr %v", tt.rate, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if r.Limit != tt.wantLimit || r.Period != tt.wantPeriod {
				t.Errorf("ParseRate(%q) = %d/%v, want %d/%v", tt.rate, r.Limit, r.Period, tt.wantLimit, tt.wantPeriod)
			}
		})
	}
}
