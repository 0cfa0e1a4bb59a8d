package validation

import "testing"

func TestValidateDomainName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "movie", value: "movie"},
		{name: "with dash", value: "car-2"},
		{name: "uppercase", value: "Movie", wantErr: true},
		{name: "empty", value: "", wantErr: true},
		{name: "leading digit", value: "1car", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateDomainName(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDomainName(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestStruct(t *testing.T) {
	t.Parallel()

	type request struct {
		Domain  string            `validate:"required,domain_name"`
		Choices map[string]string `validate:"omitempty,dive,keys,criterion_key,endkeys,max=10"`
	}

	if err := Struct(request{Domain: "movie", Choices: map[string]string{"Era": "Modern"}}); err != nil {
		t.Errorf("Expected valid request, got %v", err)
	}
	if err := Struct(request{Domain: "movie", Choices: map[string]string{"bad key": "x"}}); err == nil {
		t.Error("Expected invalid criterion key to fail")
	}
	if err := Struct(request{Domain: "Movie!"}); err == nil {
		t.Error("Expected invalid domain to fail")
	}
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	if got := SanitizeText("  Drama\x00\x07 "); got != "Drama" {
		t.Errorf("Expected 'Drama', got %q", got)
	}
	if got := SanitizeText("a\tb\nc"); got != "a\tb\nc" {
		t.Errorf("Expected tabs and newlines to be kept, got %q", got)
	}
}
