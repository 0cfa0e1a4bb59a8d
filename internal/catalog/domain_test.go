package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/benvon/cinemate/internal/models"
)

func TestBuiltinDomainsAreValid(t *testing.T) {
	t.Parallel()

	for _, d := range Builtin() {
		t.Run(d.Name, func(t *testing.T) {
			t.Parallel()
			if err := d.Validate(); err != nil {
				t.Errorf("Expected built-in domain to be valid, got %v", err)
			}
			if len(d.Candidates) != CandidateCount {
				t.Errorf("Expected %d candidates, got %d", CandidateCount, len(d.Candidates))
			}
		})
	}
}

func TestDomain_Defaults(t *testing.T) {
	t.Parallel()

	defaults := Movie().Defaults()
	if got, _ := defaults.Choice("Era"); got != "Klassiker (<2000)" {
		t.Errorf("Expected default Era 'Klassiker (<2000)', got '%s'", got)
	}
	if got, _ := defaults.Range("RatingRange"); got != (models.Range{Low: 6.0, High: 9.0}) {
		t.Errorf("Expected default RatingRange [6,9], got %+v", got)
	}
	if _, ok := defaults.Selection("Genres"); ok {
		t.Error("Expected primary selection to have no default")
	}

	car := Car().Defaults()
	if got, _ := car.Number("SeatCount"); got != 5 {
		t.Errorf("Expected default SeatCount 5, got %v", got)
	}
}

func TestDomain_CheckSchema(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		prefs   models.PreferenceSet
		wantErr bool
	}{
		{
			name:  "known criteria",
			prefs: models.PreferenceSet{}.WithSelection("Genres", "Drama").WithRange("RuntimeRange", 90, 120),
		},
		{
			name:    "selection on non-primary key",
			prefs:   models.PreferenceSet{}.WithSelection("Traits", "Sportlich"),
			wantErr: true,
		},
		{
			name:    "range given as choice",
			prefs:   models.PreferenceSet{}.WithChoice("RatingRange", "7"),
			wantErr: true,
		},
		{
			name:    "unknown number",
			prefs:   models.PreferenceSet{}.WithNumber("SeatCount", 4),
			wantErr: true,
		},
	}

	d := Movie()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := d.CheckSchema(tt.prefs)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownCriterion) {
					t.Errorf("Expected ErrUnknownCriterion, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestDomain_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Domain)
	}{
		{name: "two candidates", mutate: func(d *Domain) { d.Candidates = d.Candidates[:2] }},
		{name: "count above options", mutate: func(d *Domain) { d.Primary.Count = 10 }},
		{name: "exclusive unknown option", mutate: func(d *Domain) { d.Primary.Exclusive = [][2]string{{"Drama", "Western"}} }},
		{name: "default outside bounds", mutate: func(d *Domain) { d.Ranges[1].Default = models.Range{Low: 0, High: 9} }},
		{name: "era without years", mutate: func(d *Domain) { d.Attributes.Years = nil }},
		{name: "unknown strategy", mutate: func(d *Domain) { d.Strategy = "magic" }},
		{name: "duplicate key", mutate: func(d *Domain) { d.Choices[1].Key = "Era" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := Movie()
			tt.mutate(d)
			if err := d.Validate(); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestRangeCriterion_Effective(t *testing.T) {
	t.Parallel()

	price, ok := Car().Range("PriceRange")
	if !ok {
		t.Fatal("Expected car domain to declare PriceRange")
	}
	want := models.Range{Low: 5000, High: 100000}
	if got := price.Effective(); got != want {
		t.Errorf("Expected effective range %+v, got %+v", want, got)
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(Builtin()...)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if got := r.Names(); len(got) != 2 || got[0] != DomainMovie || got[1] != DomainCar {
		t.Errorf("Expected names [movie car], got %v", got)
	}
	if _, err := r.Get("boat"); !errors.Is(err, ErrUnknownDomain) {
		t.Errorf("Expected ErrUnknownDomain, got %v", err)
	}
	d, err := r.Get(DomainCar)
	if err != nil {
		t.Fatalf("Expected car domain, got %v", err)
	}
	if d.SelectionAction() != models.ActionTraitSelected {
		t.Errorf("Expected action %s, got %s", models.ActionTraitSelected, d.SelectionAction())
	}
}

func TestLoad_FileOverridesBuiltin(t *testing.T) {
	t.Parallel()

	const doc = `
domains:
  - name: movie
    title: CineMate Kids
    strategy: rating
    primary:
      key: Genres
      label: Genres
      options: [Komödie, Animation, Abenteuer, Familie]
      count: 2
      action: genres_selected
    choices:
      - key: Era
        label: Epoche
        options: ["Klassiker (<2000)", "Modern (2000+)"]
        default: "Modern (2000+)"
    ranges:
      - key: RatingRange
        label: Bewertung
        bounds: {low: 1, high: 10}
        default: {low: 5, high: 10}
    candidates: [Kiko, Pip, Lumo]
    attributes:
      rating: RatingRange
      era: Era
      years:
        "Klassiker (<2000)": {min: 1970, max: 1999}
        "Modern (2000+)": {min: 2000, max: 2024}
      votes: {min: 100, max: 200}
`
	path := filepath.Join(t.TempDir(), "domains.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("Failed to write domains file: %v", err)
	}

	r, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	d, err := r.Get(DomainMovie)
	if err != nil {
		t.Fatalf("Expected movie domain, got %v", err)
	}
	if d.Title != "CineMate Kids" {
		t.Errorf("Expected overridden title, got '%s'", d.Title)
	}
	if d.Primary.Count != 2 {
		t.Errorf("Expected primary count 2, got %d", d.Primary.Count)
	}
	if len(r.Names()) != 2 {
		t.Errorf("Expected override to keep 2 domains, got %v", r.Names())
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "domains.yaml")
	if err := os.WriteFile(path, []byte("domains:\n  - name: broken\n    strategy: rating\n"), 0o600); err != nil {
		t.Fatalf("Failed to write domains file: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected invalid domain to fail loading")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected missing file to fail loading")
	}
}
