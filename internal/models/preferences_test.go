package models

import (
	"reflect"
	"testing"
)

func TestPreferenceSet_MergeDoesNotMutate(t *testing.T) {
	t.Parallel()

	base := PreferenceSet{}.
		WithSelection("Genres", "Drama", "Action", "Thriller").
		WithChoice("Era", "Modern (2000+)").
		WithRange("RatingRange", 6.0, 9.0)

	patch := PreferenceSet{}.
		WithChoice("Era", "Klassiker (<2000)").
		WithNumber("SeatCount", 5)

	merged := base.Merge(patch)

	if got, _ := base.Choice("Era"); got != "Modern (2000+)" {
		t.Errorf("Expected base Era to stay 'Modern (2000+)', got '%s'", got)
	}
	if _, ok := base.Number("SeatCount"); ok {
		t.Error("Expected base to not gain SeatCount")
	}
	if got, _ := merged.Choice("Era"); got != "Klassiker (<2000)" {
		t.Errorf("Expected merged Era 'Klassiker (<2000)', got '%s'", got)
	}
	if got, _ := merged.Number("SeatCount"); got != 5 {
		t.Errorf("Expected merged SeatCount 5, got %v", got)
	}
	if got, _ := merged.Range("RatingRange"); got != (Range{Low: 6.0, High: 9.0}) {
		t.Errorf("Expected merged RatingRange to be kept, got %+v", got)
	}

	// Mutating the merged selection slice must not leak into base
	sel, _ := merged.Selection("Genres")
	sel[0] = "Horror"
	if got, _ := base.Selection("Genres"); got[0] != "Drama" {
		t.Errorf("Expected base selection to be isolated, got %v", got)
	}
}

func TestPreferenceSet_Keys(t *testing.T) {
	t.Parallel()

	p := PreferenceSet{}.
		WithRange("RuntimeRange", 90, 140).
		WithSelection("Genres", "Drama").
		WithChoice("Era", "Modern (2000+)")

	want := []string{"Era", "Genres", "RuntimeRange"}
	if got := p.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected keys %v, got %v", want, got)
	}
	if (PreferenceSet{}).IsEmpty() != true {
		t.Error("Expected zero PreferenceSet to be empty")
	}
	if p.IsEmpty() {
		t.Error("Expected populated PreferenceSet to not be empty")
	}
}

func TestRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		r        Range
		value    float64
		contains bool
		inverted bool
	}{
		{name: "inside", r: Range{Low: 6, High: 9}, value: 7.5, contains: true},
		{name: "lower edge", r: Range{Low: 6, High: 9}, value: 6, contains: true},
		{name: "upper edge", r: Range{Low: 6, High: 9}, value: 9, contains: true},
		{name: "below", r: Range{Low: 6, High: 9}, value: 5.9, contains: false},
		{name: "inverted", r: Range{Low: 8, High: 7}, value: 7.5, contains: false, inverted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.r.Contains(tt.value); got != tt.contains {
				t.Errorf("Contains(%v) = %v, want %v", tt.value, got, tt.contains)
			}
			if got := tt.r.Inverted(); got != tt.inverted {
				t.Errorf("Inverted() = %v, want %v", got, tt.inverted)
			}
		})
	}

	if !(Range{Low: 10000, High: 20000}).Within(Range{Low: 5000, High: 100000}) {
		t.Error("Expected [10000,20000] to be within [5000,100000]")
	}
	if got := (Range{Low: 10000, High: 20000}).Midpoint(); got != 15000 {
		t.Errorf("Expected midpoint 15000, got %v", got)
	}
}
