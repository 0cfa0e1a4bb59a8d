package models

import (
	"maps"
	"slices"
)

// Range is an inclusive numeric interval [Low, High]
type Range struct {
	Low  float64 `json:"low" yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

// Contains reports whether v lies within the range (inclusive)
func (r Range) Contains(v float64) bool {
	return v >= r.Low && v <= r.High
}

// Inverted reports whether the lower bound exceeds the upper bound
func (r Range) Inverted() bool {
	return r.Low > r.High
}

// Within reports whether the whole range lies inside outer
func (r Range) Within(outer Range) bool {
	return r.Low >= outer.Low && r.High <= outer.High
}

// Midpoint returns the arithmetic middle of the range
func (r Range) Midpoint() float64 {
	return (r.Low + r.High) / 2
}

// PreferenceSet maps criterion names to user supplied values.
// A PreferenceSet is treated as an immutable value: use Merge and the With*
// helpers to derive a new set instead of mutating the maps of a stored one.
type PreferenceSet struct {
	Selections map[string][]string `json:"selections,omitempty"`
	Choices    map[string]string   `json:"choices,omitempty"`
	Numbers    map[string]float64  `json:"numbers,omitempty"`
	Ranges     map[string]Range    `json:"ranges,omitempty"`
}

// IsEmpty reports whether no criterion has been set
func (p PreferenceSet) IsEmpty() bool {
	return len(p.Selections) == 0 && len(p.Choices) == 0 && len(p.Numbers) == 0 && len(p.Ranges) == 0
}

// Selection returns the multi-choice values for key
func (p PreferenceSet) Selection(key string) ([]string, bool) {
	v, ok := p.Selections[key]
	return v, ok
}

// Choice returns the single choice for key
func (p PreferenceSet) Choice(key string) (string, bool) {
	v, ok := p.Choices[key]
	return v, ok
}

// Number returns the numeric input for key
func (p PreferenceSet) Number(key string) (float64, bool) {
	v, ok := p.Numbers[key]
	return v, ok
}

// Range returns the range input for key
func (p PreferenceSet) Range(key string) (Range, bool) {
	v, ok := p.Ranges[key]
	return v, ok
}

// Clone returns a deep copy of the set
func (p PreferenceSet) Clone() PreferenceSet {
	out := PreferenceSet{
		Choices: maps.Clone(p.Choices),
		Numbers: maps.Clone(p.Numbers),
		Ranges:  maps.Clone(p.Ranges),
	}
	if p.Selections != nil {
		out.Selections = make(map[string][]string, len(p.Selections))
		for k, v := range p.Selections {
			out.Selections[k] = slices.Clone(v)
		}
	}
	return out
}

// Merge returns a new set holding p overlaid with every value present in patch.
// Values in patch win; neither p nor patch is modified.
func (p PreferenceSet) Merge(patch PreferenceSet) PreferenceSet {
	out := p.Clone()
	for k, v := range patch.Selections {
		if out.Selections == nil {
			out.Selections = make(map[string][]string)
		}
		out.Selections[k] = slices.Clone(v)
	}
	for k, v := range patch.Choices {
		if out.Choices == nil {
			out.Choices = make(map[string]string)
		}
		out.Choices[k] = v
	}
	for k, v := range patch.Numbers {
		if out.Numbers == nil {
			out.Numbers = make(map[string]float64)
		}
		out.Numbers[k] = v
	}
	for k, v := range patch.Ranges {
		if out.Ranges == nil {
			out.Ranges = make(map[string]Range)
		}
		out.Ranges[k] = v
	}
	return out
}

// WithSelection returns a copy of p with key set to values
func (p PreferenceSet) WithSelection(key string, values ...string) PreferenceSet {
	return p.Merge(PreferenceSet{Selections: map[string][]string{key: values}})
}

// WithChoice returns a copy of p with key set to value
func (p PreferenceSet) WithChoice(key, value string) PreferenceSet {
	return p.Merge(PreferenceSet{Choices: map[string]string{key: value}})
}

// WithNumber returns a copy of p with key set to value
func (p PreferenceSet) WithNumber(key string, value float64) PreferenceSet {
	return p.Merge(PreferenceSet{Numbers: map[string]float64{key: value}})
}

// WithRange returns a copy of p with key set to [low, high]
func (p PreferenceSet) WithRange(key string, low, high float64) PreferenceSet {
	return p.Merge(PreferenceSet{Ranges: map[string]Range{key: {Low: low, High: high}}})
}

// Keys returns every criterion name present in the set, sorted
func (p PreferenceSet) Keys() []string {
	keys := make([]string, 0, len(p.Selections)+len(p.Choices)+len(p.Numbers)+len(p.Ranges))
	for k := range p.Selections {
		keys = append(keys, k)
	}
	for k := range p.Choices {
		keys = append(keys, k)
	}
	for k := range p.Numbers {
		keys = append(keys, k)
	}
	for k := range p.Ranges {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return slices.Compact(keys)
}
