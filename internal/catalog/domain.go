// Package catalog holds the domain configurations that parameterize the
// recommendation pipeline: criterion schema, validation rules, candidate
// names and the generation strategy of each variant.
package catalog

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/benvon/cinemate/internal/models"
)

// CandidateCount is the fixed number of recommendations every domain produces
const CandidateCount = 3

// Strategy selects how the generator derives numeric attributes
type Strategy string

const (
	// StrategyRating draws a rating from the user's rating range (movie variant)
	StrategyRating Strategy = "rating"
	// StrategyPrice derives three price tiers from the user's price range (car variant)
	StrategyPrice Strategy = "price"
)

var (
	// ErrUnknownDomain is returned when a domain name is not registered
	ErrUnknownDomain = errors.New("unknown domain")
	// ErrUnknownCriterion is returned when a preference names a criterion the domain does not declare
	ErrUnknownCriterion = errors.New("unknown criterion")
)

// Bounds is an inclusive interval of whole numbers
type Bounds struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// MultiChoice is the primary criterion: pick exactly Count distinct options
type MultiChoice struct {
	Key       string      `json:"key" yaml:"key"`
	Label     string      `json:"label" yaml:"label"`
	Options   []string    `json:"options" yaml:"options"`
	Count     int         `json:"count" yaml:"count"`
	Exclusive [][2]string `json:"exclusive,omitempty" yaml:"exclusive"`
	Action    string      `json:"action" yaml:"action"`
	Noun      string      `json:"noun" yaml:"noun"`
}

// Choice is a single enumerated criterion
type Choice struct {
	Key     string   `json:"key" yaml:"key"`
	Label   string   `json:"label" yaml:"label"`
	Options []string `json:"options" yaml:"options"`
	Default string   `json:"default" yaml:"default"`
}

// Number is a single numeric criterion
type Number struct {
	Key     string  `json:"key" yaml:"key"`
	Label   string  `json:"label" yaml:"label"`
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	Integer bool    `json:"integer" yaml:"integer"`
	Default float64 `json:"default" yaml:"default"`
}

// RangeCriterion is a numeric [low, high] criterion. Bounds are the declared
// domain limits; Limit, when set, is a stricter business rule.
type RangeCriterion struct {
	Key     string        `json:"key" yaml:"key"`
	Label   string        `json:"label" yaml:"label"`
	Bounds  models.Range  `json:"bounds" yaml:"bounds"`
	Limit   *models.Range `json:"limit,omitempty" yaml:"limit"`
	Integer bool          `json:"integer" yaml:"integer"`
	Default models.Range  `json:"default" yaml:"default"`
}

// Effective returns the interval a value must fall into: Bounds narrowed by Limit
func (c RangeCriterion) Effective() models.Range {
	if c.Limit == nil {
		return c.Bounds
	}
	return models.Range{
		Low:  math.Max(c.Bounds.Low, c.Limit.Low),
		High: math.Min(c.Bounds.High, c.Limit.High),
	}
}

// Attributes binds record attributes to criteria of the domain
type Attributes struct {
	// Rating names the range criterion ratings are drawn from
	Rating string `json:"rating,omitempty" yaml:"rating"`
	// RatingBounds is the fixed rating scale used when Rating is empty
	RatingBounds *models.Range `json:"rating_bounds,omitempty" yaml:"rating_bounds"`
	// RatingOffsets is added per slot before clamping
	RatingOffsets []float64 `json:"rating_offsets,omitempty" yaml:"rating_offsets"`
	Runtime       string    `json:"runtime,omitempty" yaml:"runtime"`
	// Era names the choice criterion whose options map to release year buckets
	Era   string            `json:"era,omitempty" yaml:"era"`
	Years map[string]Bounds `json:"years,omitempty" yaml:"years"`
	Price string            `json:"price,omitempty" yaml:"price"`
	// PriceStep is the rounding granularity of the base price
	PriceStep    int     `json:"price_step,omitempty" yaml:"price_step"`
	PriceOffsets []int   `json:"price_offsets,omitempty" yaml:"price_offsets"`
	Currency     string  `json:"currency,omitempty" yaml:"currency"`
	Locale       string  `json:"locale,omitempty" yaml:"locale"`
	Votes        Bounds  `json:"votes" yaml:"votes"`
	Ranking      *Bounds `json:"ranking,omitempty" yaml:"ranking"`
}

// Domain is one variant of the application
type Domain struct {
	Name       string           `json:"name" yaml:"name"`
	Title      string           `json:"title" yaml:"title"`
	Strategy   Strategy         `json:"strategy" yaml:"strategy"`
	Primary    MultiChoice      `json:"primary" yaml:"primary"`
	Choices    []Choice         `json:"choices,omitempty" yaml:"choices"`
	Numbers    []Number         `json:"numbers,omitempty" yaml:"numbers"`
	Ranges     []RangeCriterion `json:"ranges,omitempty" yaml:"ranges"`
	Candidates []string         `json:"candidates" yaml:"candidates"`
	Attributes Attributes       `json:"attributes" yaml:"attributes"`
	Explain    bool             `json:"explain" yaml:"explain"`
}

// Choice returns the single choice criterion named key
func (d *Domain) Choice(key string) (Choice, bool) {
	for _, c := range d.Choices {
		if c.Key == key {
			return c, true
		}
	}
	return Choice{}, false
}

// Number returns the numeric criterion named key
func (d *Domain) Number(key string) (Number, bool) {
	for _, n := range d.Numbers {
		if n.Key == key {
			return n, true
		}
	}
	return Number{}, false
}

// Range returns the range criterion named key
func (d *Domain) Range(key string) (RangeCriterion, bool) {
	for _, r := range d.Ranges {
		if r.Key == key {
			return r, true
		}
	}
	return RangeCriterion{}, false
}

// Label returns the display label of any criterion, or key itself when unknown
func (d *Domain) Label(key string) string {
	if key == d.Primary.Key && d.Primary.Label != "" {
		return d.Primary.Label
	}
	if c, ok := d.Choice(key); ok && c.Label != "" {
		return c.Label
	}
	if n, ok := d.Number(key); ok && n.Label != "" {
		return n.Label
	}
	if r, ok := d.Range(key); ok && r.Label != "" {
		return r.Label
	}
	return key
}

// SelectionAction is the interaction tag logged when the primary selection is made
func (d *Domain) SelectionAction() models.Action {
	if d.Primary.Action != "" {
		return models.Action(d.Primary.Action)
	}
	return models.ActionGenresSelected
}

// Defaults returns the widget defaults of every non-primary criterion
func (d *Domain) Defaults() models.PreferenceSet {
	p := models.PreferenceSet{}
	for _, c := range d.Choices {
		if c.Default != "" {
			p = p.WithChoice(c.Key, c.Default)
		}
	}
	for _, n := range d.Numbers {
		p = p.WithNumber(n.Key, n.Default)
	}
	for _, r := range d.Ranges {
		p = p.WithRange(r.Key, r.Default.Low, r.Default.High)
	}
	return p
}

// CheckSchema verifies that every key in p is a criterion of the domain and
// carries the right kind of value. Values themselves are checked by the validation gate.
func (d *Domain) CheckSchema(p models.PreferenceSet) error {
	for k := range p.Selections {
		if k != d.Primary.Key {
			return fmt.Errorf("%w: %q is not a multi-choice criterion of %s", ErrUnknownCriterion, k, d.Name)
		}
	}
	for k := range p.Choices {
		if _, ok := d.Choice(k); !ok {
			return fmt.Errorf("%w: %q is not a choice criterion of %s", ErrUnknownCriterion, k, d.Name)
		}
	}
	for k := range p.Numbers {
		if _, ok := d.Number(k); !ok {
			return fmt.Errorf("%w: %q is not a numeric criterion of %s", ErrUnknownCriterion, k, d.Name)
		}
	}
	for k := range p.Ranges {
		if _, ok := d.Range(k); !ok {
			return fmt.Errorf("%w: %q is not a range criterion of %s", ErrUnknownCriterion, k, d.Name)
		}
	}
	return nil
}

// Validate checks the internal consistency of a domain definition
func (d *Domain) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if strings.TrimSpace(d.Name) == "" {
		add("name is required")
	}
	if len(d.Candidates) != CandidateCount {
		add("exactly %d candidates required, got %d", CandidateCount, len(d.Candidates))
	}
	if d.Primary.Key == "" {
		add("primary criterion key is required")
	}
	if d.Primary.Count <= 0 || d.Primary.Count > len(d.Primary.Options) {
		add("primary count %d must be between 1 and %d", d.Primary.Count, len(d.Primary.Options))
	}
	for _, pair := range d.Primary.Exclusive {
		if !slices.Contains(d.Primary.Options, pair[0]) || !slices.Contains(d.Primary.Options, pair[1]) {
			add("exclusive pair %v references unknown option", pair)
		}
	}

	seen := map[string]bool{d.Primary.Key: true}
	claim := func(key string) {
		if key == "" {
			add("criterion key is required")
			return
		}
		if seen[key] {
			add("duplicate criterion %q", key)
		}
		seen[key] = true
	}
	for _, c := range d.Choices {
		claim(c.Key)
		if len(c.Options) == 0 {
			add("choice %q has no options", c.Key)
		}
		if c.Default != "" && !slices.Contains(c.Options, c.Default) {
			add("choice %q default %q is not an option", c.Key, c.Default)
		}
	}
	for _, n := range d.Numbers {
		claim(n.Key)
		if n.Min > n.Max {
			add("number %q has min > max", n.Key)
		}
		if n.Default < n.Min || n.Default > n.Max {
			add("number %q default out of bounds", n.Key)
		}
	}
	for _, r := range d.Ranges {
		claim(r.Key)
		if r.Bounds.Inverted() {
			add("range %q has inverted bounds", r.Key)
		}
		if r.Limit != nil && r.Effective().Inverted() {
			add("range %q limit does not overlap its bounds", r.Key)
		}
		if r.Default.Inverted() || !r.Default.Within(r.Effective()) {
			add("range %q default out of bounds", r.Key)
		}
	}

	a := d.Attributes
	if a.Votes.Min > a.Votes.Max {
		add("votes bounds inverted")
	}
	switch d.Strategy {
	case StrategyRating:
		if _, ok := d.Range(a.Rating); !ok {
			add("rating strategy requires a rating range criterion, got %q", a.Rating)
		}
		if a.Runtime != "" {
			if _, ok := d.Range(a.Runtime); !ok {
				add("runtime attribute %q is not a range criterion", a.Runtime)
			}
		}
		if a.Era != "" {
			era, ok := d.Choice(a.Era)
			if !ok {
				add("era attribute %q is not a choice criterion", a.Era)
			}
			for _, opt := range era.Options {
				if _, ok := a.Years[opt]; !ok {
					add("era option %q has no year bucket", opt)
				}
			}
		}
	case StrategyPrice:
		if _, ok := d.Range(a.Price); !ok {
			add("price strategy requires a price range criterion, got %q", a.Price)
		}
		if len(a.PriceOffsets) != CandidateCount {
			add("price strategy requires %d price offsets", CandidateCount)
		}
		if a.Rating == "" && a.RatingBounds == nil {
			add("price strategy requires rating bounds")
		}
	default:
		add("unknown strategy %q", d.Strategy)
	}
	if n := len(a.RatingOffsets); n != 0 && n != CandidateCount {
		add("rating offsets must be empty or have %d entries", CandidateCount)
	}

	if len(errs) > 0 {
		return fmt.Errorf("domain %q: %w", d.Name, errors.Join(errs...))
	}
	return nil
}
