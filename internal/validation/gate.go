package validation

import (
	"fmt"
	"math"
	"slices"

	"github.com/benvon/cinemate/internal/catalog"
	"github.com/benvon/cinemate/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Code identifies the kind of gate failure
type Code string

const (
	CodeExclusiveChoices Code = "exclusive_choices"
	CodeSelectionCount   Code = "selection_count"
	CodeUnknownOption    Code = "unknown_option"
	CodeMissingValue     Code = "missing_value"
	CodeOutOfBounds      Code = "out_of_bounds"
	CodeNotInteger       Code = "not_integer"
	CodeInvertedRange    Code = "inverted_range"
)

// ValidationError is a gate failure. Message is a corrective instruction meant
// for the end user.
type ValidationError struct {
	Code      Code   `json:"code"`
	Criterion string `json:"criterion"`
	Message   string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.Code, e.Criterion, e.Message)
}

// Gate runs the precondition checks that guard recommendation generation
type Gate struct {
	printer *message.Printer
}

// NewGate creates a gate whose corrective messages are formatted for tag
func NewGate(tag language.Tag) *Gate {
	return &Gate{printer: message.NewPrinter(tag)}
}

// DefaultLanguage is the UI language of the built-in domains
var DefaultLanguage = language.German

var defaultGate = NewGate(DefaultLanguage)

// Check runs the default (German) gate
func Check(d *catalog.Domain, p models.PreferenceSet) error {
	return defaultGate.Check(d, p)
}

// Check evaluates p against d and returns the first failure as a
// *ValidationError, or nil when generation may proceed. Mutual exclusion is
// checked before cardinality, then single choices, numbers and ranges.
func (g *Gate) Check(d *catalog.Domain, p models.PreferenceSet) error {
	if err := g.checkPrimary(d.Primary, p); err != nil {
		return err
	}
	for _, c := range d.Choices {
		if err := g.checkChoice(c, p); err != nil {
			return err
		}
	}
	for _, n := range d.Numbers {
		if err := g.checkNumber(n, p); err != nil {
			return err
		}
	}
	for _, r := range d.Ranges {
		if err := g.checkRange(r, p); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gate) checkPrimary(mc catalog.MultiChoice, p models.PreferenceSet) error {
	selected, _ := p.Selection(mc.Key)

	for _, pair := range mc.Exclusive {
		if slices.Contains(selected, pair[0]) && slices.Contains(selected, pair[1]) {
			return &ValidationError{
				Code:      CodeExclusiveChoices,
				Criterion: mc.Key,
				Message:   g.printer.Sprintf("„%s“ und „%s“ können nicht gemeinsam gewählt werden.", pair[0], pair[1]),
			}
		}
	}

	if len(selected) != mc.Count || Validate.Var(selected, "unique") != nil {
		return &ValidationError{
			Code:      CodeSelectionCount,
			Criterion: mc.Key,
			Message:   g.printer.Sprintf("Bitte wähle genau %d verschiedene %s aus.", mc.Count, noun(mc)),
		}
	}

	for _, v := range selected {
		if !slices.Contains(mc.Options, v) {
			return &ValidationError{
				Code:      CodeUnknownOption,
				Criterion: mc.Key,
				Message:   g.printer.Sprintf("„%s“ ist keine gültige Auswahl für %s.", v, mc.Label),
			}
		}
	}
	return nil
}

func (g *Gate) checkChoice(c catalog.Choice, p models.PreferenceSet) error {
	v, ok := p.Choice(c.Key)
	if !ok || v == "" {
		return g.missing(c.Key, c.Label)
	}
	if !slices.Contains(c.Options, v) {
		return &ValidationError{
			Code:      CodeUnknownOption,
			Criterion: c.Key,
			Message:   g.printer.Sprintf("„%s“ ist keine gültige Auswahl für %s.", v, c.Label),
		}
	}
	return nil
}

func (g *Gate) checkNumber(n catalog.Number, p models.PreferenceSet) error {
	v, ok := p.Number(n.Key)
	if !ok {
		return g.missing(n.Key, n.Label)
	}
	if n.Integer && !isInteger(v) {
		return g.notInteger(n.Key, n.Label)
	}
	if math.IsNaN(v) || v < n.Min || v > n.Max {
		return g.outOfBounds(n.Key, n.Label, models.Range{Low: n.Min, High: n.Max})
	}
	return nil
}

func (g *Gate) checkRange(c catalog.RangeCriterion, p models.PreferenceSet) error {
	r, ok := p.Range(c.Key)
	if !ok {
		return g.missing(c.Key, c.Label)
	}
	if r.Inverted() {
		return &ValidationError{
			Code:      CodeInvertedRange,
			Criterion: c.Key,
			Message:   g.printer.Sprintf("%s: Der Mindestwert (%s) darf nicht größer als der Höchstwert (%s) sein.", c.Label, g.number(r.Low), g.number(r.High)),
		}
	}
	if c.Integer && (!isInteger(r.Low) || !isInteger(r.High)) {
		return g.notInteger(c.Key, c.Label)
	}
	if !r.Within(c.Bounds) {
		return g.outOfBounds(c.Key, c.Label, c.Bounds)
	}
	if c.Limit != nil && !r.Within(c.Effective()) {
		return g.outOfBounds(c.Key, c.Label, c.Effective())
	}
	return nil
}

func (g *Gate) missing(key, label string) error {
	return &ValidationError{
		Code:      CodeMissingValue,
		Criterion: key,
		Message:   g.printer.Sprintf("Bitte gib einen Wert für %s an.", label),
	}
}

func (g *Gate) notInteger(key, label string) error {
	return &ValidationError{
		Code:      CodeNotInteger,
		Criterion: key,
		Message:   g.printer.Sprintf("%s muss eine ganze Zahl sein.", label),
	}
}

func (g *Gate) outOfBounds(key, label string, bounds models.Range) error {
	return &ValidationError{
		Code:      CodeOutOfBounds,
		Criterion: key,
		Message:   g.printer.Sprintf("%s muss zwischen %s und %s liegen.", label, g.number(bounds.Low), g.number(bounds.High)),
	}
}

// number renders v with the gate locale's separators
func (g *Gate) number(v float64) string {
	if isInteger(v) && math.Abs(v) < 1e15 {
		return g.printer.Sprintf("%d", int64(v))
	}
	return g.printer.Sprintf("%.1f", v)
}

func noun(mc catalog.MultiChoice) string {
	if mc.Noun != "" {
		return mc.Noun
	}
	return mc.Label
}

func isInteger(v float64) bool {
	return v == math.Trunc(v) && !math.IsInf(v, 0)
}
