package recommend

import (
	"fmt"
	"math"
	"slices"

	"github.com/benvon/cinemate/internal/catalog"
	"github.com/benvon/cinemate/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// byRating draws each candidate's rating from the user's rating range plus a
// per-slot offset, and fills runtime, year and popularity.
func (g *RandomGenerator) byRating(d *catalog.Domain, p models.PreferenceSet) ([]models.RecommendationRecord, error) {
	a := d.Attributes

	rating, err := requireRange(d, p, a.Rating)
	if err != nil {
		return nil, err
	}

	var runtimeLo, runtimeHi int
	if a.Runtime != "" {
		rt, err := requireRange(d, p, a.Runtime)
		if err != nil {
			return nil, err
		}
		runtimeLo, runtimeHi = int(math.Ceil(rt.Low)), int(math.Floor(rt.High))
		if runtimeLo > runtimeHi {
			return nil, fmt.Errorf("%w: %s holds no whole number", ErrIncomplete, a.Runtime)
		}
	}

	var years catalog.Bounds
	if a.Era != "" {
		era, ok := p.Choice(a.Era)
		if !ok {
			return nil, fmt.Errorf("%w: %s requires %s", ErrIncomplete, d.Name, a.Era)
		}
		if years, ok = a.Years[era]; !ok {
			return nil, fmt.Errorf("%w: no year bucket for %s %q", ErrIncomplete, a.Era, era)
		}
	}

	selections, _ := p.Selection(d.Primary.Key)
	records := make([]models.RecommendationRecord, 0, len(d.Candidates))
	for i, name := range d.Candidates {
		var offset float64
		if i < len(a.RatingOffsets) {
			offset = a.RatingOffsets[i]
		}

		rec := models.RecommendationRecord{
			Rank:       i + 1,
			Name:       name,
			Rating:     roundWithin(g.uniform(rating.Low, rating.High)+offset, rating),
			Votes:      g.intBetween(a.Votes.Min, a.Votes.Max),
			Selections: slices.Clone(selections),
			Attributes: echo(d, p),
			Matches:    make(map[string]bool, 3),
		}
		rec.Matches[a.Rating] = rating.Contains(rec.Rating)

		if a.Ranking != nil {
			rec.Ranking = g.intBetween(a.Ranking.Min, a.Ranking.Max)
		}
		if a.Runtime != "" {
			rec.Runtime = g.intBetween(runtimeLo, runtimeHi)
			rec.Matches[a.Runtime] = rec.Runtime >= runtimeLo && rec.Runtime <= runtimeHi
		}
		if a.Era != "" {
			rec.Year = g.intBetween(years.Min, years.Max)
			rec.Matches[a.Era] = rec.Year >= years.Min && rec.Year <= years.Max
		}
		records = append(records, rec)
	}
	return records, nil
}

// byPrice spreads three price tiers around the midpoint of the user's price
// range and shuffles names and ratings across the tiers.
func (g *RandomGenerator) byPrice(d *catalog.Domain, p models.PreferenceSet) ([]models.RecommendationRecord, error) {
	a := d.Attributes

	price, err := requireRange(d, p, a.Price)
	if err != nil {
		return nil, err
	}

	ratingScale := models.Range{Low: 1, High: 5}
	switch {
	case a.Rating != "":
		if ratingScale, err = requireRange(d, p, a.Rating); err != nil {
			return nil, err
		}
	case a.RatingBounds != nil:
		ratingScale = *a.RatingBounds
	}

	tiers := PriceTiers(price, a.PriceStep, a.PriceOffsets)
	printer := message.NewPrinter(localeTag(a.Locale))

	ratings := make([]float64, len(d.Candidates))
	for i := range ratings {
		ratings[i] = roundWithin(g.uniform(ratingScale.Low, ratingScale.High), ratingScale)
	}
	names := g.src.Perm(len(d.Candidates))
	order := g.src.Perm(len(d.Candidates))

	selections, _ := p.Selection(d.Primary.Key)
	records := make([]models.RecommendationRecord, 0, len(d.Candidates))
	for i := range d.Candidates {
		amount := tiers[i%len(tiers)]
		rec := models.RecommendationRecord{
			Rank:       i + 1,
			Name:       d.Candidates[names[i]],
			Rating:     ratings[order[i]],
			Votes:      g.intBetween(a.Votes.Min, a.Votes.Max),
			Price:      amount,
			PriceLabel: FormatPrice(printer, amount, a.Currency),
			Selections: slices.Clone(selections),
			Attributes: echo(d, p),
			Matches:    map[string]bool{a.Price: price.Contains(float64(amount))},
		}
		records = append(records, rec)
	}
	return records, nil
}

// PriceTiers returns base+offset for every offset, clamped into r, where base
// is the midpoint of r rounded to the nearest multiple of step (ties to even).
func PriceTiers(r models.Range, step int, offsets []int) []int {
	if step <= 0 {
		step = 1
	}
	if len(offsets) == 0 {
		offsets = []int{0}
	}
	base := int(math.RoundToEven(r.Midpoint()/float64(step))) * step
	lo, hi := int(math.Ceil(r.Low)), int(math.Floor(r.High))

	tiers := make([]int, len(offsets))
	for i, off := range offsets {
		tiers[i] = min(max(base+off, lo), hi)
	}
	return tiers
}

// FormatPrice renders amount with the printer's thousands separator and the currency suffix
func FormatPrice(printer *message.Printer, amount int, currency string) string {
	s := printer.Sprintf("%d", amount)
	if currency == "" {
		return s
	}
	return s + " " + currency
}

func localeTag(locale string) language.Tag {
	if locale == "" {
		return language.German
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.German
	}
	return tag
}

// roundWithin clamps v into r and rounds to one decimal without leaving r.
// Ranges narrower than one decimal step keep the clamped value unrounded.
func roundWithin(v float64, r models.Range) float64 {
	v = math.Min(math.Max(v, r.Low), r.High)
	rounded := math.Round(v*10) / 10
	if rounded > r.High {
		rounded = math.Floor(r.High*10) / 10
	}
	if rounded < r.Low {
		rounded = math.Ceil(r.Low*10) / 10
	}
	if !r.Contains(rounded) {
		return v
	}
	return rounded
}
