// Package explain produces the short "why this recommendation" text shown
// next to each record in domains that enable explanations.
package explain

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/benvon/cinemate/internal/catalog"
	"github.com/benvon/cinemate/internal/models"
)

// Explainer writes one explanation sentence for a generated record
type Explainer interface {
	Explain(ctx context.Context, d *catalog.Domain, p models.PreferenceSet, rec models.RecommendationRecord) (string, error)
}

// TemplateExplainer builds the explanation from the record's matches and echoed selections
type TemplateExplainer struct{}

// NewTemplateExplainer creates a template explainer
func NewTemplateExplainer() *TemplateExplainer {
	return &TemplateExplainer{}
}

// Explain never fails
func (TemplateExplainer) Explain(_ context.Context, d *catalog.Domain, _ models.PreferenceSet, rec models.RecommendationRecord) (string, error) {
	var b strings.Builder
	b.WriteString(rec.Name)
	if len(rec.Selections) > 0 {
		fmt.Fprintf(&b, " passt zu deiner Auswahl %s", joinGerman(rec.Selections))
	} else {
		b.WriteString(" passt zu deinen Angaben")
	}

	matched := make([]string, 0, len(rec.Matches))
	for key, ok := range rec.Matches {
		if ok {
			matched = append(matched, d.Label(key))
		}
	}
	slices.Sort(matched)
	if len(matched) > 0 {
		fmt.Fprintf(&b, " und trifft deine Vorgaben bei %s", joinGerman(matched))
	}
	b.WriteString(".")
	return b.String(), nil
}

// joinGerman joins items as "a, b und c"
func joinGerman(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " und " + items[len(items)-1]
	}
}

// Apply fills the Explanation of every record. Records are returned as a new slice.
func Apply(ctx context.Context, e Explainer, d *catalog.Domain, p models.PreferenceSet, records []models.RecommendationRecord) []models.RecommendationRecord {
	out := slices.Clone(records)
	for i := range out {
		text, err := e.Explain(ctx, d, p, out[i])
		if err != nil {
			continue
		}
		out[i].Explanation = text
	}
	return out
}
