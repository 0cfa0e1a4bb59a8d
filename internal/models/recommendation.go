package models

// RecommendationRecord is one generated placeholder recommendation.
// Which numeric attributes are populated depends on the domain's generation strategy.
type RecommendationRecord struct {
	Rank        int               `json:"rank"`
	Name        string            `json:"name"`
	Rating      float64           `json:"rating"`
	Votes       int               `json:"votes"`
	Ranking     int               `json:"ranking,omitempty"`
	Year        int               `json:"year,omitempty"`
	Runtime     int               `json:"runtime,omitempty"`
	Price       int               `json:"price,omitempty"`
	PriceLabel  string            `json:"price_label,omitempty"`
	Selections  []string          `json:"selections,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	Matches     map[string]bool   `json:"matches,omitempty"`
	Explanation string            `json:"explanation,omitempty"`
}

// MatchesAll reports whether every recorded boundary check passed
func (r RecommendationRecord) MatchesAll() bool {
	for _, ok := range r.Matches {
		if !ok {
			return false
		}
	}
	return true
}
