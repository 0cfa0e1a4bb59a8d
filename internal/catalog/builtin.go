package catalog

import "github.com/benvon/cinemate/internal/models"

const (
	// DomainMovie is the CineMate variant
	DomainMovie = "movie"
	// DomainCar is the Cara variant
	DomainCar = "car"
)

// Movie returns the CineMate domain
func Movie() *Domain {
	return &Domain{
		Name:     DomainMovie,
		Title:    "CineMate",
		Strategy: StrategyRating,
		Primary: MultiChoice{
			Key:     "Genres",
			Label:   "Genres",
			Options: []string{"Komödie", "Drama", "Action", "Science-Fiction", "Horror", "Thriller"},
			Count:   3,
			Action:  string(models.ActionGenresSelected),
			Noun:    "Genres",
		},
		Choices: []Choice{
			{
				Key:     "Era",
				Label:   "Epoche",
				Options: []string{"Klassiker (<2000)", "Modern (2000+)"},
				Default: "Klassiker (<2000)",
			},
			{
				Key:     "VisualStyle",
				Label:   "Visueller Stil",
				Options: []string{"Realfilm", "Animation", "Schwarz-Weiß"},
				Default: "Realfilm",
			},
		},
		Ranges: []RangeCriterion{
			{
				Key:     "RuntimeRange",
				Label:   "Laufzeit (Minuten)",
				Bounds:  models.Range{Low: 60, High: 240},
				Integer: true,
				Default: models.Range{Low: 90, High: 140},
			},
			{
				Key:     "RatingRange",
				Label:   "IMDb-Bewertung",
				Bounds:  models.Range{Low: 1.0, High: 10.0},
				Default: models.Range{Low: 6.0, High: 9.0},
			},
		},
		Candidates: []string{"Chronos V", "Das letzte Echo", "Schatten im Nebel"},
		Attributes: Attributes{
			Rating:        "RatingRange",
			RatingOffsets: []float64{0, -0.3, 0.2},
			Runtime:       "RuntimeRange",
			Era:           "Era",
			Years: map[string]Bounds{
				"Klassiker (<2000)": {Min: 1970, Max: 1999},
				"Modern (2000+)":    {Min: 2000, Max: 2024},
			},
			Votes:   Bounds{Min: 13000, Max: 15000},
			Ranking: &Bounds{Min: 1, Max: 5000},
		},
		Explain: true,
	}
}

// Car returns the Cara domain
func Car() *Domain {
	return &Domain{
		Name:     DomainCar,
		Title:    "Cara",
		Strategy: StrategyPrice,
		Primary: MultiChoice{
			Key:   "Traits",
			Label: "Eigenschaften",
			Options: []string{
				"Sportlich", "Sparsam", "Familienfreundlich",
				"Luxuriös", "Umweltfreundlich", "Geländetauglich",
			},
			Count:     3,
			Exclusive: [][2]string{{"Luxuriös", "Sparsam"}},
			Action:    string(models.ActionTraitSelected),
			Noun:      "Eigenschaften",
		},
		Choices: []Choice{
			{
				Key:     "VehicleType",
				Label:   "Fahrzeugtyp",
				Options: []string{"Limousine", "SUV", "Kombi", "Kleinwagen", "Cabrio"},
				Default: "Limousine",
			},
			{
				Key:     "Fuel",
				Label:   "Antrieb",
				Options: []string{"Benzin", "Diesel", "Elektro", "Hybrid"},
				Default: "Benzin",
			},
		},
		Numbers: []Number{
			{Key: "SeatCount", Label: "Sitzplätze", Min: 2, Max: 9, Integer: true, Default: 5},
		},
		Ranges: []RangeCriterion{
			{
				Key:     "PriceRange",
				Label:   "Preisrahmen (€)",
				Bounds:  models.Range{Low: 0, High: 1_000_000},
				Limit:   &models.Range{Low: 5_000, High: 100_000},
				Integer: true,
				Default: models.Range{Low: 20_000, High: 40_000},
			},
		},
		Candidates: []string{"Aurora GT", "Vento Family", "Nordlys E"},
		Attributes: Attributes{
			RatingBounds: &models.Range{Low: 3.5, High: 5.0},
			Price:        "PriceRange",
			PriceStep:    5,
			PriceOffsets: []int{-50, 0, 50},
			Currency:     "€",
			Locale:       "de",
			Votes:        Bounds{Min: 5000, Max: 250000},
		},
	}
}

// Builtin returns fresh copies of the domains shipped with the service
func Builtin() []*Domain {
	return []*Domain{Movie(), Car()}
}
