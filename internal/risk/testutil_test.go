package risk

import "time"

var fixedNow = time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC)

func testCatalog() *Catalog {
	return NewCatalog(CatalogData{
		Crops: []CropAdvisories{
			{Crop: "Chilli", Pests: []PestAdvisory{
				{Pest: "thrips", Advisory: Advisory{
					Preventive: []string{"Use blue sticky traps (40 per acre)."},
					Corrective: []string{"Spray neem oil 3%."},
				}},
				{Pest: "mosaic_virus", Advisory: Advisory{
					Symptoms:   []string{"Mottled leaves"},
					Preventive: []string{"Use virus-free certified seeds."},
					Corrective: []string{"Remove infected plants immediately."},
				}},
			}},
			{Crop: "tomato", Pests: []PestAdvisory{
				{Pest: "fruit_borer", Advisory: Advisory{
					Preventive: []string{"Install pheromone traps (Helilure)."},
					Corrective: []string{"Release Trichogramma chilonis egg parasitoids."},
				}},
				{Pest: "early_blight", Advisory: Advisory{
					Symptoms:   []string{"Brown concentric rings on older leaves"},
					Preventive: []string{"Use resistant varieties."},
					Corrective: []string{"Use copper-based fungicides."},
				}},
			}},
			{Crop: "cotton", Pests: []PestAdvisory{
				{Pest: "whitefly", Advisory: Advisory{
					Symptoms:   []string{"Yellowing and curling of leaves"},
					Preventive: []string{"Remove alternate hosts"},
					Corrective: []string{"Neem oil"},
				}},
			}},
		},
		Synonyms: []Synonym{
			{Canonical: "thrips", Tokens: []string{"thrips", "kakki", "thrip"}},
			{Canonical: "aphid", Tokens: []string{"aphid", "shikara", "aphids"}},
			{Canonical: "whitefly", Tokens: []string{"whitefly", "white fly"}},
			{Canonical: "mosaic_virus", Tokens: []string{"mosaic", "virus"}},
			{Canonical: "leaf_curl", Tokens: []string{"murda"}},
		},
		History: map[string]map[string][]DiseaseHistory{
			"Dharwad": {
				"cotton": {
					{Disease: "whitefly", Season: []string{"September", "October"}, RiskLevel: "HIGH"},
				},
				"tomato": {
					{Disease: "early_blight", Season: []string{"October", "November"}, RiskLevel: "medium"},
					{Disease: "fruit_borer", Season: []string{"March", "April"}, RiskLevel: "HIGH"},
				},
			},
		},
		Districts: map[string]Coordinates{
			"dharwad": {Lat: 15.4589, Lon: 75.0078},
		},
		DefaultPreventive: []string{"Scout fields daily", "Maintain hygiene", "Use IPM"},
		DefaultCorrective: []string{"Consult extension officer", "Use approved inputs only"},
		Labels:            map[string]string{"high": "ಹೆಚ್ಚು"},
	})
}

func testEngine(opts ...Option) *Engine {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewEngine(testCatalog(), opts...)
}

func daysAgo(n int) string {
	return fixedNow.AddDate(0, 0, -n).Format("2006-01-02")
}
