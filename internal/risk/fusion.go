package risk

import "math"

const (
	ruleFusionWeight = 0.6
	mlFusionWeight   = 0.4
)

// FeatureNames is the column order of Features.Vector. Models trained for
// this service must use the same order.
var FeatureNames = []string{
	"nearby_reports",
	"symptom_count",
	"days_since_irrigation",
	"soil_stress",
	"weather_fungal_delta",
}

// Features is the input contract of an external risk model.
type Features struct {
	NearbyReports       float64 `json:"nearby_reports"`
	SymptomCount        float64 `json:"symptom_count"`
	DaysSinceIrrigation float64 `json:"days_since_irrigation"`
	SoilStress          float64 `json:"soil_stress"`
	WeatherDelta        float64 `json:"weather_fungal_delta"`
}

// Vector returns the features in FeatureNames order.
func (f Features) Vector() []float64 {
	return []float64{f.NearbyReports, f.SymptomCount, f.DaysSinceIrrigation, f.SoilStress, f.WeatherDelta}
}

// Predictor produces the probability that a crop is under pest pressure.
type Predictor interface {
	Predict(f Features) (float64, error)
}

// FuseScores blends a rule score with an optional model probability. With
// no probability the rule score is returned unchanged.
func FuseScores(ruleScore float64, mlProbability *float64) float64 {
	if mlProbability == nil {
		return ruleScore
	}
	p := clamp01(*mlProbability)
	return math.Min(1.0, round3(ruleFusionWeight*ruleScore+mlFusionWeight*p))
}

func buildFeatures(a Assessment, reports int, weather WeatherAssessment) Features {
	f := Features{
		NearbyReports: float64(reports),
		SymptomCount:  float64(a.SymptomCount),
		WeatherDelta:  weather.Delta,
	}
	if a.HasIrrigation {
		f.DaysSinceIrrigation = float64(a.DaysSinceIrrigation)
	}
	if a.SoilStress {
		f.SoilStress = 1
	}
	return f
}
