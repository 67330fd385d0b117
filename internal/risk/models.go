package risk

import "errors"

// ErrDistrictMissing is returned when a farmer record lacks the district or
// soil type needed to run a scan.
var ErrDistrictMissing = errors.New("farmer district or soil type missing")

// Severity is the coarse urgency label derived from a fused risk score.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
)

// rank orders severities for deduplication; unknown labels rank lowest.
func (s Severity) rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityModerate:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Complexity estimates how many independent signals back an alert.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
	ComplexityCritical Complexity = "critical"
)

// AlertType tells per-farmer alerts apart from district-wide ones.
type AlertType string

const (
	AlertPerCrop          AlertType = "per_crop"
	AlertDistrictOutbreak AlertType = "district_outbreak"
	AlertDiseaseBreakdown AlertType = "district_disease_breakdown"
)

// UnknownPest is the trigger pest of an alert with no resolvable pest.
const UnknownPest = "unknown"

// LogEntry is one farmer-submitted activity record under a crop slot.
type LogEntry struct {
	Key                string             `json:"key"`
	CropName           string             `json:"cropName,omitempty"`
	Symptoms           string             `json:"symptoms,omitempty"`
	LastIrrigationDate string             `json:"lastIrrigationDate,omitempty"`
	SoilTest           map[string]float64 `json:"soilTest,omitempty"`
	PestDiseaseName    string             `json:"pestDiseaseName,omitempty"`
}

// CropSlot groups the entries logged for one crop (e.g. "primary_crop").
type CropSlot struct {
	Key      string     `json:"key"`
	CropName string     `json:"cropName,omitempty"`
	Entries  []LogEntry `json:"entries"`
}

// FarmerRecord is the farmer context a scan runs against.
type FarmerRecord struct {
	UID      string     `json:"uid"`
	District string     `json:"district"`
	SoilType string     `json:"soilType"`
	FCMToken string     `json:"fcmToken,omitempty"`
	Slots    []CropSlot `json:"slots"`
}

// OfficialReport is a district pest report filed by an extension officer.
type OfficialReport struct {
	ID         string  `json:"reportId" db:"id"`
	District   string  `json:"district" db:"district" validate:"required"`
	Crop       string  `json:"crop" db:"crop" validate:"required"`
	Pest       string  `json:"pest" db:"pest"`
	Symptoms   string  `json:"symptoms" db:"symptoms"`
	Confidence float64 `json:"confidence" db:"confidence" validate:"gte=0,lte=1"`
	ReportDate string  `json:"reportDate" db:"report_date"`
	CreatedAt  int64   `json:"timestamp" db:"created_at"`
}

// WeatherSnapshot is a decoded provider response body. Its shape depends on
// the provider, so readers must probe known key paths.
type WeatherSnapshot map[string]any

// WeatherAssessment is the additive risk contribution of a weather snapshot.
type WeatherAssessment struct {
	Delta   float64  `json:"delta"`
	Reasons []string `json:"reasons"`
}

// Assessment is the rule scorer's result for a single crop.
type Assessment struct {
	Score          float64  `json:"score"`
	Reasons        []string `json:"reasons"`
	TriggeredPests []string `json:"triggered"`
	SymptomCount   int      `json:"symptomCount"`

	// Irrigation and soil signals are also ML features.
	DaysSinceIrrigation int  `json:"daysSinceIrrigation"`
	HasIrrigation       bool `json:"-"`
	SoilStress          bool `json:"soilStress"`
}

// Alert is a single advisory produced by a scan.
type Alert struct {
	ID                 string     `json:"id,omitempty"`
	UID                string     `json:"uid,omitempty"`
	CropKey            string     `json:"cropKey,omitempty"`
	CropName           string     `json:"cropName"`
	Timestamp          int64      `json:"timestamp"`
	RiskScore          float64    `json:"riskScore"`
	Severity           Severity   `json:"severity"`
	ComplexityLevel    Complexity `json:"complexityLevel"`
	TriggerPest        string     `json:"triggerPest"`
	Reasons            []string   `json:"reasons"`
	Symptoms           []string   `json:"symptoms,omitempty"`
	PreventiveMeasures []string   `json:"preventiveMeasures"`
	CorrectiveMeasures []string   `json:"correctiveMeasures"`
	AlertType          AlertType  `json:"alertType"`
	SymptomCount       int        `json:"symptomCount"`
	OfficialReports    int        `json:"officialReports"`
	MLProbability      *float64   `json:"mlProbability"`
	WeatherDelta       float64    `json:"weatherDelta"`
}
