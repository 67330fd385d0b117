package risk

import (
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Engine turns farmer logs, district reports and weather into advisory
// alerts. It holds no per-scan state and is safe for concurrent use.
type Engine struct {
	catalog   *Catalog
	predictor Predictor
	now       func() time.Time
	logger    *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithPredictor plugs in a model whose probability is fused with the rule
// score.
func WithPredictor(p Predictor) Option {
	return func(e *Engine) { e.predictor = p }
}

// WithClock overrides the time source used for irrigation gaps, seasons
// and alert timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the logger used for predictor failures.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an Engine over an immutable catalog.
func NewEngine(catalog *Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog: catalog,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the tables the engine reads.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// ScanInput is everything one scan needs; reports are expected to be
// already limited to the farmer's district and the lookback window.
type ScanInput struct {
	Farmer  FarmerRecord
	Reports []OfficialReport
	Weather WeatherSnapshot
}

// Scan produces the deduplicated alerts for every crop the farmer logs.
func (e *Engine) Scan(in ScanInput) ([]Alert, error) {
	if strings.TrimSpace(in.Farmer.District) == "" || strings.TrimSpace(in.Farmer.SoilType) == "" {
		return nil, ErrDistrictMissing
	}

	weather := AssessWeather(in.Weather)
	slots := make([]CropSlot, len(in.Farmer.Slots))
	copy(slots, in.Farmer.Slots)
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Key < slots[j].Key })

	var alerts []Alert
	for _, slot := range slots {
		cropName := SlotCropName(slot)
		if cropName == "" {
			continue
		}
		alerts = append(alerts, e.cropAlert(slot, cropName, in.Reports, weather))

		if outbreak, ok := e.OutbreakAlert(cropName, in.Reports); ok {
			alerts = append(alerts, outbreak)
		}
		alerts = append(alerts, e.DiseaseBreakdown(in.Farmer.District, cropName)...)

		for i := range alerts {
			if alerts[i].CropKey == "" {
				alerts[i].CropKey = slot.Key
			}
		}
	}

	for i := range alerts {
		alerts[i].UID = in.Farmer.UID
	}
	return DeduplicateByCrop(alerts), nil
}

func (e *Engine) cropAlert(slot CropSlot, cropName string, reports []OfficialReport, weather WeatherAssessment) Alert {
	rule := e.ComputeRuleScore(cropName, slot.Entries, reports)
	adjusted := math.Min(1.0, round3(rule.Score+weather.Delta))

	prob := e.predict(buildFeatures(rule, len(reports), weather))
	final := FuseScores(adjusted, prob)

	trigger := e.triggerPest(rule, slot.Entries)
	preventive, corrective := e.catalog.Measures(cropName, trigger)

	reasons := make([]string, 0, len(rule.Reasons)+len(weather.Reasons))
	reasons = append(reasons, rule.Reasons...)
	reasons = append(reasons, weather.Reasons...)

	return Alert{
		CropKey:            slot.Key,
		CropName:           cropName,
		Timestamp:          e.now().UnixMilli(),
		RiskScore:          final,
		Severity:           ClassifySeverity(final),
		ComplexityLevel:    ClassifyComplexity(final, rule.SymptomCount, len(reports)),
		TriggerPest:        trigger,
		Reasons:            reasons,
		PreventiveMeasures: preventive,
		CorrectiveMeasures: corrective,
		AlertType:          AlertPerCrop,
		SymptomCount:       rule.SymptomCount,
		OfficialReports:    len(reports),
		MLProbability:      prob,
		WeatherDelta:       weather.Delta,
	}
}

// triggerPest prefers the first officially reported pest, then the first
// farmer-named pest that resolves to a canonical key.
func (e *Engine) triggerPest(rule Assessment, entries []LogEntry) string {
	if len(rule.TriggeredPests) > 0 {
		return rule.TriggeredPests[0]
	}
	for _, entry := range sortedEntries(entries) {
		if pest, ok := e.catalog.ResolvePest(entry.PestDiseaseName); ok {
			return pest
		}
	}
	return UnknownPest
}

func (e *Engine) predict(f Features) *float64 {
	if e.predictor == nil {
		return nil
	}
	p, err := e.predictor.Predict(f)
	if err != nil {
		e.logger.Warn("risk model prediction failed", zap.Error(err))
		return nil
	}
	return &p
}

// SlotCropName returns the crop a slot tracks: the first entry, in key
// order, that names one, else the slot's own name.
func SlotCropName(slot CropSlot) string {
	for _, entry := range sortedEntries(slot.Entries) {
		if name := strings.TrimSpace(entry.CropName); name != "" {
			return name
		}
	}
	return strings.TrimSpace(slot.CropName)
}
