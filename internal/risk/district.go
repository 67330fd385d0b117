package risk

import "fmt"

const outbreakRiskScore = 0.35

// historyRiskScores maps the district history levels. Anything else scores
// as HIGH.
var historyRiskScores = map[string]float64{
	"LOW":    0.3,
	"MEDIUM": 0.5,
	"HIGH":   0.7,
}

// OutbreakAlert warns a farmer that their crop is already affected in the
// district. It fires on the first report filed against the same crop.
func (e *Engine) OutbreakAlert(cropName string, reports []OfficialReport) (Alert, bool) {
	crop := normalize(cropName)
	for _, rep := range reports {
		if normalize(rep.Crop) != crop {
			continue
		}
		pest, ok := e.catalog.ResolvePest(rep.Pest)
		if !ok {
			pest = UnknownPest
		}
		preventive := e.catalog.DefaultPreventive()
		if adv, ok := e.catalog.Advisory(crop, pest); ok && len(adv.Preventive) > 0 {
			preventive = cloneStrings(adv.Preventive)
		}
		return Alert{
			CropName:           cropName,
			Timestamp:          e.now().UnixMilli(),
			RiskScore:          outbreakRiskScore,
			Severity:           SeverityModerate,
			ComplexityLevel:    ComplexitySimple,
			TriggerPest:        pest,
			Reasons:            []string{fmt.Sprintf("%s outbreak already reported in your district", pest)},
			PreventiveMeasures: preventive,
			CorrectiveMeasures: []string{},
			AlertType:          AlertDistrictOutbreak,
		}, true
	}
	return Alert{}, false
}

// DiseaseBreakdown emits one alert per disease on record for the crop in
// the district whose season includes the current month.
func (e *Engine) DiseaseBreakdown(district, cropName string) []Alert {
	now := e.now()
	month := now.Month().String()

	var alerts []Alert
	for _, d := range e.catalog.History(district, cropName) {
		if !inSeason(d.Season, month) {
			continue
		}
		level := d.RiskLevel
		score, ok := historyRiskScores[level]
		if !ok {
			level, score = "HIGH", historyRiskScores["HIGH"]
		}
		adv, _ := e.catalog.Advisory(cropName, d.Disease)
		alerts = append(alerts, Alert{
			CropName:        cropName,
			Timestamp:       now.UnixMilli(),
			RiskScore:       score,
			Severity:        ClassifySeverity(score),
			ComplexityLevel: ComplexitySimple,
			TriggerPest:     d.Disease,
			Reasons: []string{
				fmt.Sprintf("%s reported in %s during %s", titleCase(d.Disease), titleCase(normalize(district)), month),
				fmt.Sprintf("District risk level: %s", level),
			},
			Symptoms:           nonNil(adv.Symptoms),
			PreventiveMeasures: nonNil(adv.Preventive),
			CorrectiveMeasures: nonNil(adv.Corrective),
			AlertType:          AlertDiseaseBreakdown,
		})
	}
	return alerts
}

func inSeason(season []string, month string) bool {
	for _, m := range season {
		if normalize(m) == normalize(month) {
			return true
		}
	}
	return false
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return cloneStrings(list)
}
