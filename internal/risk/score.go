package risk

import (
	"fmt"
	"math"
	"sort"
)

const (
	symptomWeight    = 0.25
	reportWeight     = 0.45
	irrigationWeight = 0.05
	soilWeight       = 0.05

	irrigationGapDays = 10
	lowNitrogen       = 10.0
	lowPotassium      = 5.0

	// missingNutrient stands in for an absent soil-test value so that it
	// never trips the low-nutrient rule.
	missingNutrient = 999.0
)

var emptySymptoms = map[string]struct{}{"": {}, "na": {}, "no": {}, "none": {}}

// ComputeRuleScore scores one crop from the farmer's log entries and the
// district's official reports. Entries are read in ascending key order, so
// "the last irrigation date" is the one on the greatest entry key.
func (e *Engine) ComputeRuleScore(cropName string, entries []LogEntry, reports []OfficialReport) Assessment {
	res := Assessment{
		Reasons:        []string{},
		TriggeredPests: []string{},
	}
	crop := normalize(cropName)
	ordered := sortedEntries(entries)

	var score float64
	for _, entry := range ordered {
		if _, empty := emptySymptoms[normalize(entry.Symptoms)]; empty {
			continue
		}
		res.SymptomCount++
		score += symptomWeight
		res.Reasons = append(res.Reasons, fmt.Sprintf("Farmer-reported symptom: %s", entry.Symptoms))
	}

	for _, rep := range reports {
		pest, ok := e.catalog.ResolvePest(rep.Pest)
		if !ok {
			pest = normalize(rep.Pest)
		}
		if normalize(rep.Crop) != crop && !e.catalog.HasPest(crop, pest) {
			continue
		}
		score += reportWeight * clamp01(rep.Confidence)
		res.Reasons = append(res.Reasons, fmt.Sprintf("Official report: %s on %s", rep.Pest, rep.Crop))
		res.TriggeredPests = append(res.TriggeredPests, pest)
	}

	if days, ok := e.daysSinceIrrigation(ordered); ok {
		res.HasIrrigation = true
		res.DaysSinceIrrigation = days
		if days >= irrigationGapDays {
			score += irrigationWeight
			res.Reasons = append(res.Reasons, fmt.Sprintf("Last irrigation %d days ago", days))
		}
	}

	// Soil stress counts once however many entries show it.
	if soilStressed(ordered) {
		res.SoilStress = true
		score += soilWeight
		res.Reasons = append(res.Reasons, "Soil test shows low nutrients")
	}

	res.Score = round3(math.Min(score, 1.0))
	return res
}

// daysSinceIrrigation reads the last parseable irrigation date in entry
// order and returns whole days elapsed.
func (e *Engine) daysSinceIrrigation(ordered []LogEntry) (int, bool) {
	var (
		last  LogEntry
		found bool
	)
	for _, entry := range ordered {
		if _, ok := ParseDate(entry.LastIrrigationDate); ok {
			last, found = entry, true
		}
	}
	if !found {
		return 0, false
	}
	when, _ := ParseDate(last.LastIrrigationDate)
	days := int(math.Floor(e.now().Sub(when).Hours() / 24))
	return days, true
}

func soilStressed(entries []LogEntry) bool {
	stressed := false
	for _, entry := range entries {
		if len(entry.SoilTest) == 0 {
			continue
		}
		if nutrient(entry.SoilTest, "N") < lowNitrogen || nutrient(entry.SoilTest, "K") < lowPotassium {
			stressed = true
		}
	}
	return stressed
}

func nutrient(test map[string]float64, key string) float64 {
	if v, ok := test[key]; ok {
		return v
	}
	return missingNutrient
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func sortedEntries(entries []LogEntry) []LogEntry {
	out := make([]LogEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
