package risk

import (
	"testing"
)

func TestComputeRuleScoreSingleSymptom(t *testing.T) {
	e := testEngine()
	entries := []LogEntry{{Key: "l1", CropName: "tomato", Symptoms: "yellowing leaves"}}

	got := e.ComputeRuleScore("tomato", entries, nil)
	if got.Score != 0.25 {
		t.Fatalf("score: got %v, want 0.25", got.Score)
	}
	if got.SymptomCount != 1 {
		t.Errorf("symptom count: got %d, want 1", got.SymptomCount)
	}
	if sev := ClassifySeverity(got.Score); sev != SeverityLow {
		t.Errorf("severity: got %q, want low", sev)
	}
	if cx := ClassifyComplexity(got.Score, got.SymptomCount, 0); cx != ComplexitySimple {
		t.Errorf("complexity: got %q, want simple", cx)
	}
	if len(got.Reasons) != 1 || got.Reasons[0] != "Farmer-reported symptom: yellowing leaves" {
		t.Errorf("reasons: got %v", got.Reasons)
	}
}

func TestComputeRuleScoreOfficialReport(t *testing.T) {
	e := testEngine()
	reports := []OfficialReport{{District: "dharwad", Crop: "Tomato", Pest: "Fruit borer", Confidence: 1.0}}

	got := e.ComputeRuleScore("tomato", nil, reports)
	if got.Score != 0.45 {
		t.Fatalf("score: got %v, want 0.45", got.Score)
	}
	if sev := ClassifySeverity(got.Score); sev != SeverityModerate {
		t.Errorf("severity: got %q, want moderate", sev)
	}
	if len(got.TriggeredPests) != 1 || got.TriggeredPests[0] != "fruit borer" {
		t.Errorf("triggered: got %v", got.TriggeredPests)
	}
	if got.Reasons[0] != "Official report: Fruit borer on Tomato" {
		t.Errorf("reason: got %q", got.Reasons[0])
	}
}

func TestComputeRuleScoreReportMatching(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name    string
		report  OfficialReport
		want    float64
		trigger string
	}{
		{"other crop, known pest of target", OfficialReport{Crop: "onion", Pest: "Thrips attack", Confidence: 0.5}, 0.225, "thrips"},
		{"other crop, unrelated pest", OfficialReport{Crop: "onion", Pest: "purple blotch", Confidence: 1}, 0, ""},
		{"same crop, unknown pest text", OfficialReport{Crop: " CHILLI ", Pest: "Leaf Spot", Confidence: 0.8}, 0.36, "leaf spot"},
		{"confidence above one is capped", OfficialReport{Crop: "chilli", Pest: "kakki", Confidence: 3}, 0.45, "thrips"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ComputeRuleScore("chilli", nil, []OfficialReport{tt.report})
			if got.Score != tt.want {
				t.Fatalf("score: got %v, want %v", got.Score, tt.want)
			}
			if tt.trigger == "" {
				if len(got.TriggeredPests) != 0 {
					t.Fatalf("expected no triggered pests, got %v", got.TriggeredPests)
				}
				return
			}
			if len(got.TriggeredPests) != 1 || got.TriggeredPests[0] != tt.trigger {
				t.Fatalf("triggered: got %v, want [%s]", got.TriggeredPests, tt.trigger)
			}
		})
	}
}

func TestComputeRuleScoreIgnoresEmptySymptoms(t *testing.T) {
	e := testEngine()
	entries := []LogEntry{
		{Key: "a", Symptoms: "None"},
		{Key: "b", Symptoms: " na "},
		{Key: "c", Symptoms: "NO"},
		{Key: "d"},
	}

	got := e.ComputeRuleScore("tomato", entries, nil)
	if got.Score != 0 || got.SymptomCount != 0 {
		t.Fatalf("expected zero score, got %+v", got)
	}
}

func TestComputeRuleScoreIrrigationUsesLastEntryByKey(t *testing.T) {
	e := testEngine()

	// Keys are deliberately out of order: "2024" sorts after "2023".
	entries := []LogEntry{
		{Key: "2024-06-02", LastIrrigationDate: daysAgo(3)},
		{Key: "2023-01-01", LastIrrigationDate: daysAgo(30)},
		{Key: "2025-01-01", LastIrrigationDate: "not a date"},
	}

	got := e.ComputeRuleScore("tomato", entries, nil)
	if !got.HasIrrigation || got.DaysSinceIrrigation != 3 {
		t.Fatalf("irrigation: got has=%v days=%d, want 3 days", got.HasIrrigation, got.DaysSinceIrrigation)
	}
	if got.Score != 0 {
		t.Fatalf("score: got %v, want 0", got.Score)
	}

	entries = append(entries, LogEntry{Key: "2024-07-01", LastIrrigationDate: daysAgo(10)})
	got = e.ComputeRuleScore("tomato", entries, nil)
	if got.Score != 0.05 {
		t.Fatalf("score with 10-day gap: got %v, want 0.05", got.Score)
	}
	if got.Reasons[0] != "Last irrigation 10 days ago" {
		t.Errorf("reason: got %q", got.Reasons[0])
	}
}

func TestComputeRuleScoreSoilStressFiresOnce(t *testing.T) {
	e := testEngine()
	entries := []LogEntry{
		{Key: "a", SoilTest: map[string]float64{"N": 4}},
		{Key: "b", SoilTest: map[string]float64{"K": 2}},
		{Key: "c", SoilTest: map[string]float64{"N": 40, "K": 30}},
	}

	got := e.ComputeRuleScore("tomato", entries, nil)
	if got.Score != 0.05 {
		t.Fatalf("score: got %v, want 0.05", got.Score)
	}
	if !got.SoilStress {
		t.Error("expected soil stress flag")
	}

	healthy := []LogEntry{{Key: "a", SoilTest: map[string]float64{"P": 1}}}
	if got := e.ComputeRuleScore("tomato", healthy, nil); got.SoilStress {
		t.Error("missing N and K must not count as low")
	}
}

func TestComputeRuleScoreClamped(t *testing.T) {
	e := testEngine()
	var entries []LogEntry
	for _, k := range []string{"a", "b", "c", "d", "e", "f"} {
		entries = append(entries, LogEntry{Key: k, Symptoms: "wilting"})
	}

	got := e.ComputeRuleScore("tomato", entries, nil)
	if got.Score != 1.0 {
		t.Fatalf("score: got %v, want 1.0", got.Score)
	}
	if got.SymptomCount != 6 {
		t.Errorf("symptom count: got %d, want 6", got.SymptomCount)
	}
}

func TestComputeRuleScoreMonotonic(t *testing.T) {
	e := testEngine()
	var (
		entries []LogEntry
		reports []OfficialReport
		prev    float64
	)

	for i := 0; i < 8; i++ {
		if i%2 == 0 {
			entries = append(entries, LogEntry{Key: string(rune('a' + i)), Symptoms: "spots"})
		} else {
			reports = append(reports, OfficialReport{Crop: "tomato", Pest: "early blight", Confidence: 0.3})
		}
		got := e.ComputeRuleScore("tomato", entries, reports).Score
		if got < prev {
			t.Fatalf("step %d: score decreased from %v to %v", i, prev, got)
		}
		if got < 0 || got > 1 {
			t.Fatalf("step %d: score %v out of range", i, got)
		}
		prev = got
	}
}
