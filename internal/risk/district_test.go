package risk

import (
	"reflect"
	"testing"
	"time"
)

func TestOutbreakAlert(t *testing.T) {
	e := testEngine()
	reports := []OfficialReport{
		{Crop: "onion", Pest: "thrips"},
		{Crop: "Chilli", Pest: "Thrips attack noticed"},
		{Crop: "chilli", Pest: "mosaic"},
	}

	got, ok := e.OutbreakAlert("chilli", reports)
	if !ok {
		t.Fatal("expected an outbreak alert")
	}
	if got.AlertType != AlertDistrictOutbreak || got.RiskScore != 0.35 ||
		got.Severity != SeverityModerate || got.ComplexityLevel != ComplexitySimple {
		t.Fatalf("unexpected alert shape: %+v", got)
	}
	if got.TriggerPest != "thrips" {
		t.Errorf("trigger: got %q, want thrips", got.TriggerPest)
	}
	if !reflect.DeepEqual(got.PreventiveMeasures, []string{"Use blue sticky traps (40 per acre)."}) {
		t.Errorf("preventive: got %v", got.PreventiveMeasures)
	}
	if len(got.CorrectiveMeasures) != 0 {
		t.Errorf("corrective should be empty, got %v", got.CorrectiveMeasures)
	}
	if got.Reasons[0] != "thrips outbreak already reported in your district" {
		t.Errorf("reason: got %q", got.Reasons[0])
	}
	if got.Timestamp != fixedNow.UnixMilli() {
		t.Errorf("timestamp: got %d", got.Timestamp)
	}
}

func TestOutbreakAlertUnknownPestUsesDefaults(t *testing.T) {
	e := testEngine()
	got, ok := e.OutbreakAlert("tomato", []OfficialReport{{Crop: "tomato", Pest: "leaf miner"}})
	if !ok {
		t.Fatal("expected an outbreak alert")
	}
	if got.TriggerPest != UnknownPest {
		t.Errorf("trigger: got %q, want unknown", got.TriggerPest)
	}
	if !reflect.DeepEqual(got.PreventiveMeasures, e.Catalog().DefaultPreventive()) {
		t.Errorf("preventive: got %v", got.PreventiveMeasures)
	}
}

func TestOutbreakAlertNoMatchingCrop(t *testing.T) {
	e := testEngine()
	if _, ok := e.OutbreakAlert("cotton", []OfficialReport{{Crop: "onion", Pest: "whitefly"}}); ok {
		t.Fatal("expected no outbreak alert")
	}
}

func TestDiseaseBreakdownCurrentSeason(t *testing.T) {
	e := testEngine()

	got := e.DiseaseBreakdown("dharwad", "Tomato")
	if len(got) != 1 {
		t.Fatalf("expected 1 alert in October, got %d: %+v", len(got), got)
	}
	a := got[0]
	if a.TriggerPest != "early_blight" || a.AlertType != AlertDiseaseBreakdown {
		t.Fatalf("unexpected alert: %+v", a)
	}
	if a.RiskScore != 0.5 || a.Severity != SeverityModerate {
		t.Errorf("score/severity: got %v/%q", a.RiskScore, a.Severity)
	}
	wantReasons := []string{"Early Blight reported in Dharwad during October", "District risk level: MEDIUM"}
	if !reflect.DeepEqual(a.Reasons, wantReasons) {
		t.Errorf("reasons: got %v", a.Reasons)
	}
	if !reflect.DeepEqual(a.Symptoms, []string{"Brown concentric rings on older leaves"}) {
		t.Errorf("symptoms: got %v", a.Symptoms)
	}
	if a.CropName != "Tomato" {
		t.Errorf("crop name: got %q", a.CropName)
	}
}

func TestDiseaseBreakdownUnknownLevelScoresHigh(t *testing.T) {
	e := NewEngine(NewCatalog(CatalogData{
		History: map[string]map[string][]DiseaseHistory{
			"udupi": {"paddy": {{Disease: "blast", Season: []string{"October"}, RiskLevel: "severe"}}},
		},
	}), WithClock(func() time.Time { return fixedNow }))

	got := e.DiseaseBreakdown("Udupi", "Paddy")
	if len(got) != 1 {
		t.Fatalf("expected 1 alert, got %+v", got)
	}
	if got[0].RiskScore != 0.7 || got[0].Severity != SeverityHigh {
		t.Errorf("score/severity: got %v/%q", got[0].RiskScore, got[0].Severity)
	}
	if got[0].Reasons[1] != "District risk level: HIGH" {
		t.Errorf("reasons: got %v", got[0].Reasons)
	}
}

func TestDiseaseBreakdownOutOfSeason(t *testing.T) {
	april := time.Date(2026, time.April, 2, 0, 0, 0, 0, time.UTC)
	e := NewEngine(testCatalog(), WithClock(func() time.Time { return april }))

	got := e.DiseaseBreakdown("dharwad", "tomato")
	if len(got) != 1 || got[0].TriggerPest != "fruit_borer" {
		t.Fatalf("expected only fruit_borer in April, got %+v", got)
	}
	if got[0].RiskScore != 0.7 || got[0].Severity != SeverityHigh {
		t.Errorf("score/severity: got %v/%q", got[0].RiskScore, got[0].Severity)
	}

	if got := e.DiseaseBreakdown("dharwad", "cotton"); len(got) != 0 {
		t.Fatalf("whitefly is out of season in April, got %+v", got)
	}
	if got := e.DiseaseBreakdown("udupi", "tomato"); len(got) != 0 {
		t.Fatalf("unknown district should yield nothing, got %+v", got)
	}
}
