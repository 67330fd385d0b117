package risk

const (
	highSeverityFloor     = 0.70
	moderateSeverityFloor = 0.35
)

// ClassifySeverity maps a fused score onto a severity label.
func ClassifySeverity(score float64) Severity {
	switch {
	case score >= highSeverityFloor:
		return SeverityHigh
	case score >= moderateSeverityFloor:
		return SeverityModerate
	default:
		return SeverityLow
	}
}

// ClassifyComplexity grades how many independent signals stand behind a
// score. Rules are checked in order; anything unmatched is moderate.
func ClassifyComplexity(score float64, symptomCount, officialReports int) Complexity {
	switch {
	case score < 0.3 && symptomCount <= 1 && officialReports == 0:
		return ComplexitySimple
	case score >= 0.3 && score < 0.6 && (symptomCount > 1 || officialReports > 0):
		return ComplexityModerate
	case score >= 0.6 && score < 0.8 && officialReports > 0 && symptomCount > 1:
		return ComplexityComplex
	case score >= 0.8 && officialReports > 0 && symptomCount > 1:
		return ComplexityCritical
	default:
		return ComplexityModerate
	}
}
