package risk

// DeduplicateByCrop keeps a single alert per crop name. The winner has the
// greatest (severity, risk score, timestamp); on a full tie the first seen
// alert stays. Crops keep the order in which they first appear and alerts
// without a crop name are dropped.
func DeduplicateByCrop(alerts []Alert) []Alert {
	index := make(map[string]int, len(alerts))
	out := make([]Alert, 0, len(alerts))

	for _, a := range alerts {
		if a.CropName == "" {
			continue
		}
		i, seen := index[a.CropName]
		if !seen {
			index[a.CropName] = len(out)
			out = append(out, a)
			continue
		}
		if outranks(a, out[i]) {
			out[i] = a
		}
	}
	return out
}

func outranks(a, b Alert) bool {
	if ra, rb := a.Severity.rank(), b.Severity.rank(); ra != rb {
		return ra > rb
	}
	if a.RiskScore != b.RiskScore {
		return a.RiskScore > b.RiskScore
	}
	return a.Timestamp > b.Timestamp
}
