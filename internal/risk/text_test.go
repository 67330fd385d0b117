package risk

import "testing"

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"sigatoka_leaf_spot", "Sigatoka Leaf Spot"},
		{"uttara kannada", "Uttara Kannada"},
		{"  early_blight ", "Early Blight"},
		{"éclair rot", "Éclair Rot"},
		{"ಧಾರವಾಡ district", "ಧಾರವಾಡ District"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := titleCase(tt.in); got != tt.want {
			t.Errorf("titleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2026-10-14", "2026-10-14T09:00:00", "2026-10-14T09:00:00Z", "1791968400"} {
		got, ok := ParseDate(in)
		if !ok || got.Year() != 2026 || got.Month() != 10 || got.Day() != 14 {
			t.Errorf("ParseDate(%q) = %v, %v", in, got, ok)
		}
	}
	if _, ok := ParseDate("14/10/2026"); ok {
		t.Error("expected unparseable date")
	}
}
