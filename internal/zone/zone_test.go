package zone

import "testing"

func TestAllowed(t *testing.T) {
	zones := map[string][]string{
		"SE": {"11-12", "20"},
		"DE": {"01-99"},
	}

	tests := []struct {
		name    string
		country string
		prefix  string
		want    bool
	}{
		{"prefix inside range", "SE", "11", true},
		{"prefix at range end", "SE", "12", true},
		{"exact match", "SE", "20", true},
		{"between range and exact", "SE", "15", false},
		{"outside all specs", "SE", "99", false},
		{"whole country range", "DE", "42", true},
		{"country not served", "NO", "01", false},
		{"unparseable prefix", "SE", "1A", false},
		{"empty prefix", "SE", "", false},
		{"leading zero prefix", "DE", "01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Allowed(tt.country, tt.prefix, zones); got != tt.want {
				t.Errorf("Allowed(%q, %q) = %v, want %v", tt.country, tt.prefix, got, tt.want)
			}
		})
	}
}

func TestAllowed_Directional(t *testing.T) {
	// Availability is not symmetric: a mode serving SE→DE need not serve
	// DE→SE. Membership is per-country, checked independently per end.
	zones := map[string][]string{
		"SE": {"10-19"},
		// DE deliberately absent.
	}

	if !Allowed("SE", "11", zones) {
		t.Error("SE 11 should be served")
	}
	if Allowed("DE", "11", zones) {
		t.Error("DE should not be served in this direction")
	}
}

func TestValidateSpec(t *testing.T) {
	valid := []string{"00", "11", "99", "11-12", "00-99"}
	for _, spec := range valid {
		if err := ValidateSpec(spec); err != nil {
			t.Errorf("ValidateSpec(%q): unexpected error %v", spec, err)
		}
	}

	invalid := []string{"", "1", "111", "1-12", "11-123", "11-", "-12", "ab", "11-ab", "12-11"}
	for _, spec := range invalid {
		if err := ValidateSpec(spec); err == nil {
			t.Errorf("ValidateSpec(%q): expected error", spec)
		}
	}
}
