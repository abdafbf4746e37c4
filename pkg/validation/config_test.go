package validation

import (
	"strings"
	"testing"
)

func TestValidateLinearReach(t *testing.T) {
	tests := []struct {
		name        string
		start       float64
		step        float64
		budget      int
		expectEmpty bool
	}{
		{"Fine step exceeds budget", 1000, 0.01, 1000, false},
		{"Coarse step fits budget", 1000, 5, 1000, true},
		{"Exactly reachable", 10, 0.01, 1000, true},
		{"Zero step ignored", 1000, 0, 1000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warning := ValidateLinearReach("linear", tt.start, tt.step, tt.budget)
			if tt.expectEmpty && warning != "" {
				t.Errorf("expected no warning, got %q", warning)
			}
			if !tt.expectEmpty && warning == "" {
				t.Error("expected a warning, got none")
			}
		})
	}
}

func TestValidateTargetCash(t *testing.T) {
	if w := ValidateTargetCash(1000, 9664); w != "" {
		t.Errorf("expected no warning, got %q", w)
	}
	if w := ValidateTargetCash(50000, 9664); !strings.Contains(w, "9664.00") {
		t.Errorf("expected warning mentioning the admissible bound, got %q", w)
	}
}

func TestValidateTaxRate(t *testing.T) {
	if w := ValidateTaxRate(0.0725); w != "" {
		t.Errorf("expected no warning, got %q", w)
	}
	if w := ValidateTaxRate(7.25); !strings.Contains(w, "0.0725") {
		t.Errorf("expected percentage hint, got %q", w)
	}
}

func TestConfigValidatorValidateAll(t *testing.T) {
	cv := ConfigValidator{
		Strategy:       "linear",
		TargetCash:     50000,
		TaxRate:        0.0725,
		AdmissibleHigh: 9664,
		Step:           0.01,
		MaxIterations:  1000,
	}

	warnings := cv.ValidateAll()
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(warnings), warnings)
	}

	cv = ConfigValidator{
		Strategy:       "bisection",
		TargetCash:     1000,
		TaxRate:        0.0725,
		AdmissibleHigh: 9664,
		UpperBound:     8764,
		MaxIterations:  1000,
	}
	if warnings := cv.ValidateAll(); len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}

	cv.UpperBound = 10000
	if warnings := cv.ValidateAll(); len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
}
