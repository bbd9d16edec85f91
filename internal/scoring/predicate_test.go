package scoring

import (
	"testing"

	"github.com/harborpoint/dealflow/internal/models"
)

func TestEvaluatePredicate_Numeric(t *testing.T) {
	tests := []struct {
		name       string
		fieldValue interface{}
		op         models.Operator
		comparison interface{}
		want       bool
	}{
		{"greater than true", 100.0, models.OpGreaterThan, 50.0, true},
		{"greater than false", 40.0, models.OpGreaterThan, 50.0, false},
		{"greater than tie is false", 50.0, models.OpGreaterThan, 50.0, false},
		{"greater than int operands", 70, models.OpGreaterThan, 60, true},
		{"greater than non-numeric field", "100", models.OpGreaterThan, 50.0, false},
		{"greater than nil field", nil, models.OpGreaterThan, 50.0, false},
		{"less than true", 3.5, models.OpLessThan, 7.0, true},
		{"less than tie is false", 7.0, models.OpLessThan, 7.0, false},
		{"less than non-numeric comparison", 3.5, models.OpLessThan, "7", false},
		{"in range inclusive low", 10.0, models.OpInRange, map[string]interface{}{"min": 10.0, "max": 20.0}, true},
		{"in range inclusive high", 20.0, models.OpInRange, map[string]interface{}{"min": 10.0, "max": 20.0}, true},
		{"in range outside", 21.0, models.OpInRange, map[string]interface{}{"min": 10.0, "max": 20.0}, false},
		{"in range malformed comparison", 15.0, models.OpInRange, "10-20", false},
		{"in range missing bound", 15.0, models.OpInRange, map[string]interface{}{"min": 10.0}, false},
		{"in range non-numeric field", "15", models.OpInRange, map[string]interface{}{"min": 10.0, "max": 20.0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluatePredicate(tt.fieldValue, tt.op, tt.comparison); got != tt.want {
				t.Errorf("EvaluatePredicate(%v, %s, %v) = %v, want %v",
					tt.fieldValue, tt.op, tt.comparison, got, tt.want)
			}
		})
	}
}

func TestEvaluatePredicate_Equals(t *testing.T) {
	tests := []struct {
		name       string
		fieldValue interface{}
		comparison interface{}
		want       bool
	}{
		{"equal strings", "single_family", "single_family", true},
		{"unequal strings", "condo", "single_family", false},
		{"equal numbers across widths", 70, 70.0, true},
		{"unequal numbers", 70.0, 71.0, false},
		{"equal booleans", true, true, true},
		{"number never equals string", 70.0, "70", false},
		{"bool never equals number", true, 1.0, false},
		{"nil field", nil, "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluatePredicate(tt.fieldValue, models.OpEquals, tt.comparison); got != tt.want {
				t.Errorf("EQUALS(%v, %v) = %v, want %v", tt.fieldValue, tt.comparison, got, tt.want)
			}
		})
	}
}

func TestEvaluatePredicate_InSet(t *testing.T) {
	set := []interface{}{"condo", "townhouse", 4.0}

	if !EvaluatePredicate("condo", models.OpInSet, set) {
		t.Error("expected string membership to match")
	}
	if !EvaluatePredicate(4, models.OpInSet, set) {
		t.Error("expected numeric membership to match across widths")
	}
	if EvaluatePredicate("duplex", models.OpInSet, set) {
		t.Error("expected non-member to miss")
	}
	// Membership is only valid when the comparison value is an array.
	if EvaluatePredicate("condo", models.OpInSet, "condo") {
		t.Error("expected non-array comparison value to yield false")
	}
}

func TestEvaluatePredicate_Flags(t *testing.T) {
	signals := map[string]interface{}{
		"foreclosure": true,
		"probate":     false,
		"liens":       2.0,
		"vacant":      "",
	}
	tags := []interface{}{"foreclosure", "tax_delinquent"}

	tests := []struct {
		name       string
		fieldValue interface{}
		op         models.Operator
		flag       string
		want       bool
	}{
		{"map key truthy", signals, models.OpHasFlag, "foreclosure", true},
		{"map key falsy bool", signals, models.OpHasFlag, "probate", false},
		{"map key truthy number", signals, models.OpHasFlag, "liens", true},
		{"map key empty string is falsy", signals, models.OpHasFlag, "vacant", false},
		{"map key absent", signals, models.OpHasFlag, "divorce", false},
		{"array contains", tags, models.OpHasFlag, "tax_delinquent", true},
		{"array missing", tags, models.OpHasFlag, "probate", false},
		{"unsupported shape", 42.0, models.OpHasFlag, "foreclosure", false},
		{"nil field", nil, models.OpHasFlag, "foreclosure", false},

		{"lacks absent map key", signals, models.OpLacksFlag, "divorce", true},
		{"lacks falsy map key", signals, models.OpLacksFlag, "probate", true},
		{"lacks present truthy key", signals, models.OpLacksFlag, "foreclosure", false},
		{"lacks missing array value", tags, models.OpLacksFlag, "probate", true},
		{"lacks present array value", tags, models.OpLacksFlag, "foreclosure", false},
		// Malformed data must never silently pass a negative check.
		{"lacks on unsupported shape", 42.0, models.OpLacksFlag, "foreclosure", false},
		{"lacks on nil field", nil, models.OpLacksFlag, "foreclosure", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluatePredicate(tt.fieldValue, tt.op, tt.flag); got != tt.want {
				t.Errorf("%s(%v, %q) = %v, want %v", tt.op, tt.fieldValue, tt.flag, got, tt.want)
			}
		})
	}
}

func TestEvaluatePredicate_UnknownOperator(t *testing.T) {
	if EvaluatePredicate(1.0, models.Operator("BETWEEN"), 1.0) {
		t.Error("expected unknown operator to yield false")
	}
}

func TestLookup(t *testing.T) {
	data := map[string]interface{}{
		"estimatedValue": 250000.0,
		"rawData": map[string]interface{}{
			"mortgageRate": 3.25,
			"listing": map[string]interface{}{
				"source": "mls",
			},
		},
	}

	tests := []struct {
		path      string
		want      interface{}
		wantFound bool
	}{
		{"estimatedValue", 250000.0, true},
		{"rawData.mortgageRate", 3.25, true},
		{"rawData.listing.source", "mls", true},
		{"rawData.missing", nil, false},
		{"estimatedValue.nested", nil, false},
		{"missing", nil, false},
		{"", nil, false},
	}

	for _, tt := range tests {
		got, found := Lookup(data, tt.path)
		if found != tt.wantFound {
			t.Errorf("Lookup(%q) found = %v, want %v", tt.path, found, tt.wantFound)
			continue
		}
		if found && got != tt.want {
			t.Errorf("Lookup(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}

	if _, found := Lookup(nil, "estimatedValue"); found {
		t.Error("expected lookup on nil data to report absent")
	}
}
