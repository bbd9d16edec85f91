package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborpoint/dealflow/internal/models"
)

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

func baseProperty() *models.Property {
	return &models.Property{
		PropertyType:   "single_family",
		EstimatedValue: f64(200000),
		YearBuilt:      intp(1995),
		SquareFootage:  intp(1400),
	}
}

func TestValidateComps_MissingARVShortCircuits(t *testing.T) {
	p := baseProperty()
	p.EstimatedValue = nil
	p.YearBuilt = nil // would be a second issue if not short-circuited

	result := ValidateComps(p)
	assert.False(t, result.Valid)
	require.Len(t, result.Issues, 1)
	assert.Contains(t, result.Issues[0], "ARV")
}

func TestValidateComps_MissingFields(t *testing.T) {
	p := baseProperty()
	p.YearBuilt = nil
	p.SquareFootage = nil
	p.PropertyType = ""

	result := ValidateComps(p)
	assert.False(t, result.Valid)
	assert.Len(t, result.Issues, 3)
}

func TestValidateComps_AssessedValueRatio(t *testing.T) {
	tests := []struct {
		name      string
		arv       float64
		assessed  float64
		wantIssue bool
	}{
		{"implausibly high", 300000, 100000, true},  // ratio 3.0
		{"implausibly low", 40000, 100000, true},    // ratio 0.4
		{"plausible", 150000, 100000, false},        // ratio 1.5
		{"boundary high not flagged", 200000, 100000, false}, // ratio exactly 2.0
		{"boundary low not flagged", 50000, 100000, false},   // ratio exactly 0.5
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseProperty()
			p.EstimatedValue = f64(tt.arv)
			p.TaxAssessedValue = f64(tt.assessed)

			result := ValidateComps(p)
			if tt.wantIssue {
				assert.False(t, result.Valid)
				assert.NotEmpty(t, result.Issues)
			} else {
				assert.True(t, result.Valid)
				assert.Empty(t, result.Issues)
			}
		})
	}
}

func TestAssessRehabTrap_AgeBoundaries(t *testing.T) {
	p := baseProperty()
	p.YearBuilt = intp(1949)
	result := AssessRehabTrap(p, 20000)

	var foundWiring, foundFoundation bool
	for _, alert := range result.Alerts {
		switch alert.Title {
		case "Pre-1970 wiring risk":
			foundWiring = true
			assert.Equal(t, SeverityWarning, alert.Severity)
		case "Pre-1950 foundation risk":
			foundFoundation = true
			assert.Equal(t, SeverityDanger, alert.Severity)
		}
	}
	assert.True(t, foundWiring, "1949 build triggers the wiring warning")
	assert.True(t, foundFoundation, "1949 build triggers the foundation alert")

	// Built exactly in 1950: wiring yes, foundation no.
	p.YearBuilt = intp(1950)
	result = AssessRehabTrap(p, 20000)
	for _, alert := range result.Alerts {
		assert.NotEqual(t, "Pre-1950 foundation risk", alert.Title)
	}
}

func TestAssessRehabTrap_FlipSpreadBoundary(t *testing.T) {
	p := baseProperty()
	p.EstimatedValue = f64(100000)

	// Spread of exactly $10,000 is infeasible.
	result := AssessRehabTrap(p, 90000)
	assert.True(t, result.FlipInfeasible)

	// Spread of $15,001 is fine.
	result = AssessRehabTrap(p, 84999)
	assert.False(t, result.FlipInfeasible)

	// Spread of exactly $15,000 clears the strict less-than check.
	result = AssessRehabTrap(p, 85000)
	assert.False(t, result.FlipInfeasible)
}

func TestAssessRehabTrap_LipstickOnAPig(t *testing.T) {
	p := baseProperty()
	p.YearBuilt = intp(1975)
	p.EstimatedValue = f64(300000)
	p.LastSalePrice = f64(150000) // ARV is 2x last sale

	result := AssessRehabTrap(p, 20000) // under 10% of ARV
	var found bool
	for _, alert := range result.Alerts {
		if alert.Title == "Lipstick on a pig" {
			found = true
			assert.Equal(t, SeverityWarning, alert.Severity)
		}
	}
	assert.True(t, found)

	// A realistic repair budget clears the flag.
	result = AssessRehabTrap(p, 40000)
	for _, alert := range result.Alerts {
		assert.NotEqual(t, "Lipstick on a pig", alert.Title)
	}
}

func TestAssessRehabTrap_ProfitEstimate(t *testing.T) {
	p := baseProperty()
	p.EstimatedValue = f64(200000)

	result := AssessRehabTrap(p, 50000)
	require.NotNil(t, result.EstimatedProfit)
	// MAO = 200000*0.70 - 50000 = 90000; profit = 90000 * 0.15
	assert.InDelta(t, 13500, *result.EstimatedProfit, 0.01)

	// Negative MAO yields no profit estimate.
	p.EstimatedValue = f64(100000)
	result = AssessRehabTrap(p, 80000)
	assert.Nil(t, result.EstimatedProfit)
}

func TestCheckMultifamilyLiquidity(t *testing.T) {
	p := baseProperty()
	p.UnitCount = intp(6)
	p.EstimatedValue = f64(1200000)
	require.NotNil(t, CheckMultifamilyLiquidity(p))

	// Boundary: 4 units is residential-scale, not flagged.
	p.UnitCount = intp(4)
	assert.Nil(t, CheckMultifamilyLiquidity(p))

	// Boundary: sub-$900k is not flagged even at scale.
	p.UnitCount = intp(8)
	p.EstimatedValue = f64(899999)
	assert.Nil(t, CheckMultifamilyLiquidity(p))

	// Exactly at both floors is flagged.
	p.UnitCount = intp(5)
	p.EstimatedValue = f64(900000)
	assert.NotNil(t, CheckMultifamilyLiquidity(p))

	p.UnitCount = nil
	assert.Nil(t, CheckMultifamilyLiquidity(p))
}

func TestRecommendStrategy(t *testing.T) {
	tests := []struct {
		name     string
		purchase float64
		resale   float64
		want     string
	}{
		{"no spread holds", 100000, 100000, StrategyHold},
		{"negative spread holds", 110000, 100000, StrategyHold},
		{"modest fee assigns", 100000, 110000, StrategyAssignment},
		{"fee of exactly 15000 assigns", 100000, 115000, StrategyAssignment},
		{"large fee double closes", 100000, 115001, StrategyDoubleClose},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := RecommendStrategy(tt.purchase, tt.resale)
			assert.Equal(t, tt.want, rec.Strategy)
			assert.Equal(t, tt.resale-tt.purchase, rec.AssignmentFee)
		})
	}
}

func TestFlagCreativeFinanceRisks(t *testing.T) {
	p := baseProperty()
	assert.Empty(t, FlagCreativeFinanceRisks(p))

	p.DebtOwed = f64(150000)
	p.InterestRate = f64(3.25)
	alerts := FlagCreativeFinanceRisks(p)
	require.Len(t, alerts, 1)
	assert.Equal(t, SeverityInfo, alerts[0].Severity)
	assert.Equal(t, "Wrap mortgage exposure", alerts[0].Title)

	p.EquityPercent = f64(65)
	alerts = FlagCreativeFinanceRisks(p)
	assert.Len(t, alerts, 2)

	// Equity exactly at 50 is not flagged.
	p.EquityPercent = f64(50)
	alerts = FlagCreativeFinanceRisks(p)
	assert.Len(t, alerts, 1)
}

func TestCheckPropertyTax(t *testing.T) {
	p := baseProperty()
	p.AnnualPropertyTax = nil
	alert := CheckPropertyTax(p)
	require.NotNil(t, alert)
	assert.Equal(t, SeverityWarning, alert.Severity)

	// Under 0.5% of ARV hints at reassessment.
	p.EstimatedValue = f64(200000)
	p.AnnualPropertyTax = f64(800)
	alert = CheckPropertyTax(p)
	require.NotNil(t, alert)
	assert.Equal(t, SeverityInfo, alert.Severity)

	// Normal tax data is quiet.
	p.AnnualPropertyTax = f64(2400)
	assert.Nil(t, CheckPropertyTax(p))
}

func TestAnalyzeDeal_UnionsAllAlerts(t *testing.T) {
	p := &models.Property{
		PropertyType:      "multi_family",
		EstimatedValue:    f64(1000000),
		LastSalePrice:     f64(400000),
		TaxAssessedValue:  f64(450000),
		AnnualPropertyTax: f64(2000), // under 0.5%
		EquityPercent:     f64(70),
		DebtOwed:          f64(250000),
		InterestRate:      f64(4.0),
		YearBuilt:         intp(1948),
		SquareFootage:     intp(6200),
		UnitCount:         intp(6),
	}

	purchase := 850000.0
	result := AnalyzeDeal(p, 60000, &purchase)

	require.NotNil(t, result.CompValidation)
	require.NotNil(t, result.Rehab)
	require.NotNil(t, result.MultifamilyLiquidity)
	require.NotNil(t, result.PropertyTax)
	require.NotNil(t, result.Strategy)
	assert.Equal(t, StrategyDoubleClose, result.Strategy.Strategy)

	// Union: comp ratio issue + wiring + foundation + lipstick + liquidity
	// + two creative flags + tax note.
	categories := map[string]int{}
	for _, alert := range result.Alerts {
		categories[alert.Category]++
	}
	assert.Equal(t, 1, categories[CategoryComps], "ARV 2.2x assessed value")
	assert.Equal(t, 3, categories[CategoryRehab])
	assert.Equal(t, 1, categories[CategoryLiquidity])
	assert.Equal(t, 2, categories[CategoryCreativeFinance])
	assert.Equal(t, 1, categories[CategoryPropertyTax])
}

func TestAnalyzeDeal_NoPurchasePrice(t *testing.T) {
	result := AnalyzeDeal(baseProperty(), 10000, nil)
	assert.Nil(t, result.Strategy)
}
