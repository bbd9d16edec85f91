// Package analysis derives human-readable risk findings and a transaction
// strategy from a property snapshot. Every check is a pure function over
// the snapshot plus optional repair-cost and purchase-price inputs; the
// aggregate simply unions their alerts and no check suppresses another.
package analysis

import (
	"fmt"

	"github.com/harborpoint/dealflow/internal/models"
	"github.com/harborpoint/dealflow/internal/scoring"
)

// Severity grades an alert for display.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Alert categories.
const (
	CategoryComps           = "comps"
	CategoryRehab           = "rehab"
	CategoryLiquidity       = "liquidity"
	CategoryCreativeFinance = "creative_finance"
	CategoryPropertyTax     = "property_tax"
)

// Alert is one typed finding.
type Alert struct {
	Category string   `json:"category"`
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Detail   string   `json:"detail"`
}

// Dollar thresholds the checks pivot on.
const (
	minFlipSpread          = 15000
	largeAssignmentFee     = 15000
	multifamilyValueFloor  = 900000
	multifamilyUnitFloor   = 5
	cosmeticBudgetFraction = 0.10
	reassessmentTaxRate    = 0.005
)

// Transaction strategies.
const (
	StrategyHold        = "hold"
	StrategyAssignment  = "assignment"
	StrategyDoubleClose = "double_close"
)

// CompValidation reports whether the valuation inputs support a comp-based
// analysis at all, plus the individual issues found.
type CompValidation struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

// RehabAssessment bundles the age- and budget-driven rehab findings.
type RehabAssessment struct {
	Alerts          []Alert  `json:"alerts"`
	FlipInfeasible  bool     `json:"flip_infeasible"`
	EstimatedProfit *float64 `json:"estimated_profit,omitempty"`
}

// StrategyRecommendation suggests how to transact the deal.
type StrategyRecommendation struct {
	Strategy      string  `json:"strategy"`
	AssignmentFee float64 `json:"assignment_fee"`
	Reason        string  `json:"reason"`
}

// DealAnalysis is the aggregate of all six checks.
type DealAnalysis struct {
	Alerts               []Alert                 `json:"alerts"`
	CompValidation       *CompValidation         `json:"comp_validation"`
	Rehab                *RehabAssessment        `json:"rehab"`
	MultifamilyLiquidity *Alert                  `json:"multifamily_liquidity,omitempty"`
	Strategy             *StrategyRecommendation `json:"strategy,omitempty"`
	PropertyTax          *Alert                  `json:"property_tax,omitempty"`
}

// AnalyzeDeal runs every check and unions the alerts. purchasePrice is
// optional; without it no strategy is recommended.
func AnalyzeDeal(p *models.Property, estimatedRepairCosts float64, purchasePrice *float64) *DealAnalysis {
	result := &DealAnalysis{
		Alerts:               []Alert{},
		CompValidation:       ValidateComps(p),
		Rehab:                AssessRehabTrap(p, estimatedRepairCosts),
		MultifamilyLiquidity: CheckMultifamilyLiquidity(p),
		PropertyTax:          CheckPropertyTax(p),
	}

	for _, issue := range result.CompValidation.Issues {
		result.Alerts = append(result.Alerts, Alert{
			Category: CategoryComps,
			Severity: SeverityWarning,
			Title:    "Comp validation issue",
			Detail:   issue,
		})
	}

	result.Alerts = append(result.Alerts, result.Rehab.Alerts...)

	if result.MultifamilyLiquidity != nil {
		result.Alerts = append(result.Alerts, *result.MultifamilyLiquidity)
	}

	result.Alerts = append(result.Alerts, FlagCreativeFinanceRisks(p)...)

	if result.PropertyTax != nil {
		result.Alerts = append(result.Alerts, *result.PropertyTax)
	}

	if purchasePrice != nil && p.EstimatedValue != nil {
		result.Strategy = RecommendStrategy(*purchasePrice, *p.EstimatedValue)
	}

	return result
}

// ValidateComps checks the valuation inputs. A missing ARV short-circuits
// the remaining checks since nothing downstream is meaningful without it.
func ValidateComps(p *models.Property) *CompValidation {
	result := &CompValidation{Valid: true, Issues: []string{}}

	if p.EstimatedValue == nil {
		result.Valid = false
		result.Issues = append(result.Issues, "no estimated value (ARV) on record; comparable validation skipped")
		return result
	}
	arv := *p.EstimatedValue

	if p.YearBuilt == nil {
		result.Valid = false
		result.Issues = append(result.Issues, "year built is missing; comps cannot be age-matched")
	}
	if p.SquareFootage == nil {
		result.Valid = false
		result.Issues = append(result.Issues, "square footage is missing; comps cannot be size-matched")
	}
	if p.PropertyType == "" {
		result.Valid = false
		result.Issues = append(result.Issues, "property type is missing; comps cannot be type-matched")
	}

	if p.TaxAssessedValue != nil && *p.TaxAssessedValue > 0 {
		ratio := arv / *p.TaxAssessedValue
		if ratio > 2.0 {
			result.Valid = false
			result.Issues = append(result.Issues,
				fmt.Sprintf("ARV is %.1fx the tax assessed value; estimate looks implausibly high", ratio))
		} else if ratio < 0.5 {
			result.Valid = false
			result.Issues = append(result.Issues,
				fmt.Sprintf("ARV is only %.1fx the tax assessed value; estimate looks implausibly low", ratio))
		}
	}

	return result
}

// AssessRehabTrap screens for the renovation traps that sink flips:
// era-specific system risks, cosmetic budgets hiding structural work, and
// spreads too thin to transact on.
func AssessRehabTrap(p *models.Property, repairCosts float64) *RehabAssessment {
	result := &RehabAssessment{Alerts: []Alert{}}

	if p.YearBuilt != nil {
		yearBuilt := *p.YearBuilt
		if yearBuilt < 1970 {
			result.Alerts = append(result.Alerts, Alert{
				Category: CategoryRehab,
				Severity: SeverityWarning,
				Title:    "Pre-1970 wiring risk",
				Detail:   fmt.Sprintf("built in %d; budget for electrical panel and knob-and-tube inspection", yearBuilt),
			})
		}
		if yearBuilt < 1950 {
			result.Alerts = append(result.Alerts, Alert{
				Category: CategoryRehab,
				Severity: SeverityDanger,
				Title:    "Pre-1950 foundation risk",
				Detail:   fmt.Sprintf("built in %d; foundation and sewer lateral need inspection before offer", yearBuilt),
			})
		}
	}

	if p.EstimatedValue != nil {
		arv := *p.EstimatedValue

		if p.YearBuilt != nil && *p.YearBuilt < 1980 && p.LastSalePrice != nil &&
			repairCosts < cosmeticBudgetFraction*arv && arv > 1.5**p.LastSalePrice {
			result.Alerts = append(result.Alerts, Alert{
				Category: CategoryRehab,
				Severity: SeverityWarning,
				Title:    "Lipstick on a pig",
				Detail: fmt.Sprintf("cosmetic repair budget (%.0f) implies a jump from last sale %.0f to ARV %.0f on an older home; re-verify scope",
					repairCosts, *p.LastSalePrice, arv),
			})
		}

		if arv > 0 && repairCosts > 0 && arv-repairCosts < minFlipSpread {
			result.FlipInfeasible = true
			result.Alerts = append(result.Alerts, Alert{
				Category: CategoryRehab,
				Severity: SeverityDanger,
				Title:    "Too expensive to flip",
				Detail: fmt.Sprintf("spread between ARV %.0f and repairs %.0f is under $%d; no room to transact",
					arv, repairCosts, minFlipSpread),
			})
		}

		if mao := scoring.CalculateMAO(arv, repairCosts); mao.MAO > 0 {
			profit := mao.MAO * 0.15
			result.EstimatedProfit = &profit
		}
	}

	return result
}

// CheckMultifamilyLiquidity flags the thin buyer pool for larger
// multifamily deals. Exactly four units or a value under the floor is not
// flagged.
func CheckMultifamilyLiquidity(p *models.Property) *Alert {
	if p.UnitCount == nil || p.EstimatedValue == nil {
		return nil
	}
	if *p.UnitCount < multifamilyUnitFloor || *p.EstimatedValue < multifamilyValueFloor {
		return nil
	}
	return &Alert{
		Category: CategoryLiquidity,
		Severity: SeverityWarning,
		Title:    "Thin multifamily buyer pool",
		Detail: fmt.Sprintf("%d units at an estimated %.0f; commercial-scale deals at this price resell slowly",
			*p.UnitCount, *p.EstimatedValue),
	}
}

// RecommendStrategy picks how to transact based on the spread between the
// contract price and the expected resale price. Large assignment fees
// deter downstream buyers, so big spreads double-close instead.
func RecommendStrategy(purchasePrice, resalePrice float64) *StrategyRecommendation {
	fee := resalePrice - purchasePrice

	switch {
	case fee <= 0:
		return &StrategyRecommendation{
			Strategy:      StrategyHold,
			AssignmentFee: fee,
			Reason:        "no spread between purchase and resale price; hold or renegotiate",
		}
	case fee > largeAssignmentFee:
		return &StrategyRecommendation{
			Strategy:      StrategyDoubleClose,
			AssignmentFee: fee,
			Reason:        fmt.Sprintf("assignment fee of %.0f would be visible to the end buyer; double close instead", fee),
		}
	default:
		return &StrategyRecommendation{
			Strategy:      StrategyAssignment,
			AssignmentFee: fee,
			Reason:        "spread is modest enough to assign the contract directly",
		}
	}
}

// FlagCreativeFinanceRisks raises informational notes on deals where a
// creative structure carries known legal exposure.
func FlagCreativeFinanceRisks(p *models.Property) []Alert {
	alerts := []Alert{}

	if p.DebtOwed != nil && *p.DebtOwed > 0 && p.InterestRate != nil {
		alerts = append(alerts, Alert{
			Category: CategoryCreativeFinance,
			Severity: SeverityInfo,
			Title:    "Wrap mortgage exposure",
			Detail: fmt.Sprintf("existing debt of %.0f at %.2f%%; a wrap leaves the underlying due-on-sale clause live",
				*p.DebtOwed, *p.InterestRate),
		})
	}

	if p.EquityPercent != nil && *p.EquityPercent > 50 {
		alerts = append(alerts, Alert{
			Category: CategoryCreativeFinance,
			Severity: SeverityInfo,
			Title:    "Contract-for-deed caution",
			Detail: fmt.Sprintf("seller holds %.0f%% equity; contract-for-deed terms need careful default provisions",
				*p.EquityPercent),
		})
	}

	return alerts
}

// CheckPropertyTax flags missing tax data and suspiciously low bills that
// hint at a pending reassessment. Normal-looking tax data returns nil.
func CheckPropertyTax(p *models.Property) *Alert {
	if p.AnnualPropertyTax == nil {
		return &Alert{
			Category: CategoryPropertyTax,
			Severity: SeverityWarning,
			Title:    "No property tax data",
			Detail:   "annual property tax is missing; holding costs cannot be estimated",
		}
	}

	if p.EstimatedValue != nil && *p.EstimatedValue > 0 &&
		*p.AnnualPropertyTax < reassessmentTaxRate**p.EstimatedValue {
		return &Alert{
			Category: CategoryPropertyTax,
			Severity: SeverityInfo,
			Title:    "Possible reassessment",
			Detail: fmt.Sprintf("annual tax %.0f is under 0.5%% of the estimated value %.0f; expect a step up after sale",
				*p.AnnualPropertyTax, *p.EstimatedValue),
		}
	}

	return nil
}
