package scoring

import (
	"github.com/google/uuid"

	"github.com/harborpoint/dealflow/internal/models"
)

// CreativeFinanceBonus is the fixed bonus each matching creative-finance
// rule contributes. Bonuses stack across rules, including rules that share
// a subtype.
const CreativeFinanceBonus = 20

// CreativeRuleOutcome records one creative-finance rule's evaluation.
type CreativeRuleOutcome struct {
	RuleID        uuid.UUID                     `json:"rule_id"`
	RuleName      string                        `json:"rule_name"`
	Subtype       models.CreativeFinanceSubtype `json:"subtype"`
	Matched       bool                          `json:"matched"`
	PointsAwarded int                           `json:"points_awarded"`
}

// CreativeFinanceResult is the matcher's aggregate output. MatchedTypes is
// deduplicated for display; TotalBonus counts every matching rule.
type CreativeFinanceResult struct {
	Matched      bool                            `json:"matched"`
	MatchedTypes []models.CreativeFinanceSubtype `json:"matched_types"`
	TotalBonus   int                             `json:"total_bonus"`
	PerRule      []CreativeRuleOutcome           `json:"per_rule"`
}

// EvaluateCreativeRules evaluates every enabled subtype-tagged rule against
// the snapshot. A single malformed rule is treated as a non-match and never
// aborts evaluation of the rest.
func EvaluateCreativeRules(snapshot map[string]interface{}, rules []models.QualificationRule) *CreativeFinanceResult {
	result := &CreativeFinanceResult{
		MatchedTypes: []models.CreativeFinanceSubtype{},
		PerRule:      []CreativeRuleOutcome{},
	}

	seen := make(map[models.CreativeFinanceSubtype]bool)
	for i := range rules {
		rule := &rules[i]
		if !rule.Enabled || !rule.IsCreativeFinance() {
			continue
		}

		outcome := CreativeRuleOutcome{
			RuleID:   rule.ID,
			RuleName: rule.Name,
			Subtype:  rule.CreativeFinanceSubtype,
			Matched:  evaluateRuleSafely(snapshot, rule),
		}

		if outcome.Matched {
			outcome.PointsAwarded = CreativeFinanceBonus
			result.TotalBonus += CreativeFinanceBonus
			result.Matched = true
			if !seen[rule.CreativeFinanceSubtype] {
				seen[rule.CreativeFinanceSubtype] = true
				result.MatchedTypes = append(result.MatchedTypes, rule.CreativeFinanceSubtype)
			}
		}

		result.PerRule = append(result.PerRule, outcome)
	}

	return result
}

// evaluateRuleSafely resolves the rule's field path and runs the predicate.
// The predicate is total, but a panic from an unexpected rule shape is
// still contained here and normalized to a non-match.
func evaluateRuleSafely(snapshot map[string]interface{}, rule *models.QualificationRule) (matched bool) {
	defer func() {
		if recover() != nil {
			matched = false
		}
	}()

	value, _ := Lookup(snapshot, rule.FieldPath)
	return EvaluatePredicate(value, rule.Operator, rule.ComparisonValue.V)
}
