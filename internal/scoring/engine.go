package scoring

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/harborpoint/dealflow/internal/models"
)

// QualificationThreshold is the score at or above which a deal qualifies
// once every gate has passed.
const QualificationThreshold = 50

// Status is the qualification verdict.
type Status string

const (
	StatusQualified   Status = "QUALIFIED"
	StatusNeedsReview Status = "NEEDS_REVIEW"
	StatusRejected    Status = "REJECTED"
)

// Trace outcomes.
const (
	OutcomePass = "PASS"
	OutcomeFail = "FAIL"
)

// TraceEntry records one rule's evaluation in display order.
type TraceEntry struct {
	RuleID        uuid.UUID `json:"rule_id"`
	RuleName      string    `json:"rule_name"`
	Outcome       string    `json:"outcome"`
	PointsAwarded int       `json:"points_awarded"`
}

// EvaluationResult is the engine's verdict for one property snapshot. It is
// produced fresh on every call and never persisted by the engine itself.
type EvaluationResult struct {
	Status                      Status                          `json:"status"`
	Score                       int                             `json:"score"`
	RuleTrace                   []TraceEntry                    `json:"rule_trace"`
	MatchedCreativeFinanceTypes []models.CreativeFinanceSubtype `json:"matched_creative_finance_types"`
	EvaluatedAt                 time.Time                       `json:"evaluated_at"`
}

// Engine turns a property snapshot and a configured rule set into a
// qualification verdict. It performs no I/O and never mutates its inputs.
type Engine struct{}

// NewEngine creates a new qualification engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs the three scoring phases.
//
// Gates run first, in sequence order; the first failing gate rejects the
// deal immediately with a trace covering only the gates actually evaluated.
// Standard scoring rules then accumulate their weights, creative-finance
// rules add their stacked bonuses, and the total classifies the deal.
// Rejection is only ever possible through a gate failure.
func (e *Engine) Evaluate(snapshot map[string]interface{}, rules []models.QualificationRule) *EvaluationResult {
	gates, standard, creative := Partition(rules)

	result := &EvaluationResult{
		Status:                      StatusNeedsReview,
		RuleTrace:                   []TraceEntry{},
		MatchedCreativeFinanceTypes: []models.CreativeFinanceSubtype{},
		EvaluatedAt:                 time.Now(),
	}

	for i := range gates {
		gate := &gates[i]
		passed := evaluateRuleSafely(snapshot, gate)
		result.RuleTrace = append(result.RuleTrace, TraceEntry{
			RuleID:   gate.ID,
			RuleName: gate.Name,
			Outcome:  outcomeOf(passed),
		})
		if !passed {
			result.Status = StatusRejected
			result.Score = 0
			return result
		}
	}

	for i := range standard {
		rule := &standard[i]
		matched := evaluateRuleSafely(snapshot, rule)
		entry := TraceEntry{
			RuleID:   rule.ID,
			RuleName: rule.Name,
			Outcome:  outcomeOf(matched),
		}
		if matched {
			entry.PointsAwarded = rule.Weight
			result.Score += rule.Weight
		}
		result.RuleTrace = append(result.RuleTrace, entry)
	}

	cf := EvaluateCreativeRules(snapshot, creative)
	result.Score += cf.TotalBonus
	result.MatchedCreativeFinanceTypes = cf.MatchedTypes
	for _, outcome := range cf.PerRule {
		result.RuleTrace = append(result.RuleTrace, TraceEntry{
			RuleID:        outcome.RuleID,
			RuleName:      outcome.RuleName,
			Outcome:       outcomeOf(outcome.Matched),
			PointsAwarded: outcome.PointsAwarded,
		})
	}

	if result.Score >= QualificationThreshold {
		result.Status = StatusQualified
	}

	return result
}

// Partition splits enabled rules into the engine's three phases, ordered by
// their configured sequence so traces are reproducible regardless of input
// order. Disabled rules are excluded entirely and can never reject a deal.
func Partition(rules []models.QualificationRule) (gates, standard, creative []models.QualificationRule) {
	enabled := make([]models.QualificationRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Enabled {
			enabled = append(enabled, rule)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Sequence < enabled[j].Sequence
	})

	for _, rule := range enabled {
		switch {
		case rule.RuleKind == models.RuleKindGate:
			gates = append(gates, rule)
		case rule.IsCreativeFinance():
			creative = append(creative, rule)
		default:
			standard = append(standard, rule)
		}
	}
	return gates, standard, creative
}

func outcomeOf(matched bool) string {
	if matched {
		return OutcomePass
	}
	return OutcomeFail
}
