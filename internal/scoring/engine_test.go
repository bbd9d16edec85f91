package scoring

import (
	"testing"

	"github.com/google/uuid"

	"github.com/harborpoint/dealflow/internal/models"
)

func gateRule(seq int, name, path string, op models.Operator, cmp interface{}) models.QualificationRule {
	return models.QualificationRule{
		ID:              uuid.New(),
		Name:            name,
		RuleKind:        models.RuleKindGate,
		FieldPath:       path,
		Operator:        op,
		ComparisonValue: models.ComparisonValue{V: cmp},
		Enabled:         true,
		Sequence:        seq,
	}
}

func scoreRule(seq int, name, path string, op models.Operator, cmp interface{}, weight int) models.QualificationRule {
	return models.QualificationRule{
		ID:              uuid.New(),
		Name:            name,
		RuleKind:        models.RuleKindScore,
		FieldPath:       path,
		Operator:        op,
		ComparisonValue: models.ComparisonValue{V: cmp},
		Weight:          weight,
		Enabled:         true,
		Sequence:        seq,
	}
}

func creativeRule(seq int, name, path string, op models.Operator, cmp interface{}, subtype models.CreativeFinanceSubtype) models.QualificationRule {
	r := scoreRule(seq, name, path, op, cmp, 0)
	r.CreativeFinanceSubtype = subtype
	return r
}

func TestEngine_ThresholdBoundary(t *testing.T) {
	engine := NewEngine()
	snapshot := map[string]interface{}{
		"estimatedValue": 100000.0,
		"daysOnMarket":   70.0,
	}

	rules := []models.QualificationRule{
		scoreRule(1, "value floor", "estimatedValue", models.OpGreaterThan, 50000.0, 30),
		scoreRule(2, "stale listing", "daysOnMarket", models.OpGreaterThan, 60.0, 20),
	}

	result := engine.Evaluate(snapshot, rules)
	if result.Score != 50 {
		t.Fatalf("expected score 50, got %d", result.Score)
	}
	if result.Status != StatusQualified {
		t.Errorf("score of exactly 50 must classify as QUALIFIED, got %s", result.Status)
	}

	// One point under the threshold reviews instead.
	rules[1].Weight = 19
	result = engine.Evaluate(snapshot, rules)
	if result.Score != 49 {
		t.Fatalf("expected score 49, got %d", result.Score)
	}
	if result.Status != StatusNeedsReview {
		t.Errorf("score 49 must classify as NEEDS_REVIEW, got %s", result.Status)
	}
}

func TestEngine_GateShortCircuit(t *testing.T) {
	engine := NewEngine()
	snapshot := map[string]interface{}{
		"estimatedValue": 40000.0,
		"daysOnMarket":   70.0,
	}

	rules := []models.QualificationRule{
		gateRule(1, "has value", "estimatedValue", models.OpGreaterThan, 0.0),
		gateRule(2, "value floor", "estimatedValue", models.OpGreaterThan, 50000.0),
		gateRule(3, "never evaluated", "daysOnMarket", models.OpGreaterThan, 0.0),
		scoreRule(4, "stale listing", "daysOnMarket", models.OpGreaterThan, 60.0, 100),
	}

	result := engine.Evaluate(snapshot, rules)
	if result.Status != StatusRejected {
		t.Fatalf("expected REJECTED, got %s", result.Status)
	}
	if result.Score != 0 {
		t.Errorf("rejected deal must have score 0, got %d", result.Score)
	}
	if len(result.RuleTrace) != 2 {
		t.Fatalf("trace must cover gates up to and including the failing one: want 2 entries, got %d", len(result.RuleTrace))
	}
	if result.RuleTrace[0].Outcome != OutcomePass {
		t.Errorf("first gate should pass, got %s", result.RuleTrace[0].Outcome)
	}
	if result.RuleTrace[1].Outcome != OutcomeFail {
		t.Errorf("second gate should fail, got %s", result.RuleTrace[1].Outcome)
	}
	for _, entry := range result.RuleTrace {
		if entry.PointsAwarded != 0 {
			t.Errorf("gate trace entries award 0 points, got %d", entry.PointsAwarded)
		}
	}
}

func TestEngine_DisabledGateExcluded(t *testing.T) {
	engine := NewEngine()
	snapshot := map[string]interface{}{"estimatedValue": 40000.0}

	gate := gateRule(1, "value floor", "estimatedValue", models.OpGreaterThan, 50000.0)
	rules := []models.QualificationRule{gate}

	if result := engine.Evaluate(snapshot, rules); result.Status != StatusRejected {
		t.Fatalf("enabled failing gate must reject, got %s", result.Status)
	}

	rules[0].Enabled = false
	result := engine.Evaluate(snapshot, rules)
	if result.Status == StatusRejected {
		t.Error("a disabled gate can never reject a deal")
	}
	if len(result.RuleTrace) != 0 {
		t.Errorf("disabled rules produce no trace entries, got %d", len(result.RuleTrace))
	}
}

func TestEngine_ZeroRules(t *testing.T) {
	result := NewEngine().Evaluate(map[string]interface{}{"estimatedValue": 1.0}, nil)
	if result.Status != StatusNeedsReview || result.Score != 0 || len(result.RuleTrace) != 0 {
		t.Errorf("zero rules must yield NEEDS_REVIEW/0/empty trace, got %s/%d/%d",
			result.Status, result.Score, len(result.RuleTrace))
	}
}

func TestEngine_ScoreMonotonicity(t *testing.T) {
	engine := NewEngine()
	snapshot := map[string]interface{}{
		"estimatedValue": 100000.0,
		"daysOnMarket":   70.0,
	}

	base := []models.QualificationRule{
		scoreRule(1, "value floor", "estimatedValue", models.OpGreaterThan, 50000.0, 30),
	}
	baseScore := engine.Evaluate(snapshot, base).Score

	extended := append(base, scoreRule(2, "stale listing", "daysOnMarket", models.OpGreaterThan, 60.0, 20))
	if got := engine.Evaluate(snapshot, extended).Score; got < baseScore {
		t.Errorf("adding a matching positive-weight rule decreased score: %d -> %d", baseScore, got)
	}
}

func TestEngine_NonMatchingScoreRuleAwardsZero(t *testing.T) {
	engine := NewEngine()
	snapshot := map[string]interface{}{"daysOnMarket": 10.0}

	result := engine.Evaluate(snapshot, []models.QualificationRule{
		scoreRule(1, "stale listing", "daysOnMarket", models.OpGreaterThan, 60.0, 20),
		scoreRule(2, "missing field", "equityPercent", models.OpGreaterThan, 50.0, 20),
	})
	if result.Score != 0 {
		t.Errorf("expected score 0, got %d", result.Score)
	}
	for _, entry := range result.RuleTrace {
		if entry.Outcome != OutcomeFail || entry.PointsAwarded != 0 {
			t.Errorf("non-matching rule %q traced as %s/%d", entry.RuleName, entry.Outcome, entry.PointsAwarded)
		}
	}
}

func TestEngine_CreativeFinanceStacking(t *testing.T) {
	engine := NewEngine()
	snapshot := map[string]interface{}{
		"rawData": map[string]interface{}{
			"mortgageRate":    3.0,
			"mortgageBalance": 180000.0,
		},
	}

	rules := []models.QualificationRule{
		creativeRule(1, "low rate sub-to", "rawData.mortgageRate", models.OpLessThan, 4.0, models.SubtypeSubjectTo),
		creativeRule(2, "high balance sub-to", "rawData.mortgageBalance", models.OpGreaterThan, 100000.0, models.SubtypeSubjectTo),
		creativeRule(3, "lease option", "rawData.tenantInPlace", models.OpEquals, true, models.SubtypeLeaseOption),
	}

	result := engine.Evaluate(snapshot, rules)

	// Two matching rules of the same subtype stack to 40 points but list
	// the subtype once.
	if result.Score != 40 {
		t.Errorf("expected stacked bonus of 40, got %d", result.Score)
	}
	if len(result.MatchedCreativeFinanceTypes) != 1 || result.MatchedCreativeFinanceTypes[0] != models.SubtypeSubjectTo {
		t.Errorf("expected deduplicated matched types [SUBJECT_TO], got %v", result.MatchedCreativeFinanceTypes)
	}
	if len(result.RuleTrace) != 3 {
		t.Fatalf("expected one trace entry per creative rule, got %d", len(result.RuleTrace))
	}
	if result.RuleTrace[0].PointsAwarded != CreativeFinanceBonus || result.RuleTrace[1].PointsAwarded != CreativeFinanceBonus {
		t.Error("matching creative rules award the fixed bonus")
	}
	if result.RuleTrace[2].PointsAwarded != 0 || result.RuleTrace[2].Outcome != OutcomeFail {
		t.Error("non-matching creative rule awards nothing")
	}
}

func TestEngine_MalformedRuleDoesNotAbort(t *testing.T) {
	engine := NewEngine()
	snapshot := map[string]interface{}{"estimatedValue": 100000.0}

	rules := []models.QualificationRule{
		// IN_SET with a non-array comparison value degrades to no-match.
		scoreRule(1, "malformed set", "estimatedValue", models.OpInSet, "not-an-array", 30),
		scoreRule(2, "value floor", "estimatedValue", models.OpGreaterThan, 50000.0, 50),
	}

	result := engine.Evaluate(snapshot, rules)
	if result.Score != 50 {
		t.Errorf("malformed rule must not abort the rest: want score 50, got %d", result.Score)
	}
	if result.RuleTrace[0].Outcome != OutcomeFail {
		t.Errorf("malformed rule traces as FAIL, got %s", result.RuleTrace[0].Outcome)
	}
}

func TestEngine_TraceFollowsSequenceOrder(t *testing.T) {
	engine := NewEngine()
	snapshot := map[string]interface{}{"estimatedValue": 100000.0}

	rules := []models.QualificationRule{
		scoreRule(5, "second", "estimatedValue", models.OpGreaterThan, 50000.0, 10),
		scoreRule(2, "first", "estimatedValue", models.OpGreaterThan, 50000.0, 10),
	}

	result := engine.Evaluate(snapshot, rules)
	if result.RuleTrace[0].RuleName != "first" || result.RuleTrace[1].RuleName != "second" {
		t.Errorf("trace must follow rule sequence, got %q then %q",
			result.RuleTrace[0].RuleName, result.RuleTrace[1].RuleName)
	}
}

func TestCalculateMAO(t *testing.T) {
	result := CalculateMAO(200000, 50000)
	if result.MAO != 90000 {
		t.Errorf("expected MAO 90000, got %v", result.MAO)
	}
	if result.Formula != "(200000 × 0.70) − 50000" {
		t.Errorf("unexpected formula string %q", result.Formula)
	}

	// Negative MAO is a meaningful result, not an error.
	result = CalculateMAO(100000, 80000)
	if result.MAO != -10000 {
		t.Errorf("expected MAO -10000, got %v", result.MAO)
	}
}
