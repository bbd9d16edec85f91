package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RuleKind distinguishes hard gates from weighted scoring rules.
type RuleKind string

const (
	RuleKindGate  RuleKind = "GATE"
	RuleKindScore RuleKind = "SCORE"
)

// Operator is a predicate comparison operator.
type Operator string

const (
	OpGreaterThan Operator = "GREATER_THAN"
	OpLessThan    Operator = "LESS_THAN"
	OpEquals      Operator = "EQUALS"
	OpInSet       Operator = "IN_SET"
	OpHasFlag     Operator = "HAS_FLAG"
	OpInRange     Operator = "IN_RANGE"
	OpLacksFlag   Operator = "LACKS_FLAG"
)

// CreativeFinanceSubtype tags a scoring rule as a stackable bonus rule for
// one of the non-cash acquisition structures.
type CreativeFinanceSubtype string

const (
	SubtypeSubjectTo       CreativeFinanceSubtype = "SUBJECT_TO"
	SubtypeSellerFinance   CreativeFinanceSubtype = "SELLER_FINANCE"
	SubtypeWrapMortgage    CreativeFinanceSubtype = "WRAP_MORTGAGE"
	SubtypeLeaseOption     CreativeFinanceSubtype = "LEASE_OPTION"
	SubtypeContractForDeed CreativeFinanceSubtype = "CONTRACT_FOR_DEED"
	SubtypeNovation        CreativeFinanceSubtype = "NOVATION"
	SubtypeAssumableLoan   CreativeFinanceSubtype = "ASSUMABLE_LOAN"
	SubtypeHybridOffer     CreativeFinanceSubtype = "HYBRID_OFFER"
)

// CreativeFinanceSubtypes lists every recognized subtype tag.
var CreativeFinanceSubtypes = []CreativeFinanceSubtype{
	SubtypeSubjectTo,
	SubtypeSellerFinance,
	SubtypeWrapMortgage,
	SubtypeLeaseOption,
	SubtypeContractForDeed,
	SubtypeNovation,
	SubtypeAssumableLoan,
	SubtypeHybridOffer,
}

// QualificationRule is one configured condition owned by the platform
// operator. Rules are read-only inputs to the engine.
type QualificationRule struct {
	ID                     uuid.UUID              `json:"id" db:"id"`
	Name                   string                 `json:"name" db:"name"`
	RuleKind               RuleKind               `json:"rule_kind" db:"rule_kind"`
	FieldPath              string                 `json:"field_path" db:"field_path"`
	Operator               Operator               `json:"operator" db:"operator"`
	ComparisonValue        ComparisonValue        `json:"comparison_value" db:"comparison_value"`
	Weight                 int                    `json:"weight" db:"weight"`
	CreativeFinanceSubtype CreativeFinanceSubtype `json:"creative_finance_subtype,omitempty" db:"creative_finance_subtype"`
	Enabled                bool                   `json:"enabled" db:"enabled"`
	// Sequence fixes trace order regardless of how rules come back from
	// storage.
	Sequence  int       `json:"sequence" db:"sequence"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsCreativeFinance reports whether the rule is a stackable bonus rule.
func (r *QualificationRule) IsCreativeFinance() bool {
	return r.CreativeFinanceSubtype != ""
}

// ComparisonValue is the operator-dependent configured value: a number,
// string, boolean, array, or {min,max} object, persisted as JSONB.
type ComparisonValue struct {
	V interface{}
}

// Value implements driver.Valuer for ComparisonValue
func (c ComparisonValue) Value() (driver.Value, error) {
	return json.Marshal(c.V)
}

// Scan implements sql.Scanner for ComparisonValue
func (c *ComparisonValue) Scan(value interface{}) error {
	if value == nil {
		c.V = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into ComparisonValue", value)
	}

	return json.Unmarshal(bytes, &c.V)
}

// MarshalJSON emits the raw configured value.
func (c ComparisonValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.V)
}

// UnmarshalJSON accepts the raw configured value.
func (c *ComparisonValue) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &c.V)
}

// ValidateShape checks the operator / comparison-value pairing once at load
// time. The evaluator itself stays total and treats mismatches as
// non-matches; this catches operator mistakes before a rule is saved.
func (r *QualificationRule) ValidateShape() error {
	switch r.RuleKind {
	case RuleKindGate, RuleKindScore:
	default:
		return fmt.Errorf("unknown rule kind %q", r.RuleKind)
	}

	if r.FieldPath == "" {
		return fmt.Errorf("rule %q has no field path", r.Name)
	}

	v := r.ComparisonValue.V
	switch r.Operator {
	case OpGreaterThan, OpLessThan:
		if !isJSONNumber(v) {
			return fmt.Errorf("operator %s requires a numeric comparison value", r.Operator)
		}
	case OpEquals:
		switch v.(type) {
		case float64, int, int64, string, bool:
		default:
			return fmt.Errorf("operator %s requires a number, string, or boolean comparison value", r.Operator)
		}
	case OpInSet:
		if _, ok := v.([]interface{}); !ok {
			return fmt.Errorf("operator %s requires an array comparison value", r.Operator)
		}
	case OpHasFlag, OpLacksFlag:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("operator %s requires a flag-name comparison value", r.Operator)
		}
	case OpInRange:
		rng, ok := v.(map[string]interface{})
		if !ok || !isJSONNumber(rng["min"]) || !isJSONNumber(rng["max"]) {
			return fmt.Errorf("operator %s requires a {min,max} comparison value", r.Operator)
		}
	default:
		return fmt.Errorf("unknown operator %q", r.Operator)
	}

	if r.CreativeFinanceSubtype != "" {
		if r.RuleKind != RuleKindScore {
			return fmt.Errorf("creative-finance subtype is only valid on %s rules", RuleKindScore)
		}
		known := false
		for _, subtype := range CreativeFinanceSubtypes {
			if subtype == r.CreativeFinanceSubtype {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown creative-finance subtype %q", r.CreativeFinanceSubtype)
		}
	}

	return nil
}

func isJSONNumber(v interface{}) bool {
	switch v.(type) {
	case float64, float32, int, int64, int32:
		return true
	}
	return false
}
