package scoring

import "github.com/harborpoint/dealflow/internal/models"

// EvaluatePredicate evaluates one typed comparison. It is total: any
// operand shape the operator does not support yields false, so a malformed
// rule or a missing field can never abort an evaluation.
func EvaluatePredicate(fieldValue interface{}, op models.Operator, comparison interface{}) bool {
	switch op {
	case models.OpGreaterThan:
		a, aok := toFloat64(fieldValue)
		b, bok := toFloat64(comparison)
		return aok && bok && a > b

	case models.OpLessThan:
		a, aok := toFloat64(fieldValue)
		b, bok := toFloat64(comparison)
		return aok && bok && a < b

	case models.OpEquals:
		return equalsStrict(fieldValue, comparison)

	case models.OpInSet:
		// Membership is only defined when the configured value is an array.
		list, ok := comparison.([]interface{})
		if !ok {
			return false
		}
		for _, item := range list {
			if equalsStrict(fieldValue, item) {
				return true
			}
		}
		return false

	case models.OpHasFlag:
		return hasFlag(fieldValue, comparison)

	case models.OpInRange:
		v, vok := toFloat64(fieldValue)
		min, max, rok := toRange(comparison)
		return vok && rok && v >= min && v <= max

	case models.OpLacksFlag:
		return lacksFlag(fieldValue, comparison)

	default:
		return false
	}
}

// equalsStrict compares values of the same kind only. Numbers compare
// numerically across widths (JSON decoding hands the engine float64s, rule
// seeds may carry ints), but a number never equals a string or boolean.
func equalsStrict(a, b interface{}) bool {
	if af, ok := toFloat64(a); ok {
		bf, bok := toFloat64(b)
		return bok && af == bf
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return false
}

// hasFlag is dual-shape: for array field values it checks membership of
// the flag name, for map field values it checks the key exists and is
// truthy. Any other shape, including nil, is false.
func hasFlag(fieldValue, comparison interface{}) bool {
	name, ok := comparison.(string)
	if !ok {
		return false
	}

	switch v := fieldValue.(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && s == name {
				return true
			}
		}
		return false
	case []string:
		for _, s := range v {
			if s == name {
				return true
			}
		}
		return false
	case map[string]interface{}:
		value, exists := v[name]
		return exists && truthy(value)
	default:
		return false
	}
}

// lacksFlag is not a plain negation of hasFlag: for arrays and maps it is
// the absent/falsy check, but an unsupported field shape still returns
// false so that malformed data never silently passes a negative check.
func lacksFlag(fieldValue, comparison interface{}) bool {
	name, ok := comparison.(string)
	if !ok {
		return false
	}

	switch v := fieldValue.(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && s == name {
				return false
			}
		}
		return true
	case []string:
		for _, s := range v {
			if s == name {
				return false
			}
		}
		return true
	case map[string]interface{}:
		value, exists := v[name]
		return !exists || !truthy(value)
	default:
		return false
	}
}

func truthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	default:
		if f, ok := toFloat64(v); ok {
			return f != 0
		}
		return true
	}
}

func toRange(comparison interface{}) (min, max float64, ok bool) {
	rng, isMap := comparison.(map[string]interface{})
	if !isMap {
		return 0, 0, false
	}
	min, minOK := toFloat64(rng["min"])
	max, maxOK := toFloat64(rng["max"])
	return min, max, minOK && maxOK
}

// toFloat64 converts the numeric types seen in snapshots and decoded rule
// JSON.
func toFloat64(val interface{}) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	default:
		return 0, false
	}
}
