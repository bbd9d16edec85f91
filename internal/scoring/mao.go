package scoring

import (
	"fmt"
	"strconv"
)

// MAOPercentage is the standard investor heuristic: offer at most 70% of
// after-repair value, less repair costs. Advisory only.
const MAOPercentage = 0.70

// MAOResult carries the computed maximum allowable offer and a display
// string of the arithmetic. No rounding is applied; callers round for
// display only.
type MAOResult struct {
	MAO     float64 `json:"mao"`
	Formula string  `json:"formula"`
}

// CalculateMAO computes ARV × 0.70 − repairCosts. A negative MAO is a
// valid, meaningful result, not an error.
func CalculateMAO(arv, repairCosts float64) MAOResult {
	return MAOResult{
		MAO:     arv*MAOPercentage - repairCosts,
		Formula: fmt.Sprintf("(%s × 0.70) − %s", formatAmount(arv), formatAmount(repairCosts)),
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
