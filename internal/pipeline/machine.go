// Package pipeline owns the deal lifecycle state machine: which stage
// changes are legal, what each one requires, and what a caller must
// persist when one is executed. It decides; the service layer applies the
// decision inside a transaction.
package pipeline

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/harborpoint/dealflow/internal/errors"
	"github.com/harborpoint/dealflow/internal/models"
)

// Required field names declared by transitions.
const (
	FieldEstimatedProfit = "estimatedProfit"
	FieldClosedDate      = "closedDate"
)

// Fields carries the stage-specific values supplied with a transition.
type Fields struct {
	EstimatedProfit *float64
	ClosedDate      *time.Time
}

type transitionRule struct {
	to       models.DealStage
	required []string
}

// transitionTable is the single source of truth for legality. CLOSED and
// REJECTED have no outgoing entries and are therefore terminal.
var transitionTable = map[models.DealStage][]transitionRule{
	models.StageSourced: {
		{to: models.StageAnalyzing},
		{to: models.StageRejected},
	},
	models.StageAnalyzing: {
		{to: models.StageQualified},
		{to: models.StageRejected},
	},
	models.StageQualified: {
		{to: models.StageUnderContract, required: []string{FieldEstimatedProfit}},
		{to: models.StageRejected},
	},
	models.StageUnderContract: {
		{to: models.StageClosed, required: []string{FieldClosedDate}},
		{to: models.StageRejected},
	},
	models.StageClosed:   {},
	models.StageRejected: {},
}

// ValidStage reports whether s is a known pipeline stage.
func ValidStage(s models.DealStage) bool {
	_, ok := transitionTable[s]
	return ok
}

// IsTerminal reports whether no transition originates from s.
func IsTerminal(s models.DealStage) bool {
	rules, ok := transitionTable[s]
	return ok && len(rules) == 0
}

// LegalNextStages lists the stages reachable from s, in table order.
func LegalNextStages(s models.DealStage) []models.DealStage {
	rules := transitionTable[s]
	next := make([]models.DealStage, 0, len(rules))
	for _, rule := range rules {
		next = append(next, rule.to)
	}
	return next
}

// TransitionPlan is a validated stage change ready to be applied.
type TransitionPlan struct {
	From   models.DealStage
	To     models.DealStage
	Fields Fields
}

// Plan validates a requested stage change against the transition table and
// its required fields. It returns a typed, user-displayable error on
// failure and never mutates anything.
func Plan(current, target models.DealStage, fields Fields) (*TransitionPlan, *apperrors.AppError) {
	rules, known := transitionTable[current]
	if !known {
		return nil, apperrors.InvalidTransition(fmt.Sprintf("unknown stage %q", current))
	}

	var matched *transitionRule
	for i := range rules {
		if rules[i].to == target {
			matched = &rules[i]
			break
		}
	}

	if matched == nil {
		if IsTerminal(current) {
			return nil, apperrors.InvalidTransition(
				fmt.Sprintf("deal is %s: terminal stage, no further stages", current))
		}
		return nil, apperrors.InvalidTransition(
			fmt.Sprintf("cannot move from %s to %s; legal next stages: %s",
				current, target, joinStages(LegalNextStages(current))))
	}

	var missing []string
	for _, name := range matched.required {
		switch name {
		case FieldEstimatedProfit:
			if fields.EstimatedProfit == nil {
				missing = append(missing, name)
			}
		case FieldClosedDate:
			if fields.ClosedDate == nil {
				missing = append(missing, name)
			}
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.MissingFields(
			fmt.Sprintf("transition %s to %s requires: %s", current, target, strings.Join(missing, ", ")))
	}

	return &TransitionPlan{From: current, To: target, Fields: fields}, nil
}

func joinStages(stages []models.DealStage) string {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
