package models

import (
	"time"

	"github.com/google/uuid"
)

// DealStage is one discrete state in a deal's lifecycle.
type DealStage string

const (
	StageSourced       DealStage = "SOURCED"
	StageAnalyzing     DealStage = "ANALYZING"
	StageQualified     DealStage = "QUALIFIED"
	StageUnderContract DealStage = "UNDER_CONTRACT"
	StageClosed        DealStage = "CLOSED"
	StageRejected      DealStage = "REJECTED"
)

// Deal is the long-lived record a property moves through the acquisition
// pipeline as. Its stage only ever changes through the pipeline state
// machine.
type Deal struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	PropertyID      uuid.UUID  `json:"property_id" db:"property_id"`
	OwnerID         uuid.UUID  `json:"owner_id" db:"owner_id"`
	CurrentStage    DealStage  `json:"current_stage" db:"current_stage"`
	EstimatedProfit *float64   `json:"estimated_profit,omitempty" db:"estimated_profit"`
	ClosedDate      *time.Time `json:"closed_date,omitempty" db:"closed_date"`
	Notes           string     `json:"notes" db:"notes"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// DealHistoryEntry is an append-only audit record. Entries are never
// updated or deleted once written.
type DealHistoryEntry struct {
	ID           uuid.UUID `json:"id" db:"id"`
	DealID       uuid.UUID `json:"deal_id" db:"deal_id"`
	FieldChanged string    `json:"field_changed" db:"field_changed"`
	OldValue     string    `json:"old_value" db:"old_value"`
	NewValue     string    `json:"new_value" db:"new_value"`
	ChangedBy    uuid.UUID `json:"changed_by" db:"changed_by"`
	ChangedAt    time.Time `json:"changed_at" db:"changed_at"`
}

// History field names used by the audit trail.
const (
	HistoryFieldStatus = "status"
	HistoryFieldNotes  = "notes"
)

// CreateDealRequest opens a new deal for a property.
type CreateDealRequest struct {
	PropertyID uuid.UUID `json:"property_id" binding:"required"`
	Notes      string    `json:"notes"`
}

// TransitionRequest asks to move a deal to a new stage. EstimatedProfit
// and ClosedDate are required by specific transitions and ignored by the
// rest.
type TransitionRequest struct {
	TargetStage     DealStage  `json:"target_stage" binding:"required"`
	EstimatedProfit *float64   `json:"estimated_profit,omitempty"`
	ClosedDate      *time.Time `json:"closed_date,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
}

// TransitionResult is the acknowledgement for a completed stage change.
type TransitionResult struct {
	ID        uuid.UUID `json:"id"`
	Stage     DealStage `json:"stage"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateNotesRequest replaces a deal's notes outside of a transition.
type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}
