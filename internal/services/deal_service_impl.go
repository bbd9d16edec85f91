package services

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/harborpoint/dealflow/internal/errors"
	"github.com/harborpoint/dealflow/internal/logger"
	"github.com/harborpoint/dealflow/internal/models"
	"github.com/harborpoint/dealflow/internal/pipeline"
	"github.com/harborpoint/dealflow/internal/repository"
)

// dealServiceImpl implements DealService
type dealServiceImpl struct {
	repos *repository.Repositories
	log   logger.Logger
}

// newDealService creates a new deal service implementation
func newDealService(repos *repository.Repositories, log logger.Logger) DealService {
	return &dealServiceImpl{repos: repos, log: log}
}

// Create opens a new deal in the SOURCED stage.
func (s *dealServiceImpl) Create(ownerID uuid.UUID, req *models.CreateDealRequest) (*models.Deal, error) {
	if _, err := s.repos.Property.GetByID(req.PropertyID); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("property not found", nil)
		}
		return nil, apperrors.DatabaseError("failed to get property", err)
	}

	deal := &models.Deal{
		PropertyID:   req.PropertyID,
		OwnerID:      ownerID,
		CurrentStage: models.StageSourced,
		Notes:        req.Notes,
	}
	if err := s.repos.Deal.Create(deal); err != nil {
		return nil, apperrors.DatabaseError("failed to create deal", err)
	}

	s.log.Info("deal created", map[string]interface{}{
		"deal_id":     deal.ID.String(),
		"property_id": deal.PropertyID.String(),
		"owner_id":    ownerID.String(),
	})

	return deal, nil
}

// GetByID retrieves a deal owned by the acting user. A deal owned by
// someone else reports not found.
func (s *dealServiceImpl) GetByID(id, ownerID uuid.UUID) (*models.Deal, error) {
	deal, err := s.repos.Deal.GetByID(id, ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("deal not found", nil)
		}
		return nil, apperrors.DatabaseError("failed to get deal", err)
	}
	return deal, nil
}

// List retrieves the acting user's deals
func (s *dealServiceImpl) List(filters repository.DealFilters) ([]models.Deal, error) {
	if filters.Limit <= 0 || filters.Limit > 500 {
		filters.Limit = 100
	}
	deals, err := s.repos.Deal.List(filters)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to list deals", err)
	}
	return deals, nil
}

// Transition moves a deal to a new stage. The stage write and its history
// entries commit in one transaction; the deal row is locked for the
// duration so concurrent transitions serialize.
func (s *dealServiceImpl) Transition(id, ownerID uuid.UUID, req *models.TransitionRequest) (*models.TransitionResult, error) {
	var result *models.TransitionResult

	err := s.repos.Tx.WithTransaction(func(tx *repository.Repositories) error {
		deal, err := tx.Deal.GetByIDForUpdate(id, ownerID)
		if err != nil {
			if err == sql.ErrNoRows {
				return apperrors.NotFound("deal not found", nil)
			}
			return apperrors.DatabaseError("failed to get deal", err)
		}

		plan, appErr := pipeline.Plan(deal.CurrentStage, req.TargetStage, pipeline.Fields{
			EstimatedProfit: req.EstimatedProfit,
			ClosedDate:      req.ClosedDate,
		})
		if appErr != nil {
			return appErr
		}

		now := time.Now()
		previousStage := deal.CurrentStage
		previousNotes := deal.Notes

		deal.CurrentStage = plan.To
		deal.UpdatedAt = now
		if plan.Fields.EstimatedProfit != nil {
			deal.EstimatedProfit = plan.Fields.EstimatedProfit
		}
		if plan.Fields.ClosedDate != nil {
			deal.ClosedDate = plan.Fields.ClosedDate
		}

		notesChanged := req.Notes != nil && *req.Notes != previousNotes
		if notesChanged {
			deal.Notes = *req.Notes
		}

		if err := tx.Deal.Update(deal); err != nil {
			return apperrors.DatabaseError("failed to update deal", err)
		}

		if err := tx.Deal.AppendHistory(&models.DealHistoryEntry{
			DealID:       deal.ID,
			FieldChanged: models.HistoryFieldStatus,
			OldValue:     string(previousStage),
			NewValue:     string(plan.To),
			ChangedBy:    ownerID,
			ChangedAt:    now,
		}); err != nil {
			return apperrors.DatabaseError("failed to record stage change", err)
		}

		if notesChanged {
			if err := tx.Deal.AppendHistory(&models.DealHistoryEntry{
				DealID:       deal.ID,
				FieldChanged: models.HistoryFieldNotes,
				OldValue:     previousNotes,
				NewValue:     deal.Notes,
				ChangedBy:    ownerID,
				ChangedAt:    now,
			}); err != nil {
				return apperrors.DatabaseError("failed to record notes change", err)
			}
		}

		result = &models.TransitionResult{
			ID:        deal.ID,
			Stage:     deal.CurrentStage,
			UpdatedAt: deal.UpdatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("deal transitioned", map[string]interface{}{
		"deal_id":  result.ID.String(),
		"stage":    string(result.Stage),
		"owner_id": ownerID.String(),
	})

	return result, nil
}

// UpdateNotes replaces a deal's notes outside of a transition. A no-op
// update writes no history.
func (s *dealServiceImpl) UpdateNotes(id, ownerID uuid.UUID, notes string) (*models.Deal, error) {
	var updated *models.Deal

	err := s.repos.Tx.WithTransaction(func(tx *repository.Repositories) error {
		deal, err := tx.Deal.GetByIDForUpdate(id, ownerID)
		if err != nil {
			if err == sql.ErrNoRows {
				return apperrors.NotFound("deal not found", nil)
			}
			return apperrors.DatabaseError("failed to get deal", err)
		}

		if deal.Notes == notes {
			updated = deal
			return nil
		}

		previousNotes := deal.Notes
		now := time.Now()
		deal.Notes = notes
		deal.UpdatedAt = now

		if err := tx.Deal.Update(deal); err != nil {
			return apperrors.DatabaseError("failed to update deal", err)
		}

		if err := tx.Deal.AppendHistory(&models.DealHistoryEntry{
			DealID:       deal.ID,
			FieldChanged: models.HistoryFieldNotes,
			OldValue:     previousNotes,
			NewValue:     notes,
			ChangedBy:    ownerID,
			ChangedAt:    now,
		}); err != nil {
			return apperrors.DatabaseError("failed to record notes change", err)
		}

		updated = deal
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// History retrieves a deal's audit trail. Ownership is checked first so a
// foreign deal's history reads as not found.
func (s *dealServiceImpl) History(id, ownerID uuid.UUID) ([]models.DealHistoryEntry, error) {
	if _, err := s.repos.Deal.GetByID(id, ownerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("deal not found", nil)
		}
		return nil, apperrors.DatabaseError("failed to get deal", err)
	}

	entries, err := s.repos.Deal.History(id)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to get deal history", err)
	}
	return entries, nil
}
