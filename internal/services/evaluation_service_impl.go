package services

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/harborpoint/dealflow/internal/analysis"
	apperrors "github.com/harborpoint/dealflow/internal/errors"
	"github.com/harborpoint/dealflow/internal/logger"
	"github.com/harborpoint/dealflow/internal/repository"
	"github.com/harborpoint/dealflow/internal/scoring"
)

// evaluationServiceImpl implements EvaluationService
type evaluationServiceImpl struct {
	repos  *repository.Repositories
	engine *scoring.Engine
	log    logger.Logger
}

// newEvaluationService creates a new evaluation service implementation
func newEvaluationService(repos *repository.Repositories, log logger.Logger) EvaluationService {
	return &evaluationServiceImpl{
		repos:  repos,
		engine: scoring.NewEngine(),
		log:    log,
	}
}

// EvaluateProperty runs the enabled rule set against a stored property
// snapshot and returns the verdict with its full trace.
func (s *evaluationServiceImpl) EvaluateProperty(propertyID uuid.UUID) (*scoring.EvaluationResult, error) {
	property, err := s.repos.Property.GetByID(propertyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("property not found", nil)
		}
		return nil, apperrors.DatabaseError("failed to get property", err)
	}

	rules, err := s.repos.Rule.GetEnabled()
	if err != nil {
		return nil, apperrors.DatabaseError("failed to load rules", err)
	}

	result := s.engine.Evaluate(property.Snapshot(), rules)

	s.log.Info("property evaluated", map[string]interface{}{
		"property_id": propertyID.String(),
		"status":      string(result.Status),
		"score":       result.Score,
		"rules":       len(rules),
	})

	return result, nil
}

// AnalyzeProperty runs the deal analysis checks against a stored property.
func (s *evaluationServiceImpl) AnalyzeProperty(propertyID uuid.UUID, repairCosts float64, purchasePrice *float64) (*analysis.DealAnalysis, error) {
	if repairCosts < 0 {
		return nil, apperrors.ValidationError("repair costs cannot be negative", nil)
	}

	property, err := s.repos.Property.GetByID(propertyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("property not found", nil)
		}
		return nil, apperrors.DatabaseError("failed to get property", err)
	}

	return analysis.AnalyzeDeal(property, repairCosts, purchasePrice), nil
}

// CalculateMAO computes the maximum allowable offer for a stored property.
func (s *evaluationServiceImpl) CalculateMAO(propertyID uuid.UUID, repairCosts float64) (*scoring.MAOResult, error) {
	if repairCosts < 0 {
		return nil, apperrors.ValidationError("repair costs cannot be negative", nil)
	}

	property, err := s.repos.Property.GetByID(propertyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("property not found", nil)
		}
		return nil, apperrors.DatabaseError("failed to get property", err)
	}

	if property.EstimatedValue == nil {
		return nil, apperrors.ValidationError("property has no estimated value; MAO requires an ARV", nil)
	}

	result := scoring.CalculateMAO(*property.EstimatedValue, repairCosts)
	return &result, nil
}
