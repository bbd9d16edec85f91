package services

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/harborpoint/dealflow/internal/analysis"
	"github.com/harborpoint/dealflow/internal/logger"
	"github.com/harborpoint/dealflow/internal/models"
	"github.com/harborpoint/dealflow/internal/repository"
	"github.com/harborpoint/dealflow/internal/scoring"
	"github.com/harborpoint/dealflow/pkg/config"
)

// Services contains all application services
type Services struct {
	Auth       AuthService
	Property   PropertyService
	Rule       RuleService
	Evaluation EvaluationService
	Deal       DealService
}

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Login(email, password string) (*models.LoginResponse, error)
	Register(req *models.CreateUserRequest) (*models.User, error)
	ValidateToken(token string) (*models.User, error)
	RefreshToken(token string) (*models.LoginResponse, error)
}

// PropertyService defines the interface for property snapshot business logic
type PropertyService interface {
	GetByID(id uuid.UUID) (*models.Property, error)
	Create(property *models.Property) error
	Update(property *models.Property) error
	List(filters repository.PropertyFilters) ([]models.Property, error)
}

// RuleService defines the interface for qualification rule management
type RuleService interface {
	GetByID(id uuid.UUID) (*models.QualificationRule, error)
	GetAll() ([]models.QualificationRule, error)
	Create(rule *models.QualificationRule) error
	Update(rule *models.QualificationRule) error
	Delete(id uuid.UUID) error
}

// EvaluationService defines the interface for running the qualification
// engine and the deal analysis checks against stored properties.
type EvaluationService interface {
	EvaluateProperty(propertyID uuid.UUID) (*scoring.EvaluationResult, error)
	AnalyzeProperty(propertyID uuid.UUID, repairCosts float64, purchasePrice *float64) (*analysis.DealAnalysis, error)
	CalculateMAO(propertyID uuid.UUID, repairCosts float64) (*scoring.MAOResult, error)
}

// DealService defines the interface for pipeline business logic. All
// operations are scoped to the acting user.
type DealService interface {
	Create(ownerID uuid.UUID, req *models.CreateDealRequest) (*models.Deal, error)
	GetByID(id, ownerID uuid.UUID) (*models.Deal, error)
	List(filters repository.DealFilters) ([]models.Deal, error)
	Transition(id, ownerID uuid.UUID, req *models.TransitionRequest) (*models.TransitionResult, error)
	UpdateNotes(id, ownerID uuid.UUID, notes string) (*models.Deal, error)
	History(id, ownerID uuid.UUID) ([]models.DealHistoryEntry, error)
}

// NewServices creates a new Services instance with all dependencies
func NewServices(db *sql.DB, cfg *config.Config, log logger.Logger) *Services {
	repos := repository.NewRepositories(db)

	return &Services{
		Auth:       newAuthService(repos, cfg),
		Property:   newPropertyService(repos),
		Rule:       newRuleService(repos),
		Evaluation: newEvaluationService(repos, log),
		Deal:       newDealService(repos, log),
	}
}
