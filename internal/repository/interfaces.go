package repository

import (
	"github.com/google/uuid"

	"github.com/harborpoint/dealflow/internal/models"
)

// PropertyRepository defines the interface for property snapshot access.
type PropertyRepository interface {
	GetByID(id uuid.UUID) (*models.Property, error)
	Create(property *models.Property) error
	Update(property *models.Property) error
	List(filters PropertyFilters) ([]models.Property, error)
}

// RuleRepository defines the interface for qualification rule access.
type RuleRepository interface {
	GetByID(id uuid.UUID) (*models.QualificationRule, error)
	GetAll() ([]models.QualificationRule, error)
	GetEnabled() ([]models.QualificationRule, error)
	Create(rule *models.QualificationRule) error
	Update(rule *models.QualificationRule) error
	Delete(id uuid.UUID) error
}

// DealRepository defines the interface for deal and history access. Reads
// are scoped to the owning actor; a deal owned by someone else behaves
// exactly like a missing one.
type DealRepository interface {
	GetByID(id, ownerID uuid.UUID) (*models.Deal, error)
	// GetByIDForUpdate row-locks the deal so the stage read and the stage
	// write of one transition are consistent under concurrency. Only
	// meaningful inside a transaction.
	GetByIDForUpdate(id, ownerID uuid.UUID) (*models.Deal, error)
	Create(deal *models.Deal) error
	Update(deal *models.Deal) error
	List(filters DealFilters) ([]models.Deal, error)
	AppendHistory(entry *models.DealHistoryEntry) error
	History(dealID uuid.UUID) ([]models.DealHistoryEntry, error)
}

// UserRepository defines the interface for user data access.
type UserRepository interface {
	GetByID(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Create(user *models.User) error
}

// TransactionManager defines the interface for database transaction
// management. Everything the callback does commits or rolls back as one
// unit.
type TransactionManager interface {
	WithTransaction(fn func(repos *Repositories) error) error
}

// Repositories groups all repository interfaces
type Repositories struct {
	Property PropertyRepository
	Rule     RuleRepository
	Deal     DealRepository
	User     UserRepository
	Tx       TransactionManager
}

// PropertyFilters defines filters for querying properties
type PropertyFilters struct {
	PropertyTypes []string
	MinValue      *float64
	MaxValue      *float64
	DistressFlag  string
	Limit         int
	Offset        int
}

// DealFilters defines filters for querying deals
type DealFilters struct {
	OwnerID uuid.UUID
	Stage   *models.DealStage
	Limit   int
	Offset  int
}
