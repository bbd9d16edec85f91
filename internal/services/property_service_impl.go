package services

import (
	"database/sql"

	"github.com/google/uuid"

	apperrors "github.com/harborpoint/dealflow/internal/errors"
	"github.com/harborpoint/dealflow/internal/models"
	"github.com/harborpoint/dealflow/internal/repository"
)

// propertyServiceImpl implements PropertyService
type propertyServiceImpl struct {
	repos *repository.Repositories
}

// newPropertyService creates a new property service implementation
func newPropertyService(repos *repository.Repositories) PropertyService {
	return &propertyServiceImpl{repos: repos}
}

// GetByID retrieves a property snapshot
func (s *propertyServiceImpl) GetByID(id uuid.UUID) (*models.Property, error) {
	property, err := s.repos.Property.GetByID(id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("property not found", nil)
		}
		return nil, apperrors.DatabaseError("failed to get property", err)
	}
	return property, nil
}

// Create stores a new property snapshot
func (s *propertyServiceImpl) Create(property *models.Property) error {
	if property.Address == "" {
		return apperrors.ValidationError("address is required", nil)
	}
	if err := s.repos.Property.Create(property); err != nil {
		return apperrors.DatabaseError("failed to create property", err)
	}
	return nil
}

// Update replaces a property snapshot
func (s *propertyServiceImpl) Update(property *models.Property) error {
	if property.Address == "" {
		return apperrors.ValidationError("address is required", nil)
	}
	if err := s.repos.Property.Update(property); err != nil {
		if err == sql.ErrNoRows {
			return apperrors.NotFound("property not found", nil)
		}
		return apperrors.DatabaseError("failed to update property", err)
	}
	return nil
}

// List retrieves properties matching the filters
func (s *propertyServiceImpl) List(filters repository.PropertyFilters) ([]models.Property, error) {
	if filters.Limit <= 0 || filters.Limit > 500 {
		filters.Limit = 100
	}
	properties, err := s.repos.Property.List(filters)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to list properties", err)
	}
	return properties, nil
}
