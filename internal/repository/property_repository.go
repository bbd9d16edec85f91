package repository

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/harborpoint/dealflow/internal/models"
)

// propertyRepository implements PropertyRepository
type propertyRepository struct {
	db dbExecutor
}

// NewPropertyRepository creates a new property repository
func NewPropertyRepository(db dbExecutor) PropertyRepository {
	return &propertyRepository{db: db}
}

const propertyColumns = `id, address, city, state, zip, property_type,
	estimated_value, last_sale_price, tax_assessed_value, annual_property_tax,
	equity_percent, debt_owed, interest_rate, days_on_market, year_built,
	square_footage, unit_count, distress_signals, raw_data, created_at, updated_at`

// GetByID retrieves a property by ID
func (r *propertyRepository) GetByID(id uuid.UUID) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`

	var p models.Property
	err := r.db.QueryRow(query, id).Scan(
		&p.ID, &p.Address, &p.City, &p.State, &p.Zip, &p.PropertyType,
		&p.EstimatedValue, &p.LastSalePrice, &p.TaxAssessedValue, &p.AnnualPropertyTax,
		&p.EquityPercent, &p.DebtOwed, &p.InterestRate, &p.DaysOnMarket, &p.YearBuilt,
		&p.SquareFootage, &p.UnitCount, &p.DistressSignals, &p.RawData,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	return &p, nil
}

// Create inserts a new property snapshot
func (r *propertyRepository) Create(p *models.Property) error {
	query := `
		INSERT INTO properties (id, address, city, state, zip, property_type,
			estimated_value, last_sale_price, tax_assessed_value, annual_property_tax,
			equity_percent, debt_owed, interest_rate, days_on_market, year_built,
			square_footage, unit_count, distress_signals, raw_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	now := time.Now()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.Exec(query,
		p.ID, p.Address, p.City, p.State, p.Zip, p.PropertyType,
		p.EstimatedValue, p.LastSalePrice, p.TaxAssessedValue, p.AnnualPropertyTax,
		p.EquityPercent, p.DebtOwed, p.InterestRate, p.DaysOnMarket, p.YearBuilt,
		p.SquareFootage, p.UnitCount, p.DistressSignals, p.RawData,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}
	return nil
}

// Update persists an updated snapshot
func (r *propertyRepository) Update(p *models.Property) error {
	query := `
		UPDATE properties
		SET address = $1, city = $2, state = $3, zip = $4, property_type = $5,
			estimated_value = $6, last_sale_price = $7, tax_assessed_value = $8,
			annual_property_tax = $9, equity_percent = $10, debt_owed = $11,
			interest_rate = $12, days_on_market = $13, year_built = $14,
			square_footage = $15, unit_count = $16, distress_signals = $17,
			raw_data = $18, updated_at = $19
		WHERE id = $20
	`

	p.UpdatedAt = time.Now()
	result, err := r.db.Exec(query,
		p.Address, p.City, p.State, p.Zip, p.PropertyType,
		p.EstimatedValue, p.LastSalePrice, p.TaxAssessedValue,
		p.AnnualPropertyTax, p.EquityPercent, p.DebtOwed,
		p.InterestRate, p.DaysOnMarket, p.YearBuilt,
		p.SquareFootage, p.UnitCount, p.DistressSignals,
		p.RawData, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List retrieves properties matching the filters, newest first.
func (r *propertyRepository) List(filters PropertyFilters) ([]models.Property, error) {
	builder := sq.Select(propertyColumns).
		From("properties").
		OrderBy("created_at DESC").
		PlaceholderFormat(sq.Dollar)

	if len(filters.PropertyTypes) > 0 {
		builder = builder.Where(sq.Eq{"property_type": filters.PropertyTypes})
	}
	if filters.MinValue != nil {
		builder = builder.Where(sq.GtOrEq{"estimated_value": *filters.MinValue})
	}
	if filters.MaxValue != nil {
		builder = builder.Where(sq.LtOrEq{"estimated_value": *filters.MaxValue})
	}
	if filters.DistressFlag != "" {
		// JSONB flag lookup: the flag must be present and true.
		builder = builder.Where("(distress_signals ->> ?)::boolean IS TRUE", filters.DistressFlag)
	}
	if filters.Limit > 0 {
		builder = builder.Limit(uint64(filters.Limit))
	}
	if filters.Offset > 0 {
		builder = builder.Offset(uint64(filters.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build property query: %w", err)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	var properties []models.Property
	for rows.Next() {
		var p models.Property
		err := rows.Scan(
			&p.ID, &p.Address, &p.City, &p.State, &p.Zip, &p.PropertyType,
			&p.EstimatedValue, &p.LastSalePrice, &p.TaxAssessedValue, &p.AnnualPropertyTax,
			&p.EquityPercent, &p.DebtOwed, &p.InterestRate, &p.DaysOnMarket, &p.YearBuilt,
			&p.SquareFootage, &p.UnitCount, &p.DistressSignals, &p.RawData,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}
