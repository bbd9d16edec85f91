package repository

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/harborpoint/dealflow/internal/models"
)

// dealRepository implements DealRepository
type dealRepository struct {
	db dbExecutor
}

// NewDealRepository creates a new deal repository
func NewDealRepository(db dbExecutor) DealRepository {
	return &dealRepository{db: db}
}

const dealColumns = `id, property_id, owner_id, current_stage, estimated_profit, closed_date, notes, created_at, updated_at`

// GetByID retrieves a deal scoped to its owner. A deal owned by a
// different actor scans as sql.ErrNoRows, so callers cannot tell foreign
// deals from missing ones.
func (r *dealRepository) GetByID(id, ownerID uuid.UUID) (*models.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE id = $1 AND owner_id = $2`
	return r.scanDeal(r.db.QueryRow(query, id, ownerID))
}

// GetByIDForUpdate is GetByID with a row lock. Concurrent transitions on
// the same deal serialize here, so the stage read and the stage write stay
// consistent.
func (r *dealRepository) GetByIDForUpdate(id, ownerID uuid.UUID) (*models.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE id = $1 AND owner_id = $2 FOR UPDATE`
	return r.scanDeal(r.db.QueryRow(query, id, ownerID))
}

func (r *dealRepository) scanDeal(row *sql.Row) (*models.Deal, error) {
	var deal models.Deal
	err := row.Scan(
		&deal.ID, &deal.PropertyID, &deal.OwnerID, &deal.CurrentStage,
		&deal.EstimatedProfit, &deal.ClosedDate, &deal.Notes,
		&deal.CreatedAt, &deal.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to scan deal: %w", err)
	}
	return &deal, nil
}

// Create inserts a new deal
func (r *dealRepository) Create(deal *models.Deal) error {
	query := `
		INSERT INTO deals (id, property_id, owner_id, current_stage, estimated_profit, closed_date, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	now := time.Now()
	if deal.ID == uuid.Nil {
		deal.ID = uuid.New()
	}
	deal.CreatedAt = now
	deal.UpdatedAt = now

	_, err := r.db.Exec(query,
		deal.ID, deal.PropertyID, deal.OwnerID, deal.CurrentStage,
		deal.EstimatedProfit, deal.ClosedDate, deal.Notes,
		deal.CreatedAt, deal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create deal: %w", err)
	}
	return nil
}

// Update persists the deal's mutable fields
func (r *dealRepository) Update(deal *models.Deal) error {
	query := `
		UPDATE deals
		SET current_stage = $1, estimated_profit = $2, closed_date = $3, notes = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := r.db.Exec(query,
		deal.CurrentStage, deal.EstimatedProfit, deal.ClosedDate,
		deal.Notes, deal.UpdatedAt, deal.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update deal: %w", err)
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

// List retrieves deals matching the filters, newest first.
func (r *dealRepository) List(filters DealFilters) ([]models.Deal, error) {
	builder := sq.Select(dealColumns).
		From("deals").
		Where(sq.Eq{"owner_id": filters.OwnerID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(sq.Dollar)

	if filters.Stage != nil {
		builder = builder.Where(sq.Eq{"current_stage": *filters.Stage})
	}
	if filters.Limit > 0 {
		builder = builder.Limit(uint64(filters.Limit))
	}
	if filters.Offset > 0 {
		builder = builder.Offset(uint64(filters.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build deal query: %w", err)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query deals: %w", err)
	}
	defer rows.Close()

	var deals []models.Deal
	for rows.Next() {
		var deal models.Deal
		err := rows.Scan(
			&deal.ID, &deal.PropertyID, &deal.OwnerID, &deal.CurrentStage,
			&deal.EstimatedProfit, &deal.ClosedDate, &deal.Notes,
			&deal.CreatedAt, &deal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deal: %w", err)
		}
		deals = append(deals, deal)
	}
	return deals, rows.Err()
}

// AppendHistory inserts one audit record. History rows are never updated
// or deleted.
func (r *dealRepository) AppendHistory(entry *models.DealHistoryEntry) error {
	query := `
		INSERT INTO deal_history (id, deal_id, field_changed, old_value, new_value, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.ChangedAt.IsZero() {
		entry.ChangedAt = time.Now()
	}

	_, err := r.db.Exec(query,
		entry.ID, entry.DealID, entry.FieldChanged,
		entry.OldValue, entry.NewValue, entry.ChangedBy, entry.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append deal history: %w", err)
	}
	return nil
}

// History retrieves a deal's audit trail, newest first.
func (r *dealRepository) History(dealID uuid.UUID) ([]models.DealHistoryEntry, error) {
	query := `
		SELECT id, deal_id, field_changed, old_value, new_value, changed_by, changed_at
		FROM deal_history
		WHERE deal_id = $1
		ORDER BY changed_at DESC, id
	`

	rows, err := r.db.Query(query, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to query deal history: %w", err)
	}
	defer rows.Close()

	var entries []models.DealHistoryEntry
	for rows.Next() {
		var entry models.DealHistoryEntry
		err := rows.Scan(
			&entry.ID, &entry.DealID, &entry.FieldChanged,
			&entry.OldValue, &entry.NewValue, &entry.ChangedBy, &entry.ChangedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deal history: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
