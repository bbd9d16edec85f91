package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harborpoint/dealflow/internal/models"
)

// ruleRepository implements RuleRepository
type ruleRepository struct {
	db dbExecutor
}

// NewRuleRepository creates a new rule repository
func NewRuleRepository(db dbExecutor) RuleRepository {
	return &ruleRepository{db: db}
}

const ruleColumns = `id, name, rule_kind, field_path, operator, comparison_value,
	weight, creative_finance_subtype, enabled, sequence, created_at, updated_at`

// GetByID retrieves a qualification rule by ID
func (r *ruleRepository) GetByID(id uuid.UUID) (*models.QualificationRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM qualification_rules WHERE id = $1`

	rule, err := scanRule(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get qualification rule: %w", err)
	}
	return rule, nil
}

// GetAll retrieves every configured rule in sequence order.
func (r *ruleRepository) GetAll() ([]models.QualificationRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM qualification_rules ORDER BY sequence, created_at`
	return r.queryRules(query)
}

// GetEnabled retrieves the active rule set in sequence order.
func (r *ruleRepository) GetEnabled() ([]models.QualificationRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM qualification_rules WHERE enabled = true ORDER BY sequence, created_at`
	return r.queryRules(query)
}

func (r *ruleRepository) queryRules(query string) ([]models.QualificationRule, error) {
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query qualification rules: %w", err)
	}
	defer rows.Close()

	var rules []models.QualificationRule
	for rows.Next() {
		var rule models.QualificationRule
		var subtype sql.NullString
		err := rows.Scan(
			&rule.ID, &rule.Name, &rule.RuleKind, &rule.FieldPath, &rule.Operator,
			&rule.ComparisonValue, &rule.Weight, &subtype, &rule.Enabled,
			&rule.Sequence, &rule.CreatedAt, &rule.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan qualification rule: %w", err)
		}
		if subtype.Valid {
			rule.CreativeFinanceSubtype = models.CreativeFinanceSubtype(subtype.String)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func scanRule(row *sql.Row) (*models.QualificationRule, error) {
	var rule models.QualificationRule
	var subtype sql.NullString
	err := row.Scan(
		&rule.ID, &rule.Name, &rule.RuleKind, &rule.FieldPath, &rule.Operator,
		&rule.ComparisonValue, &rule.Weight, &subtype, &rule.Enabled,
		&rule.Sequence, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if subtype.Valid {
		rule.CreativeFinanceSubtype = models.CreativeFinanceSubtype(subtype.String)
	}
	return &rule, nil
}

// Create inserts a new qualification rule
func (r *ruleRepository) Create(rule *models.QualificationRule) error {
	query := `
		INSERT INTO qualification_rules (id, name, rule_kind, field_path, operator,
			comparison_value, weight, creative_finance_subtype, enabled, sequence, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	now := time.Now()
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	rule.CreatedAt = now
	rule.UpdatedAt = now

	_, err := r.db.Exec(query,
		rule.ID, rule.Name, rule.RuleKind, rule.FieldPath, rule.Operator,
		rule.ComparisonValue, rule.Weight, nullableSubtype(rule.CreativeFinanceSubtype),
		rule.Enabled, rule.Sequence, rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create qualification rule: %w", err)
	}
	return nil
}

// Update persists rule changes
func (r *ruleRepository) Update(rule *models.QualificationRule) error {
	query := `
		UPDATE qualification_rules
		SET name = $1, rule_kind = $2, field_path = $3, operator = $4,
			comparison_value = $5, weight = $6, creative_finance_subtype = $7,
			enabled = $8, sequence = $9, updated_at = $10
		WHERE id = $11
	`

	rule.UpdatedAt = time.Now()
	result, err := r.db.Exec(query,
		rule.Name, rule.RuleKind, rule.FieldPath, rule.Operator,
		rule.ComparisonValue, rule.Weight, nullableSubtype(rule.CreativeFinanceSubtype),
		rule.Enabled, rule.Sequence, rule.UpdatedAt, rule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update qualification rule: %w", err)
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

// Delete removes a qualification rule
func (r *ruleRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM qualification_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete qualification rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func nullableSubtype(subtype models.CreativeFinanceSubtype) interface{} {
	if subtype == "" {
		return nil
	}
	return string(subtype)
}
