package services

import (
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	apperrors "github.com/harborpoint/dealflow/internal/errors"
	"github.com/harborpoint/dealflow/internal/models"
	"github.com/harborpoint/dealflow/internal/repository"
)

// ruleDocumentSchema constrains the shape of a rule document before the
// finer operator/value pairing checks run.
const ruleDocumentSchema = `{
	"type": "object",
	"required": ["name", "rule_kind", "field_path", "operator", "weight"],
	"properties": {
		"name": {"type": "string", "minLength": 1, "maxLength": 200},
		"rule_kind": {"enum": ["GATE", "SCORE"]},
		"field_path": {"type": "string", "minLength": 1, "pattern": "^[A-Za-z0-9_]+(\\.[A-Za-z0-9_]+)*$"},
		"operator": {"enum": ["GREATER_THAN", "LESS_THAN", "EQUALS", "IN_SET", "HAS_FLAG", "IN_RANGE", "LACKS_FLAG"]},
		"weight": {"type": "integer", "minimum": 0},
		"creative_finance_subtype": {"type": "string"},
		"enabled": {"type": "boolean"},
		"sequence": {"type": "integer", "minimum": 0}
	}
}`

// ruleServiceImpl implements RuleService
type ruleServiceImpl struct {
	repos  *repository.Repositories
	schema *gojsonschema.Schema
}

// newRuleService creates a new rule service implementation
func newRuleService(repos *repository.Repositories) RuleService {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(ruleDocumentSchema))
	if err != nil {
		// The schema is a compile-time constant; failing to parse it is a
		// programming error.
		panic(err)
	}
	return &ruleServiceImpl{repos: repos, schema: schema}
}

// GetByID retrieves a qualification rule
func (s *ruleServiceImpl) GetByID(id uuid.UUID) (*models.QualificationRule, error) {
	rule, err := s.repos.Rule.GetByID(id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("rule not found", nil)
		}
		return nil, apperrors.DatabaseError("failed to get rule", err)
	}
	return rule, nil
}

// GetAll retrieves every configured rule
func (s *ruleServiceImpl) GetAll() ([]models.QualificationRule, error) {
	rules, err := s.repos.Rule.GetAll()
	if err != nil {
		return nil, apperrors.DatabaseError("failed to list rules", err)
	}
	return rules, nil
}

// Create validates and stores a new qualification rule
func (s *ruleServiceImpl) Create(rule *models.QualificationRule) error {
	if err := s.validate(rule); err != nil {
		return err
	}
	if err := s.repos.Rule.Create(rule); err != nil {
		return apperrors.DatabaseError("failed to create rule", err)
	}
	return nil
}

// Update validates and persists rule changes
func (s *ruleServiceImpl) Update(rule *models.QualificationRule) error {
	if err := s.validate(rule); err != nil {
		return err
	}
	if err := s.repos.Rule.Update(rule); err != nil {
		if err == sql.ErrNoRows {
			return apperrors.NotFound("rule not found", nil)
		}
		return apperrors.DatabaseError("failed to update rule", err)
	}
	return nil
}

// Delete removes a qualification rule
func (s *ruleServiceImpl) Delete(id uuid.UUID) error {
	if err := s.repos.Rule.Delete(id); err != nil {
		if err == sql.ErrNoRows {
			return apperrors.NotFound("rule not found", nil)
		}
		return apperrors.DatabaseError("failed to delete rule", err)
	}
	return nil
}

// validate runs the JSON Schema check first, then the operator/value
// pairing rules the schema cannot express.
func (s *ruleServiceImpl) validate(rule *models.QualificationRule) error {
	result, err := s.schema.Validate(gojsonschema.NewGoLoader(rule))
	if err != nil {
		return apperrors.ValidationError("failed to validate rule", err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return apperrors.ValidationError("invalid rule document", nil).
			WithDetails(strings.Join(problems, "; "))
	}

	if err := rule.ValidateShape(); err != nil {
		return apperrors.ValidationError(err.Error(), nil)
	}
	return nil
}
