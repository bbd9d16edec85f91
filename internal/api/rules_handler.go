package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harborpoint/dealflow/internal/models"
	"github.com/harborpoint/dealflow/internal/services"
)

// RulesHandler handles qualification rule management endpoints. Routes
// using it are admin-only.
type RulesHandler struct {
	ruleService services.RuleService
}

// NewRulesHandler creates a new rules handler with service injection
func NewRulesHandler(ruleService services.RuleService) *RulesHandler {
	return &RulesHandler{ruleService: ruleService}
}

// GetRules returns every configured rule
func (h *RulesHandler) GetRules(c *gin.Context) {
	rules, err := h.ruleService.GetAll()
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"rules": rules,
		"count": len(rules),
	})
}

// GetRule returns a single rule
func (h *RulesHandler) GetRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rule ID"})
		return
	}

	rule, err := h.ruleService.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"rule": rule})
}

// CreateRule validates and stores a new rule
func (h *RulesHandler) CreateRule(c *gin.Context) {
	var rule models.QualificationRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rule: " + err.Error()})
		return
	}

	if err := h.ruleService.Create(&rule); err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, gin.H{"rule": rule})
}

// UpdateRule validates and persists rule changes
func (h *RulesHandler) UpdateRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rule ID"})
		return
	}

	var rule models.QualificationRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rule: " + err.Error()})
		return
	}
	rule.ID = id

	if err := h.ruleService.Update(&rule); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"rule": rule})
}

// DeleteRule removes a rule
func (h *RulesHandler) DeleteRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rule ID"})
		return
	}

	if err := h.ruleService.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"message": "Rule deleted"})
}
