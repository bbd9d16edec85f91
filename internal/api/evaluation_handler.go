package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harborpoint/dealflow/internal/services"
)

// EvaluationHandler handles qualification and analysis endpoints
type EvaluationHandler struct {
	evaluationService services.EvaluationService
}

// NewEvaluationHandler creates a new evaluation handler with service injection
func NewEvaluationHandler(evaluationService services.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluationService: evaluationService}
}

// EvaluateProperty runs the enabled rule set against a property and
// returns the verdict with its full trace.
func (h *EvaluationHandler) EvaluateProperty(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID"})
		return
	}

	result, err := h.evaluationService.EvaluateProperty(id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"evaluation": result})
}

type analyzeRequest struct {
	RepairCosts   float64  `json:"repair_costs"`
	PurchasePrice *float64 `json:"purchase_price,omitempty"`
}

// AnalyzeProperty runs the deal analysis checks against a property
func (h *EvaluationHandler) AnalyzeProperty(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID"})
		return
	}

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid analysis request: " + err.Error()})
		return
	}

	result, err := h.evaluationService.AnalyzeProperty(id, req.RepairCosts, req.PurchasePrice)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"analysis": result})
}

// GetMAO computes the maximum allowable offer for a property. Repair
// costs come from the repair_costs query parameter.
func (h *EvaluationHandler) GetMAO(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID"})
		return
	}

	repairCosts, err := strconv.ParseFloat(c.DefaultQuery("repair_costs", "0"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid repair_costs"})
		return
	}

	result, err := h.evaluationService.CalculateMAO(id, repairCosts)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"mao": result})
}
