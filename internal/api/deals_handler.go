package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harborpoint/dealflow/internal/auth"
	"github.com/harborpoint/dealflow/internal/middleware"
	"github.com/harborpoint/dealflow/internal/models"
	"github.com/harborpoint/dealflow/internal/repository"
	"github.com/harborpoint/dealflow/internal/services"
)

// DealsHandler handles pipeline endpoints. Every operation is scoped to
// the authenticated user.
type DealsHandler struct {
	dealService services.DealService
}

// NewDealsHandler creates a new deals handler with service injection
func NewDealsHandler(dealService services.DealService) *DealsHandler {
	return &DealsHandler{dealService: dealService}
}

func (h *DealsHandler) actor(c *gin.Context) (uuid.UUID, bool) {
	ownerID, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return uuid.Nil, false
	}
	return ownerID, true
}

// CreateDeal opens a new deal for a property
func (h *DealsHandler) CreateDeal(c *gin.Context) {
	ownerID, ok := h.actor(c)
	if !ok {
		return
	}

	var req models.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deal request: " + err.Error()})
		return
	}

	deal, err := h.dealService.Create(ownerID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, gin.H{"deal": deal})
}

// GetDeal returns one of the user's deals
func (h *DealsHandler) GetDeal(c *gin.Context) {
	ownerID, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deal ID"})
		return
	}

	deal, err := h.dealService.GetByID(id, ownerID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"deal": deal})
}

// ListDeals returns the user's deals, optionally filtered by stage
func (h *DealsHandler) ListDeals(c *gin.Context) {
	ownerID, ok := h.actor(c)
	if !ok {
		return
	}

	filters := repository.DealFilters{OwnerID: ownerID}
	if stage := c.Query("stage"); stage != "" {
		s := models.DealStage(stage)
		filters.Stage = &s
	}
	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))
	filters.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	deals, err := h.dealService.List(filters)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"deals": deals,
		"count": len(deals),
	})
}

// TransitionDeal moves a deal to a new pipeline stage
func (h *DealsHandler) TransitionDeal(c *gin.Context) {
	ownerID, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deal ID"})
		return
	}

	var req models.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transition request: " + err.Error()})
		return
	}

	result, err := h.dealService.Transition(id, ownerID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.RecordDealTransition(string(result.Stage))
	respondOK(c, gin.H{"deal": result})
}

// UpdateDealNotes replaces a deal's notes
func (h *DealsHandler) UpdateDealNotes(c *gin.Context) {
	ownerID, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deal ID"})
		return
	}

	var req models.UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notes request: " + err.Error()})
		return
	}

	deal, err := h.dealService.UpdateNotes(id, ownerID, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"deal": deal})
}

// GetDealHistory returns a deal's audit trail
func (h *DealsHandler) GetDealHistory(c *gin.Context) {
	ownerID, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deal ID"})
		return
	}

	entries, err := h.dealService.History(id, ownerID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"history": entries,
		"count":   len(entries),
	})
}
