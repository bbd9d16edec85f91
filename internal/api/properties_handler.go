package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harborpoint/dealflow/internal/models"
	"github.com/harborpoint/dealflow/internal/repository"
	"github.com/harborpoint/dealflow/internal/services"
)

// PropertiesHandler handles property snapshot endpoints
type PropertiesHandler struct {
	propertyService services.PropertyService
}

// NewPropertiesHandler creates a new properties handler with service injection
func NewPropertiesHandler(propertyService services.PropertyService) *PropertiesHandler {
	return &PropertiesHandler{propertyService: propertyService}
}

// GetProperty returns a single property snapshot
func (h *PropertiesHandler) GetProperty(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID"})
		return
	}

	property, err := h.propertyService.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"property": property})
}

// CreateProperty stores a new property snapshot
func (h *PropertiesHandler) CreateProperty(c *gin.Context) {
	var property models.Property
	if err := c.ShouldBindJSON(&property); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property: " + err.Error()})
		return
	}

	if err := h.propertyService.Create(&property); err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, gin.H{"property": property})
}

// UpdateProperty replaces a property snapshot
func (h *PropertiesHandler) UpdateProperty(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID"})
		return
	}

	var property models.Property
	if err := c.ShouldBindJSON(&property); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property: " + err.Error()})
		return
	}
	property.ID = id

	if err := h.propertyService.Update(&property); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"property": property})
}

// ListProperties returns property snapshots matching the query filters
func (h *PropertiesHandler) ListProperties(c *gin.Context) {
	filters := repository.PropertyFilters{
		DistressFlag: c.Query("distress_flag"),
	}

	if types, ok := c.GetQueryArray("property_type"); ok {
		filters.PropertyTypes = types
	}
	if v := c.Query("min_value"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid min_value"})
			return
		}
		filters.MinValue = &parsed
	}
	if v := c.Query("max_value"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid max_value"})
			return
		}
		filters.MaxValue = &parsed
	}
	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))
	filters.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	properties, err := h.propertyService.List(filters)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"properties": properties,
		"count":      len(properties),
	})
}
