package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborpoint/dealflow/internal/auth"
	apperrors "github.com/harborpoint/dealflow/internal/errors"
	"github.com/harborpoint/dealflow/internal/models"
	"github.com/harborpoint/dealflow/internal/repository"
)

// stubDealService lets each test script the service layer.
type stubDealService struct {
	createFn      func(ownerID uuid.UUID, req *models.CreateDealRequest) (*models.Deal, error)
	getFn         func(id, ownerID uuid.UUID) (*models.Deal, error)
	listFn        func(filters repository.DealFilters) ([]models.Deal, error)
	transitionFn  func(id, ownerID uuid.UUID, req *models.TransitionRequest) (*models.TransitionResult, error)
	updateNotesFn func(id, ownerID uuid.UUID, notes string) (*models.Deal, error)
	historyFn     func(id, ownerID uuid.UUID) ([]models.DealHistoryEntry, error)
}

func (s *stubDealService) Create(ownerID uuid.UUID, req *models.CreateDealRequest) (*models.Deal, error) {
	return s.createFn(ownerID, req)
}

func (s *stubDealService) GetByID(id, ownerID uuid.UUID) (*models.Deal, error) {
	return s.getFn(id, ownerID)
}

func (s *stubDealService) List(filters repository.DealFilters) ([]models.Deal, error) {
	return s.listFn(filters)
}

func (s *stubDealService) Transition(id, ownerID uuid.UUID, req *models.TransitionRequest) (*models.TransitionResult, error) {
	return s.transitionFn(id, ownerID, req)
}

func (s *stubDealService) UpdateNotes(id, ownerID uuid.UUID, notes string) (*models.Deal, error) {
	return s.updateNotesFn(id, ownerID, notes)
}

func (s *stubDealService) History(id, ownerID uuid.UUID) ([]models.DealHistoryEntry, error) {
	return s.historyFn(id, ownerID)
}

func newDealsRouter(svc *stubDealService, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	handler := NewDealsHandler(svc)
	authed := r.Group("/", func(c *gin.Context) {
		if userID != uuid.Nil {
			c.Set(auth.UserIDKey, userID)
		}
		c.Next()
	})
	authed.POST("/deals", handler.CreateDeal)
	authed.GET("/deals/:id", handler.GetDeal)
	authed.POST("/deals/:id/transition", handler.TransitionDeal)
	authed.PATCH("/deals/:id/notes", handler.UpdateDealNotes)
	authed.GET("/deals/:id/history", handler.GetDealHistory)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTransitionDealReturnsNewStage(t *testing.T) {
	dealID, userID := uuid.New(), uuid.New()
	svc := &stubDealService{
		transitionFn: func(id, ownerID uuid.UUID, req *models.TransitionRequest) (*models.TransitionResult, error) {
			assert.Equal(t, dealID, id)
			assert.Equal(t, userID, ownerID)
			assert.Equal(t, models.StageAnalyzing, req.TargetStage)
			return &models.TransitionResult{
				ID:        id,
				Stage:     models.StageAnalyzing,
				UpdatedAt: time.Now(),
			}, nil
		},
	}
	r := newDealsRouter(svc, userID)

	w := postJSON(t, r, "/deals/"+dealID.String()+"/transition", gin.H{
		"target_stage": "ANALYZING",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ANALYZING"`)
}

func TestTransitionDealInvalidTransitionMapsToConflict(t *testing.T) {
	svc := &stubDealService{
		transitionFn: func(id, ownerID uuid.UUID, req *models.TransitionRequest) (*models.TransitionResult, error) {
			return nil, apperrors.InvalidTransition("cannot move from SOURCED to CLOSED; legal next stages: ANALYZING, REJECTED")
		},
	}
	r := newDealsRouter(svc, uuid.New())

	w := postJSON(t, r, "/deals/"+uuid.NewString()+"/transition", gin.H{
		"target_stage": "CLOSED",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TRANSITION")
	assert.Contains(t, w.Body.String(), "legal next stages")
}

func TestTransitionDealMissingFieldsMapsToBadRequest(t *testing.T) {
	svc := &stubDealService{
		transitionFn: func(id, ownerID uuid.UUID, req *models.TransitionRequest) (*models.TransitionResult, error) {
			return nil, apperrors.MissingFields("transition QUALIFIED to UNDER_CONTRACT requires: estimatedProfit")
		},
	}
	r := newDealsRouter(svc, uuid.New())

	w := postJSON(t, r, "/deals/"+uuid.NewString()+"/transition", gin.H{
		"target_stage": "UNDER_CONTRACT",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_FIELDS")
	assert.Contains(t, w.Body.String(), "estimatedProfit")
}

func TestTransitionDealNotFoundMapsTo404(t *testing.T) {
	svc := &stubDealService{
		transitionFn: func(id, ownerID uuid.UUID, req *models.TransitionRequest) (*models.TransitionResult, error) {
			return nil, apperrors.NotFound("deal not found", nil)
		},
	}
	r := newDealsRouter(svc, uuid.New())

	w := postJSON(t, r, "/deals/"+uuid.NewString()+"/transition", gin.H{
		"target_stage": "ANALYZING",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTransitionDealWithoutAuthReturns401(t *testing.T) {
	svc := &stubDealService{}
	r := newDealsRouter(svc, uuid.Nil)

	w := postJSON(t, r, "/deals/"+uuid.NewString()+"/transition", gin.H{
		"target_stage": "ANALYZING",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTransitionDealRejectsMalformedID(t *testing.T) {
	svc := &stubDealService{}
	r := newDealsRouter(svc, uuid.New())

	w := postJSON(t, r, "/deals/not-a-uuid/transition", gin.H{
		"target_stage": "ANALYZING",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateDealReturnsCreated(t *testing.T) {
	propertyID, userID := uuid.New(), uuid.New()
	svc := &stubDealService{
		createFn: func(ownerID uuid.UUID, req *models.CreateDealRequest) (*models.Deal, error) {
			assert.Equal(t, userID, ownerID)
			return &models.Deal{
				ID:           uuid.New(),
				PropertyID:   req.PropertyID,
				OwnerID:      ownerID,
				CurrentStage: models.StageSourced,
			}, nil
		},
	}
	r := newDealsRouter(svc, userID)

	w := postJSON(t, r, "/deals", gin.H{"property_id": propertyID.String()})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"SOURCED"`)
}

func TestGetDealHistoryReturnsEntries(t *testing.T) {
	dealID, userID := uuid.New(), uuid.New()
	svc := &stubDealService{
		historyFn: func(id, ownerID uuid.UUID) ([]models.DealHistoryEntry, error) {
			return []models.DealHistoryEntry{
				{
					ID:           uuid.New(),
					DealID:       id,
					FieldChanged: models.HistoryFieldStatus,
					OldValue:     "SOURCED",
					NewValue:     "ANALYZING",
					ChangedBy:    ownerID,
					ChangedAt:    time.Now(),
				},
			}, nil
		},
	}
	r := newDealsRouter(svc, userID)

	req := httptest.NewRequest(http.MethodGet, "/deals/"+dealID.String()+"/history", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
	assert.Contains(t, w.Body.String(), `"status"`)
}
