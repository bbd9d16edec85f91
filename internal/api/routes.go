package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harborpoint/dealflow/internal/auth"
	"github.com/harborpoint/dealflow/internal/database"
	"github.com/harborpoint/dealflow/internal/logger"
	"github.com/harborpoint/dealflow/internal/middleware"
	"github.com/harborpoint/dealflow/internal/services"
	"github.com/harborpoint/dealflow/pkg/config"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, db *database.DB, cfg *config.Config, log logger.Logger) {
	svcs := services.NewServices(db.DB, cfg, log)

	authHandler := NewAuthHandler(svcs.Auth)
	propertiesHandler := NewPropertiesHandler(svcs.Property)
	rulesHandler := NewRulesHandler(svcs.Rule)
	evaluationHandler := NewEvaluationHandler(svcs.Evaluation)
	dealsHandler := NewDealsHandler(svcs.Deal)

	r.Use(middleware.RequestLoggingMiddleware(log))
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.CORSMiddleware(cfg))
	r.Use(middleware.InputValidationMiddleware())
	r.Use(middleware.RateLimitingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		if err := db.HealthCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now(),
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes
	public := r.Group("/api/v1")
	{
		public.POST("/auth/login", authHandler.Login)
		public.POST("/auth/register", authHandler.Register)
		public.POST("/auth/refresh", authHandler.RefreshToken)
	}

	// Protected routes
	protected := r.Group("/api/v1")
	protected.Use(auth.JWTMiddleware(cfg.JWTSecret))
	{
		// Property snapshots
		protected.GET("/properties", propertiesHandler.ListProperties)
		protected.POST("/properties", propertiesHandler.CreateProperty)
		protected.GET("/properties/:id", propertiesHandler.GetProperty)
		protected.PUT("/properties/:id", propertiesHandler.UpdateProperty)

		// Qualification and analysis
		protected.POST("/properties/:id/evaluate", evaluationHandler.EvaluateProperty)
		protected.POST("/properties/:id/analyze", evaluationHandler.AnalyzeProperty)
		protected.GET("/properties/:id/mao", evaluationHandler.GetMAO)

		// Pipeline
		protected.GET("/deals", dealsHandler.ListDeals)
		protected.POST("/deals", dealsHandler.CreateDeal)
		protected.GET("/deals/:id", dealsHandler.GetDeal)
		protected.POST("/deals/:id/transition", dealsHandler.TransitionDeal)
		protected.PATCH("/deals/:id/notes", dealsHandler.UpdateDealNotes)
		protected.GET("/deals/:id/history", dealsHandler.GetDealHistory)

		// Rule management, admin only
		admin := protected.Group("/rules")
		admin.Use(auth.RequireAdmin())
		{
			admin.GET("", rulesHandler.GetRules)
			admin.POST("", rulesHandler.CreateRule)
			admin.GET("/:id", rulesHandler.GetRule)
			admin.PUT("/:id", rulesHandler.UpdateRule)
			admin.DELETE("/:id", rulesHandler.DeleteRule)
		}
	}
}
