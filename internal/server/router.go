package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/clipworks/shortform-backend/internal/handlers"
	"github.com/clipworks/shortform-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler     *handlers.AuthHandler
	AuthMiddleware  *middleware.AuthMiddleware
	UserHandler     *handlers.UserHandler
	ShortHandler    *handlers.ShortHandler
	WorkflowHandler *handlers.WorkflowHandler
	DraftHandler    *handlers.DraftHandler
	PaymentHandler  *handlers.PaymentHandler
	ReviewHandler   *handlers.ReviewHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/api/register", cfg.AuthHandler.Register)
	router.POST("/api/login", cfg.AuthHandler.Login)

	// Protected
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	protected.GET("/user", cfg.UserHandler.GetMe)

	// Shorts
	protected.POST("/shorts", cfg.ShortHandler.Create)
	protected.GET("/shorts", cfg.ShortHandler.List)
	protected.GET("/shorts/:id", cfg.ShortHandler.Get)
	protected.DELETE("/shorts/:id", cfg.ShortHandler.Delete)
	protected.POST("/shorts/:id/assignments", cfg.ShortHandler.AssignRole)
	protected.POST("/shorts/:id/files", cfg.ShortHandler.UploadFile)
	protected.GET("/shorts/:id/files", cfg.ShortHandler.ListFiles)
	protected.GET("/shorts/:id/files/:type/url", cfg.ShortHandler.DownloadURL)
	protected.PUT("/users/:id/rates", cfg.ShortHandler.SetRate)
	protected.GET("/users/:id/rates", cfg.ShortHandler.ListRates)

	// Workflow
	protected.POST("/shorts/:id/transition", cfg.WorkflowHandler.Transition)
	protected.POST("/shorts/:id/complete", cfg.WorkflowHandler.MarkRoleComplete)

	// Script drafts
	protected.GET("/drafts/checklist", cfg.DraftHandler.Checklist)
	protected.POST("/drafts", cfg.DraftHandler.Create)
	protected.GET("/drafts", cfg.DraftHandler.List)
	protected.PUT("/drafts/:id", cfg.DraftHandler.Update)
	protected.POST("/drafts/:id/advance", cfg.DraftHandler.Advance)

	// Payments
	protected.GET("/payments", cfg.PaymentHandler.List)
	protected.POST("/payments/:id/paid", cfg.PaymentHandler.MarkPaid)
	protected.POST("/payments/incentive", cfg.PaymentHandler.CreateIncentive)

	// Percentile review
	protected.GET("/review/next", cfg.ReviewHandler.Next)
	protected.GET("/review/stats", cfg.ReviewHandler.Stats)
	protected.POST("/review/corpus", cfg.ReviewHandler.SeedCorpus)
	protected.POST("/review/items/:id", cfg.ReviewHandler.Submit)

	return router
}
