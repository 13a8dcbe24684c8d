package main

import (
	"fmt"
	"os"
	"time"

	"github.com/clipworks/shortform-backend/internal/db"
	"github.com/clipworks/shortform-backend/internal/handlers"
	"github.com/clipworks/shortform-backend/internal/logger"
	"github.com/clipworks/shortform-backend/internal/middleware"
	"github.com/clipworks/shortform-backend/internal/repos"
	"github.com/clipworks/shortform-backend/internal/server"
	"github.com/clipworks/shortform-backend/internal/services"
	"github.com/clipworks/shortform-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	shortRepo := repos.NewShortRepo(thePG, log)
	shortFileRepo := repos.NewShortFileRepo(thePG, log)
	assignmentRepo := repos.NewAssignmentRepo(thePG, log)
	payRateRepo := repos.NewPayRateRepo(thePG, log)
	paymentRepo := repos.NewPaymentRepo(thePG, log)
	analyzedShortRepo := repos.NewAnalyzedShortRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	bucketService, err := services.NewBucketService(log)
	if err != nil {
		log.Warn("Could not init BucketService", "error", err)
	}
	fileService := services.NewFileService(thePG, log, shortRepo, shortFileRepo, bucketService)
	paymentService := services.NewPaymentService(thePG, log, paymentRepo)
	workflowService := services.NewWorkflowService(thePG, log, shortRepo, assignmentRepo, payRateRepo, fileService, paymentService)
	scriptDraftService := services.NewScriptDraftService(thePG, log, shortRepo, assignmentRepo, payRateRepo, paymentService)
	reviewService := services.NewReviewService(thePG, log, analyzedShortRepo)
	shortService := services.NewShortService(thePG, log, shortRepo, shortFileRepo, assignmentRepo, payRateRepo, userRepo)
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, payRateRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, userRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	shortHandler := handlers.NewShortHandler(log, shortService, fileService)
	workflowHandler := handlers.NewWorkflowHandler(workflowService)
	draftHandler := handlers.NewDraftHandler(scriptDraftService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	reviewHandler := handlers.NewReviewHandler(reviewService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:     authHandler,
		AuthMiddleware:  authMiddleware,
		UserHandler:     userHandler,
		ShortHandler:    shortHandler,
		WorkflowHandler: workflowHandler,
		DraftHandler:    draftHandler,
		PaymentHandler:  paymentHandler,
		ReviewHandler:   reviewHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
