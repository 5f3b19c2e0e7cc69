package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"taskly/internal/config"
	"taskly/internal/handlers"
	"taskly/internal/middleware"
	"taskly/internal/pdf"
	"taskly/internal/repositories"
	"taskly/internal/routes"
	"taskly/internal/scheduler"
	"taskly/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "taskly/docs"
)

func Run() {
	cfg := config.LoadConfig()
	middleware.SetJWTKey(cfg.JWT.Secret)

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	workspaceRepo := repositories.NewWorkspaceRepository(db)
	taskListRepo := repositories.NewTaskListRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	assignmentRepo := repositories.NewAssignmentRepository(db)
	commentRepo := repositories.NewCommentRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	blocklistRepo := repositories.NewTokenBlocklistRepository(db)
	resetRepo := repositories.NewPasswordResetRepository(db)

	// === Services ===
	authService := services.NewAuthService(blocklistRepo)
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	telegramService, err := services.NewTelegramService(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		// delivery signal is optional, the API runs without it
		log.Printf("[app][warn] telegram disabled: %v", err)
	}

	userService := services.NewUserService(userRepo, taskListRepo, emailService, authService)
	workspaceService := services.NewWorkspaceService(workspaceRepo, userRepo, emailService)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, telegramService)
	taskListService := services.NewTaskListService(taskListRepo, taskRepo)
	taskService := services.NewTaskService(taskRepo, taskListRepo, assignmentRepo)
	assignmentService := services.NewAssignmentService(assignmentRepo, taskRepo, taskListRepo, userRepo, notificationService)
	commentService := services.NewCommentService(commentRepo, taskRepo)
	resetService := services.NewPasswordResetService(userRepo, resetRepo, emailService, authService)

	pdfGen := pdf.NewGenerator()

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, authService, resetService)
	userHandler := handlers.NewUserHandler(userService)
	workspaceHandler := handlers.NewWorkspaceHandler(workspaceService)
	taskListHandler := handlers.NewTaskListHandler(taskListService, pdfGen)
	taskHandler := handlers.NewTaskHandler(taskService)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService)
	commentHandler := handlers.NewCommentHandler(commentService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// === Deadline sweep ===
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	sweep := scheduler.New(
		taskService,
		assignmentService,
		notificationService,
		time.Duration(cfg.Sweep.IntervalSeconds)*time.Second,
		time.Duration(cfg.Sweep.WindowSeconds)*time.Second,
	)
	go sweep.Run(sweepCtx)

	// === Gin ===
	router := gin.Default()
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	routes.SetupRoutes(
		router,
		authService,
		authHandler,
		userHandler,
		workspaceHandler,
		taskListHandler,
		taskHandler,
		assignmentHandler,
		commentHandler,
		notificationHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
