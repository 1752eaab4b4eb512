package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/mizutanik/tasktree-api/internal/config"
	"github.com/mizutanik/tasktree-api/internal/database"
	"github.com/mizutanik/tasktree-api/internal/handlers"
	"github.com/mizutanik/tasktree-api/internal/logging"
	"github.com/mizutanik/tasktree-api/internal/middleware"
	"github.com/mizutanik/tasktree-api/internal/repository"
	"github.com/mizutanik/tasktree-api/internal/services"
	"github.com/mizutanik/tasktree-api/internal/ws"
)

func main() {
	// Load configuration; missing or malformed required values are fatal.
	cfg, err := config.Load()
	if err != nil {
		logging.Init("")
		logging.Logger.Fatalf("Invalid configuration: %v", err)
	}

	logging.Init(cfg.LogFile)
	log := logging.Logger

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	fieldRepo := repository.NewCustomFieldRepository(db)

	// The hub is constructed here and handed by reference to both the
	// mutation path (task service) and the connection path (WS handler).
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenLifetime)
	userService := services.NewUserService(userRepo)
	taskService := services.NewTaskService(taskRepo, userRepo, hub)
	fieldService := services.NewCustomFieldService(fieldRepo)

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	taskHandler := handlers.NewTaskHandler(taskService)
	fieldHandler := handlers.NewCustomFieldHandler(fieldService)
	wsHandler := handlers.NewWSHandler(hub)

	// Initialize Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Task hierarchy API is running",
		})
	})

	// API routes
	api := r.Group("/api/v1")
	{
		// Auth routes (public except /me)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.RequireAuth(authService), authHandler.GetCurrentUser)
		}

		// Everything else requires a bearer token
		protected := api.Group("")
		protected.Use(middleware.RequireAuth(authService))
		{
			protected.GET("/users", userHandler.ListUsers)

			tasks := protected.Group("/tasks")
			{
				tasks.GET("", taskHandler.ListTasks)
				tasks.POST("", taskHandler.CreateTask)
				tasks.GET("/:id", taskHandler.GetTask)
				tasks.PATCH("/:id", taskHandler.UpdateTask)
				tasks.DELETE("/:id", taskHandler.DeleteTask)
			}

			fields := protected.Group("/custom-fields")
			{
				fields.GET("", fieldHandler.ListFields)
				fields.POST("", fieldHandler.CreateField)
				fields.GET("/:id", fieldHandler.GetField)
				fields.PATCH("/:id", fieldHandler.UpdateField)
				fields.DELETE("/:id", fieldHandler.DeleteField)
			}

			// Realtime channel
			protected.GET("/ws", wsHandler.Connect)
		}
	}

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Infof("Server starting on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
