package main

import (
	"log"

	"academy/backend/config"
	"academy/backend/middleware"
	"academy/backend/routes"
	"academy/backend/services"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Email sender: sendgrid in production, console otherwise
	var email services.EmailSender
	if cfg.SendgridAPIKey != "" {
		email = services.NewSendgridSender(cfg)
	} else {
		email = services.NewConsoleSender(logger)
	}
	invites := services.NewInviteService(db, cfg, email, logger)
	resets := services.NewPasswordResetService(db, cfg, email, logger)

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, invites, resets)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
