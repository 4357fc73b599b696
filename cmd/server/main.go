// Package main is the entry point for the payment-link backend.
// It initializes all dependencies, sets up the HTTP server,
// and starts the application.
package main

import (
	"log"

	"paylink/internal/config"
	"paylink/internal/repositories"
	"paylink/internal/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadEnv()

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	defer func() {
		if repositories.DB != nil {
			sqlDB, err := repositories.DB.DB()
			if err == nil {
				if err := sqlDB.Close(); err != nil {
					log.Printf("failed to close database connection: %v", err)
				}
			}
		}
		if repositories.CacheService != nil {
			if err := repositories.CacheService.Close(); err != nil {
				log.Printf("failed to close Redis connection: %v", err)
			}
		}
	}()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	bus := routes.SetupRoutes(app, repositories.DB)
	defer bus.Close()

	// Not log.Fatal: the deferred DB/Redis close and bus drain must still run
	// when the listener stops.
	if err := app.Listen(":" + config.GetEnv("PORT", "3000")); err != nil {
		log.Printf("server stopped: %v", err)
	}
}
