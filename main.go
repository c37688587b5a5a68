package main

import (
	"context"
	"electrocare-backend/controller"
	"electrocare-backend/models"
	"electrocare-backend/utils"
	"electrocare-backend/utils/logger"
	"electrocare-backend/worker"
	"log"

	"github.com/gin-gonic/gin"
)

var config *models.Config

func Init() {
	var err error
	config, err = utils.GetConfig()
	if err != nil {
		log.Fatal(err)
	}
}

// @title ElectroCare Backend API
// @version 1.0
// @description Service request lifecycle and dispatch engine for appliance repair.
// @description
// @description Customers create repair requests which are broadcast to nearby
// @description technicians; the first technician to accept wins the job. The API
// @description covers the full lifecycle: accept, travel, estimate, approval,
// @description completion with OTP verification, and cancellation with settlement.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8082
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Enter 'Bearer' [space] and then your token.
func main() {
	Init()

	ctx := context.Background()
	appLogger := logger.NewLogger(config.LogLevel, config.LogFormat)

	r := gin.New()
	r.Use(gin.Recovery())

	c := controller.NewController(ctx, config, appLogger)

	// Start server (this is blocking)
	go func() {
		if err := c.RegisterRoutes(ctx, config, r, config.BasePath); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Provision DynamoDB tables in the background
	infraWorker, err := worker.NewService(ctx, config, appLogger)
	if err != nil {
		log.Fatalf("Failed to create infrastructure worker: %v", err)
	}
	if err := infraWorker.StartInBackground(); err != nil {
		log.Fatalf("Failed to start infrastructure worker: %v", err)
	}

	select {}
}
