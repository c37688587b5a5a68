package controller

import (
	"context"
	"electrocare-backend/dal"
	"electrocare-backend/middelware"
	"electrocare-backend/models"
	"electrocare-backend/repository"
	"electrocare-backend/services"
	"net/http"

	"electrocare-backend/utils/logger"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	Auth    *AuthController
	Request *RequestController
}

func NewController(ctx context.Context, cfg *models.Config, log logger.Logger) *Controller {
	dbclient, err := dal.NewDynamoDBClient(cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize DynamoDB client: %v", err)
	}

	repos := repository.NewRepository(dbclient, cfg, log)
	jwtManager := middelware.NewJWTManager(cfg, log, repos.User)

	notifier := services.NewLogNotifier(log)
	geo := services.NewGeoService(repos.Technician, cfg, log)
	settlement := services.NewSettlementService(dbclient, repos.Request, repos.User,
		repos.Technician, repos.Subscription, repos.Transaction, log)
	dispatch := services.NewDispatchService(dbclient, repos.Request, repos.Queue,
		repos.User, repos.Subscription, repos.Transaction, geo, notifier, log)
	lifecycle := services.NewLifecycleService(repos.Request, repos.Queue, repos.Technician,
		repos.User, repos.Subscription, settlement, notifier, log)

	return &Controller{
		Auth:    NewAuthController(ctx, jwtManager, log),
		Request: NewRequestController(ctx, dispatch, lifecycle, log),
	}
}

func (c *Controller) RegisterRoutes(ctx context.Context, config *models.Config, r *gin.Engine, basePath string) error {
	v1 := r.Group(basePath)

	// Health check endpoint (no auth required)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"version": config.AppVersion,
			"service": config.AppName,
		})
	})

	auth := c.Auth.jwtManager

	v1.POST("/auth/login", c.Auth.Login)

	requests := v1.Group("/requests", auth.AuthMiddleware())

	requests.POST("", auth.RequireRole(models.RoleCustomer), c.Request.Create)
	requests.GET("/my", auth.RequireRole(models.RoleCustomer), c.Request.ListMy)
	requests.GET("/inbox", auth.RequireRole(models.RoleTechnician), c.Request.Inbox)
	requests.GET("/:id", c.Request.Get)

	requests.POST("/:id/accept", auth.RequireRole(models.RoleTechnician), c.Request.Accept)
	requests.POST("/:id/on-the-way", auth.RequireRole(models.RoleTechnician), c.Request.MarkOnTheWay)
	requests.POST("/:id/estimate", auth.RequireRole(models.RoleTechnician), c.Request.SubmitEstimate)
	requests.POST("/:id/approve", auth.RequireRole(models.RoleCustomer), c.Request.ApproveEstimate)
	requests.POST("/:id/complete", auth.RequireRole(models.RoleTechnician), c.Request.Complete)
	requests.POST("/:id/verify-otp", auth.RequireRole(models.RoleTechnician), c.Request.VerifyOTP)
	requests.POST("/:id/cancel", auth.RequireRole(models.RoleCustomer), c.Request.CancelByCustomer)
	requests.POST("/:id/cancel-technician", auth.RequireRole(models.RoleTechnician), c.Request.CancelByTechnician)

	srv := &http.Server{
		Addr:    config.AppHost + ":" + config.AppPort,
		Handler: r,
	}

	logger := logger.NewLogger(config.LogLevel, config.LogFormat)
	logger.Infof("Starting server on %s:%s", config.AppHost, config.AppPort)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
