package controller

import (
	"context"
	"electrocare-backend/middelware"
	"electrocare-backend/models"
	"electrocare-backend/utils"
	"net/http"

	"electrocare-backend/utils/logger"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	ctx        context.Context
	jwtManager *middelware.JWTManager
	logger     logger.Logger
}

func NewAuthController(ctx context.Context, jwtManager *middelware.JWTManager, logger logger.Logger) *AuthController {
	return &AuthController{
		ctx:        ctx,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

// Login handles POST /api/v1/auth/login
// @Summary Authenticate an actor
// @Description Verify credentials and issue a JWT for the requested role
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} models.APIResponse "Authenticated"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid credentials payload"
// @Failure 403 {object} models.APIResponse "Forbidden - Invalid email or password"
// @Router /auth/login [post]
func (h *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind JSON:", err)
		respondBindError(c, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.jwtManager.Authenticate(c, &req)
	if err != nil {
		h.logger.Errorf("Login failed for %s: %v", req.Email, err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse(http.StatusOK, "Authenticated", resp))
}
