package middelware

import (
	"electrocare-backend/models"
	"electrocare-backend/repository"
	"electrocare-backend/utils"
	"electrocare-backend/utils/logger"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTManager handles token issuance and validation. The users table is the
// account store for both actor kinds; the technician profile is a separate
// snapshot keyed by the same ID.
type JWTManager struct {
	Config   *models.Config
	Logger   logger.Logger
	UserRepo repository.UserRepositoryInterface
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(cfg *models.Config, log logger.Logger, userRepo repository.UserRepositoryInterface) *JWTManager {
	return &JWTManager{
		Config:   cfg,
		Logger:   log,
		UserRepo: userRepo,
	}
}

// GenerateToken signs a token carrying the actor identity and role.
func (j *JWTManager) GenerateToken(user *models.User, role models.ActorRole) (string, time.Time, error) {
	expiresAt := time.Now().Add(j.Config.JWTExpiresIn)
	claims := models.JWTClaims{
		ActorID: user.UserID,
		Email:   user.Email,
		Name:    user.Name,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.UserID,
			Issuer:    j.Config.AppName,
			Audience:  jwt.ClaimStrings{j.Config.AppName},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(time.Now()),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(j.Config.JWTSecret))
	if err != nil {
		j.Logger.Errorf("Failed to sign JWT token: %v", err)
		return "", time.Time{}, err
	}

	j.Logger.Debugf("Generated JWT token for actor: %s (%s)", user.UserID, role)
	return tokenString, expiresAt, nil
}

// Authenticate checks credentials against the account store and issues a
// token for the requested role.
func (j *JWTManager) Authenticate(c *gin.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := j.UserRepo.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		return nil, models.NewForbidden("invalid email or password")
	}
	if user.Status != models.UserStatusActive {
		return nil, models.NewForbidden(fmt.Sprintf("account is %s", user.Status))
	}
	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		return nil, models.NewForbidden("invalid email or password")
	}

	token, expiresAt, err := j.GenerateToken(user, req.Role)
	if err != nil {
		return nil, err
	}

	return &models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
		Role:      req.Role,
	}, nil
}

// ValidateToken parses and verifies a signed token.
func (j *JWTManager) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.Config.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// AuthMiddleware validates the Bearer token and attaches the actor identity
// to the request context.
func (j *JWTManager) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			j.Logger.Error("Missing Authorization header")
			c.JSON(http.StatusUnauthorized, models.ErrorResponse(http.StatusUnauthorized,
				"Missing Authorization header", "AuthenticationError", "Authorization header is required"))
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			j.Logger.Error("Invalid Authorization header format")
			c.JSON(http.StatusUnauthorized, models.ErrorResponse(http.StatusUnauthorized,
				"Invalid Authorization header format", "AuthenticationError",
				"Authorization header must be in format: Bearer <token>"))
			c.Abort()
			return
		}

		claims, err := j.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			j.Logger.Errorf("Token validation failed: %v", err)
			c.JSON(http.StatusUnauthorized, models.ErrorResponse(http.StatusUnauthorized,
				"Invalid or expired token", "AuthenticationError", err.Error()))
			c.Abort()
			return
		}

		c.Set("actor_id", claims.ActorID)
		c.Set("actor_role", claims.Role)
		c.Set("jwt_claims", claims)

		j.Logger.Debugf("Actor authenticated: %s (%s)", claims.ActorID, claims.Role)
		c.Next()
	}
}

// RequireRole rejects callers whose token does not carry the given role.
func (j *JWTManager) RequireRole(role models.ActorRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFromContext(c)
		if claims == nil || claims.Role != role {
			c.JSON(http.StatusForbidden, models.ErrorResponse(http.StatusForbidden,
				"Insufficient permissions", "AuthorizationError",
				fmt.Sprintf("this endpoint requires the %s role", role)))
			c.Abort()
			return
		}
		c.Next()
	}
}

// ClaimsFromContext pulls the authenticated identity set by AuthMiddleware.
func ClaimsFromContext(c *gin.Context) *models.JWTClaims {
	v, ok := c.Get("jwt_claims")
	if !ok {
		return nil
	}
	claims, ok := v.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
