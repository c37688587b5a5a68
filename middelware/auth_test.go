package middelware

import (
	"context"
	"electrocare-backend/models"
	"electrocare-backend/utils"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) GetUser(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) TxAdjust(id string, adds map[string]int) (types.TransactWriteItem, error) {
	args := m.Called(id, adds)
	return args.Get(0).(types.TransactWriteItem), args.Error(1)
}

type noopLogger struct{}

func (noopLogger) Debug(args ...interface{})                 {}
func (noopLogger) Debugf(format string, args ...interface{}) {}
func (noopLogger) Info(args ...interface{})                  {}
func (noopLogger) Infof(format string, args ...interface{})  {}
func (noopLogger) Warn(args ...interface{})                  {}
func (noopLogger) Warnf(format string, args ...interface{})  {}
func (noopLogger) Error(args ...interface{})                 {}
func (noopLogger) Errorf(format string, args ...interface{}) {}
func (noopLogger) Fatal(args ...interface{})                 {}
func (noopLogger) Fatalf(format string, args ...interface{}) {}

type AuthTestSuite struct {
	suite.Suite
	userRepo *mockUserRepo
	manager  *JWTManager
}

func (suite *AuthTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.userRepo = &mockUserRepo{}
	suite.manager = NewJWTManager(&models.Config{
		AppName:      "electrocare-backend",
		JWTSecret:    "test-secret-do-not-use",
		JWTExpiresIn: time.Hour,
	}, noopLogger{}, suite.userRepo)
}

func TestAuthTestSuite(t *testing.T) {
	suite.Run(t, new(AuthTestSuite))
}

func (suite *AuthTestSuite) TestTokenRoundTrip() {
	user := &models.User{
		UserID: "user-1",
		Email:  "asha@example.com",
		Name:   "Asha Patel",
	}

	token, expiresAt, err := suite.manager.GenerateToken(user, models.RoleCustomer)
	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), token)
	assert.True(suite.T(), expiresAt.After(time.Now()))

	claims, err := suite.manager.ValidateToken(token)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "user-1", claims.ActorID)
	assert.Equal(suite.T(), models.RoleCustomer, claims.Role)
	assert.True(suite.T(), claims.IsCustomer())
}

func (suite *AuthTestSuite) TestValidateTokenRejectsWrongSecret() {
	other := NewJWTManager(&models.Config{
		AppName:      "electrocare-backend",
		JWTSecret:    "a-different-secret",
		JWTExpiresIn: time.Hour,
	}, noopLogger{}, suite.userRepo)

	token, _, err := other.GenerateToken(&models.User{UserID: "user-1"}, models.RoleCustomer)
	assert.NoError(suite.T(), err)

	_, err = suite.manager.ValidateToken(token)
	assert.Error(suite.T(), err)
}

func (suite *AuthTestSuite) TestValidateTokenRejectsExpired() {
	expired := NewJWTManager(&models.Config{
		AppName:      "electrocare-backend",
		JWTSecret:    "test-secret-do-not-use",
		JWTExpiresIn: -time.Hour,
	}, noopLogger{}, suite.userRepo)

	token, _, err := expired.GenerateToken(&models.User{UserID: "user-1"}, models.RoleCustomer)
	assert.NoError(suite.T(), err)

	_, err = suite.manager.ValidateToken(token)
	assert.Error(suite.T(), err)
}

func (suite *AuthTestSuite) TestAuthenticateHappyPath() {
	hash, err := utils.HashPassword("correct-horse-battery")
	assert.NoError(suite.T(), err)

	suite.userRepo.On("GetUserByEmail", mock.Anything, "asha@example.com").Return(&models.User{
		UserID:       "user-1",
		Email:        "asha@example.com",
		Status:       models.UserStatusActive,
		PasswordHash: hash,
	}, nil)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", nil)

	resp, err := suite.manager.Authenticate(c, &models.LoginRequest{
		Email:    "asha@example.com",
		Password: "correct-horse-battery",
		Role:     models.RoleCustomer,
	})

	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), resp.Token)
	assert.Equal(suite.T(), models.RoleCustomer, resp.Role)
}

func (suite *AuthTestSuite) TestAuthenticateWrongPassword() {
	hash, _ := utils.HashPassword("correct-horse-battery")
	suite.userRepo.On("GetUserByEmail", mock.Anything, "asha@example.com").Return(&models.User{
		UserID:       "user-1",
		Status:       models.UserStatusActive,
		PasswordHash: hash,
	}, nil)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", nil)

	_, err := suite.manager.Authenticate(c, &models.LoginRequest{
		Email:    "asha@example.com",
		Password: "wrong-password-entirely",
		Role:     models.RoleCustomer,
	})

	kind, _ := models.KindOf(err)
	assert.Equal(suite.T(), models.ErrKindForbidden, kind)
}

func (suite *AuthTestSuite) TestAuthenticateInactiveAccount() {
	hash, _ := utils.HashPassword("correct-horse-battery")
	suite.userRepo.On("GetUserByEmail", mock.Anything, "asha@example.com").Return(&models.User{
		UserID:       "user-1",
		Status:       models.UserStatusInactive,
		PasswordHash: hash,
	}, nil)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", nil)

	_, err := suite.manager.Authenticate(c, &models.LoginRequest{
		Email:    "asha@example.com",
		Password: "correct-horse-battery",
		Role:     models.RoleCustomer,
	})

	kind, _ := models.KindOf(err)
	assert.Equal(suite.T(), models.ErrKindForbidden, kind)
}

func (suite *AuthTestSuite) protectedRouter(role models.ActorRole) *gin.Engine {
	router := gin.New()
	group := router.Group("/", suite.manager.AuthMiddleware())
	group.GET("/protected", suite.manager.RequireRole(role), func(c *gin.Context) {
		claims := ClaimsFromContext(c)
		c.JSON(http.StatusOK, gin.H{"actorID": claims.ActorID})
	})
	return router
}

func (suite *AuthTestSuite) TestMiddlewareMissingHeader() {
	router := suite.protectedRouter(models.RoleCustomer)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *AuthTestSuite) TestMiddlewareMalformedHeader() {
	router := suite.protectedRouter(models.RoleCustomer)

	for _, header := range []string{"Basic abc123", "Bearer", "Bearer "} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		router.ServeHTTP(w, req)

		assert.Equal(suite.T(), http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func (suite *AuthTestSuite) TestMiddlewareValidToken() {
	token, _, err := suite.manager.GenerateToken(&models.User{UserID: "user-1"}, models.RoleCustomer)
	assert.NoError(suite.T(), err)

	router := suite.protectedRouter(models.RoleCustomer)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "user-1")
}

func (suite *AuthTestSuite) TestRequireRoleRejectsOtherRole() {
	token, _, err := suite.manager.GenerateToken(&models.User{UserID: "user-1"}, models.RoleCustomer)
	assert.NoError(suite.T(), err)

	router := suite.protectedRouter(models.RoleTechnician)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}
