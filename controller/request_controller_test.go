package controller

import (
	"bytes"
	"context"
	"electrocare-backend/models"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type mockDispatchService struct {
	mock.Mock
}

func (m *mockDispatchService) CreateRequest(ctx context.Context, userID string, in *models.CreateRequestRequest) (*models.CreateRequestResponse, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CreateRequestResponse), args.Error(1)
}

type mockLifecycleService struct {
	mock.Mock
}

func (m *mockLifecycleService) request(args mock.Arguments) (*models.ServiceRequest, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRequest), args.Error(1)
}

func (m *mockLifecycleService) Accept(ctx context.Context, technicianID, requestID string) (*models.ServiceRequest, error) {
	return m.request(m.Called(ctx, technicianID, requestID))
}

func (m *mockLifecycleService) MarkOnTheWay(ctx context.Context, technicianID, requestID string) (*models.ServiceRequest, error) {
	return m.request(m.Called(ctx, technicianID, requestID))
}

func (m *mockLifecycleService) SubmitEstimate(ctx context.Context, technicianID, requestID string, estimatedCost int) (*models.ServiceRequest, error) {
	return m.request(m.Called(ctx, technicianID, requestID, estimatedCost))
}

func (m *mockLifecycleService) ApproveEstimate(ctx context.Context, userID, requestID string) (*models.ServiceRequest, error) {
	return m.request(m.Called(ctx, userID, requestID))
}

func (m *mockLifecycleService) CompleteService(ctx context.Context, technicianID, requestID string) (*models.ServiceRequest, error) {
	return m.request(m.Called(ctx, technicianID, requestID))
}

func (m *mockLifecycleService) VerifyOTP(ctx context.Context, technicianID, requestID, otp string) (*models.ServiceRequest, error) {
	return m.request(m.Called(ctx, technicianID, requestID, otp))
}

func (m *mockLifecycleService) CancelByCustomer(ctx context.Context, userID, requestID string) (*models.ServiceRequest, error) {
	return m.request(m.Called(ctx, userID, requestID))
}

func (m *mockLifecycleService) CancelByTechnician(ctx context.Context, technicianID, requestID string) (*models.ServiceRequest, error) {
	return m.request(m.Called(ctx, technicianID, requestID))
}

func (m *mockLifecycleService) ListCustomerRequests(ctx context.Context, userID string) ([]*models.ServiceRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ServiceRequest), args.Error(1)
}

func (m *mockLifecycleService) TechnicianInbox(ctx context.Context, technicianID string) (*models.TechnicianInbox, error) {
	args := m.Called(ctx, technicianID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TechnicianInbox), args.Error(1)
}

func (m *mockLifecycleService) GetRequestForActor(ctx context.Context, actorID string, role models.ActorRole, requestID string) (*models.ServiceRequest, error) {
	return m.request(m.Called(ctx, actorID, role, requestID))
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

type RequestControllerTestSuite struct {
	suite.Suite
	dispatch   *mockDispatchService
	lifecycle  *mockLifecycleService
	controller *RequestController
}

func (suite *RequestControllerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.dispatch = &mockDispatchService{}
	suite.lifecycle = &mockLifecycleService{}
	suite.controller = NewRequestController(context.Background(), suite.dispatch, suite.lifecycle, noopLogger{})
}

func TestRequestControllerTestSuite(t *testing.T) {
	suite.Run(t, new(RequestControllerTestSuite))
}

// testContext builds a gin context carrying an authenticated identity, the
// way AuthMiddleware leaves it.
func (suite *RequestControllerTestSuite) testContext(method, path string, body interface{}, actorID string, role models.ActorRole) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	c.Request = httptest.NewRequest(method, path, &buf)
	c.Request.Header.Set("Content-Type", "application/json")

	claims := &models.JWTClaims{ActorID: actorID, Role: role}
	c.Set("actor_id", actorID)
	c.Set("actor_role", role)
	c.Set("jwt_claims", claims)

	return c, w
}

func (suite *RequestControllerTestSuite) parseResponse(w *httptest.ResponseRecorder) models.APIResponse {
	var resp models.APIResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(suite.T(), err)
	return resp
}

func (suite *RequestControllerTestSuite) TestCreateBroadcasted() {
	suite.dispatch.On("CreateRequest", mock.Anything, "user-1", mock.Anything).
		Return(&models.CreateRequestResponse{
			Request:          &models.ServiceRequest{RequestID: "req-1", Status: models.RequestStatusBroadcasted},
			TechniciansFound: 3,
		}, nil)

	c, w := suite.testContext(http.MethodPost, "/api/v1/requests", models.CreateRequestRequest{
		ApplianceID: "appl-1",
		IssueDesc:   "Washing machine drum not spinning",
	}, "user-1", models.RoleCustomer)

	suite.controller.Create(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)
	resp := suite.parseResponse(w)
	assert.Equal(suite.T(), "success", resp.Status)
	assert.Equal(suite.T(), "Service request broadcasted", resp.Message)
}

func (suite *RequestControllerTestSuite) TestCreateNoTechnicians() {
	suite.dispatch.On("CreateRequest", mock.Anything, "user-1", mock.Anything).
		Return(&models.CreateRequestResponse{
			Request:          &models.ServiceRequest{RequestID: "req-1", Status: models.RequestStatusPending},
			TechniciansFound: 0,
		}, nil)

	c, w := suite.testContext(http.MethodPost, "/api/v1/requests", models.CreateRequestRequest{
		ApplianceID: "appl-1",
		IssueDesc:   "Washing machine drum not spinning",
	}, "user-1", models.RoleCustomer)

	suite.controller.Create(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)
	resp := suite.parseResponse(w)
	assert.Contains(suite.T(), resp.Message, "no technicians available")
}

func (suite *RequestControllerTestSuite) TestCreateRejectsInvalidPayload() {
	c, w := suite.testContext(http.MethodPost, "/api/v1/requests", models.CreateRequestRequest{
		IssueDesc: "abc",
	}, "user-1", models.RoleCustomer)

	suite.controller.Create(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	suite.dispatch.AssertNotCalled(suite.T(), "CreateRequest", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RequestControllerTestSuite) TestCreateInsufficientBalance() {
	suite.dispatch.On("CreateRequest", mock.Anything, "user-1", mock.Anything).
		Return(nil, models.NewValidation("insufficient wallet balance: visit fee is 200"))

	c, w := suite.testContext(http.MethodPost, "/api/v1/requests", models.CreateRequestRequest{
		ApplianceID: "appl-1",
		IssueDesc:   "Washing machine drum not spinning",
	}, "user-1", models.RoleCustomer)

	suite.controller.Create(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	resp := suite.parseResponse(w)
	assert.Equal(suite.T(), "error", resp.Status)
	assert.Contains(suite.T(), resp.Message, "insufficient wallet balance")
}

func (suite *RequestControllerTestSuite) TestAcceptConflictMapsTo409() {
	suite.lifecycle.On("Accept", mock.Anything, "tech-1", "req-1").
		Return(nil, models.NewConflict("service request already accepted or no longer available"))

	c, w := suite.testContext(http.MethodPost, "/api/v1/requests/req-1/accept", nil, "tech-1", models.RoleTechnician)
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}

	suite.controller.Accept(c)

	assert.Equal(suite.T(), http.StatusConflict, w.Code)
}

func (suite *RequestControllerTestSuite) TestAcceptForbiddenMapsTo403() {
	suite.lifecycle.On("Accept", mock.Anything, "tech-1", "req-1").
		Return(nil, models.NewForbidden("this request was not offered to you"))

	c, w := suite.testContext(http.MethodPost, "/api/v1/requests/req-1/accept", nil, "tech-1", models.RoleTechnician)
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}

	suite.controller.Accept(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *RequestControllerTestSuite) TestAcceptSuccess() {
	suite.lifecycle.On("Accept", mock.Anything, "tech-1", "req-1").
		Return(&models.ServiceRequest{RequestID: "req-1", Status: models.RequestStatusAccepted, TechnicianID: "tech-1"}, nil)

	c, w := suite.testContext(http.MethodPost, "/api/v1/requests/req-1/accept", nil, "tech-1", models.RoleTechnician)
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}

	suite.controller.Accept(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	resp := suite.parseResponse(w)
	assert.Equal(suite.T(), "success", resp.Status)
}

func (suite *RequestControllerTestSuite) TestGetNotFoundMapsTo404() {
	suite.lifecycle.On("GetRequestForActor", mock.Anything, "user-1", models.RoleCustomer, "req-missing").
		Return(nil, models.NewNotFound("service request not found"))

	c, w := suite.testContext(http.MethodGet, "/api/v1/requests/req-missing", nil, "user-1", models.RoleCustomer)
	c.Params = gin.Params{{Key: "id", Value: "req-missing"}}

	suite.controller.Get(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *RequestControllerTestSuite) TestSubmitEstimateValidatesBody() {
	c, w := suite.testContext(http.MethodPost, "/api/v1/requests/req-1/estimate",
		models.SubmitEstimateRequest{EstimatedServiceCost: 0}, "tech-1", models.RoleTechnician)
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}

	suite.controller.SubmitEstimate(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	suite.lifecycle.AssertNotCalled(suite.T(), "SubmitEstimate",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RequestControllerTestSuite) TestSubmitEstimatePassesCost() {
	suite.lifecycle.On("SubmitEstimate", mock.Anything, "tech-1", "req-1", 450).
		Return(&models.ServiceRequest{RequestID: "req-1", Status: models.RequestStatusAwaitingApproval}, nil)

	c, w := suite.testContext(http.MethodPost, "/api/v1/requests/req-1/estimate",
		models.SubmitEstimateRequest{EstimatedServiceCost: 450}, "tech-1", models.RoleTechnician)
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}

	suite.controller.SubmitEstimate(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *RequestControllerTestSuite) TestVerifyOTPValidatesFormat() {
	c, w := suite.testContext(http.MethodPost, "/api/v1/requests/req-1/verify-otp",
		models.VerifyOTPRequest{OTP: "12ab"}, "tech-1", models.RoleTechnician)
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}

	suite.controller.VerifyOTP(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	suite.lifecycle.AssertNotCalled(suite.T(), "VerifyOTP",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RequestControllerTestSuite) TestVerifyOTPWrongCodeMapsTo400() {
	suite.lifecycle.On("VerifyOTP", mock.Anything, "tech-1", "req-1", "111111").
		Return(nil, models.NewValidation("incorrect completion code"))

	c, w := suite.testContext(http.MethodPost, "/api/v1/requests/req-1/verify-otp",
		models.VerifyOTPRequest{OTP: "111111"}, "tech-1", models.RoleTechnician)
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}

	suite.controller.VerifyOTP(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *RequestControllerTestSuite) TestCancelSettlementFailureMapsTo500() {
	suite.lifecycle.On("CancelByCustomer", mock.Anything, "user-1", "req-1").
		Return(nil, models.NewSettlementFailure("settlement could not be applied as a unit", assert.AnError))

	c, w := suite.testContext(http.MethodPost, "/api/v1/requests/req-1/cancel", nil, "user-1", models.RoleCustomer)
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}

	suite.controller.CancelByCustomer(c)

	assert.Equal(suite.T(), http.StatusInternalServerError, w.Code)
}

func (suite *RequestControllerTestSuite) TestListMy() {
	suite.lifecycle.On("ListCustomerRequests", mock.Anything, "user-1").
		Return([]*models.ServiceRequest{
			{RequestID: "req-1", Status: models.RequestStatusCompleted},
			{RequestID: "req-2", Status: models.RequestStatusBroadcasted},
		}, nil)

	c, w := suite.testContext(http.MethodGet, "/api/v1/requests/my", nil, "user-1", models.RoleCustomer)

	suite.controller.ListMy(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	resp := suite.parseResponse(w)
	assert.Equal(suite.T(), "success", resp.Status)
	data, ok := resp.Data.([]interface{})
	assert.True(suite.T(), ok)
	assert.Len(suite.T(), data, 2)
}

func (suite *RequestControllerTestSuite) TestInbox() {
	suite.lifecycle.On("TechnicianInbox", mock.Anything, "tech-1").
		Return(&models.TechnicianInbox{
			Broadcasted: []*models.ServiceRequest{{RequestID: "req-open"}},
			MyJobs:      []*models.ServiceRequest{},
		}, nil)

	c, w := suite.testContext(http.MethodGet, "/api/v1/requests/inbox", nil, "tech-1", models.RoleTechnician)

	suite.controller.Inbox(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	resp := suite.parseResponse(w)
	assert.Equal(suite.T(), "success", resp.Status)
}

func (suite *RequestControllerTestSuite) TestUpstreamUnavailableMapsTo502() {
	suite.lifecycle.On("MarkOnTheWay", mock.Anything, "tech-1", "req-1").
		Return(nil, models.NewUpstream("datastore unreachable", assert.AnError))

	c, w := suite.testContext(http.MethodPost, "/api/v1/requests/req-1/on-the-way", nil, "tech-1", models.RoleTechnician)
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}

	suite.controller.MarkOnTheWay(c)

	assert.Equal(suite.T(), http.StatusBadGateway, w.Code)
}
