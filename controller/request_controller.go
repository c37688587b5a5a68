package controller

import (
	"context"
	"electrocare-backend/middelware"
	"electrocare-backend/models"
	"electrocare-backend/services"
	"electrocare-backend/utils"
	"net/http"

	"electrocare-backend/utils/logger"

	"github.com/gin-gonic/gin"
)

type RequestController struct {
	ctx       context.Context
	dispatch  services.DispatchServiceInterface
	lifecycle services.LifecycleServiceInterface
	logger    logger.Logger
}

func NewRequestController(ctx context.Context, dispatch services.DispatchServiceInterface, lifecycle services.LifecycleServiceInterface, logger logger.Logger) *RequestController {
	return &RequestController{
		ctx:       ctx,
		dispatch:  dispatch,
		lifecycle: lifecycle,
		logger:    logger,
	}
}

// Create handles POST /api/v1/requests
// @Summary Create a service request
// @Description Intake a repair job: resolve the visit fee, match technicians, broadcast
// @Tags Requests
// @Accept json
// @Produce json
// @Param request body models.CreateRequestRequest true "Service request intake"
// @Success 201 {object} models.APIResponse "Request created"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid payload or insufficient balance"
// @Failure 500 {object} models.APIResponse "Internal Server Error"
// @Router /requests [post]
// @Security BearerAuth
func (h *RequestController) Create(c *gin.Context) {
	claims := middelware.ClaimsFromContext(c)

	var req models.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind JSON:", err)
		respondBindError(c, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.dispatch.CreateRequest(c.Request.Context(), claims.ActorID, &req)
	if err != nil {
		h.logger.Errorf("Failed to create request for user %s: %v", claims.ActorID, err)
		respondError(c, err)
		return
	}

	message := "Service request broadcasted"
	if resp.TechniciansFound == 0 {
		message = "Service request created; no technicians available right now"
	}
	c.JSON(http.StatusCreated, models.SuccessResponse(http.StatusCreated, message, resp))
}

// ListMy handles GET /api/v1/requests/my
// @Summary List my service requests
// @Tags Requests
// @Produce json
// @Success 200 {object} models.APIResponse "Requests"
// @Router /requests/my [get]
// @Security BearerAuth
func (h *RequestController) ListMy(c *gin.Context) {
	claims := middelware.ClaimsFromContext(c)

	requests, err := h.lifecycle.ListCustomerRequests(c.Request.Context(), claims.ActorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(http.StatusOK, "Requests retrieved", requests))
}

// Inbox handles GET /api/v1/requests/inbox
// @Summary Technician inbox
// @Description Open broadcasts the technician can accept plus their assigned jobs
// @Tags Requests
// @Produce json
// @Success 200 {object} models.APIResponse "Inbox"
// @Router /requests/inbox [get]
// @Security BearerAuth
func (h *RequestController) Inbox(c *gin.Context) {
	claims := middelware.ClaimsFromContext(c)

	inbox, err := h.lifecycle.TechnicianInbox(c.Request.Context(), claims.ActorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(http.StatusOK, "Inbox retrieved", inbox))
}

// Get handles GET /api/v1/requests/:id
// @Summary Get one service request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} models.APIResponse "Request"
// @Failure 403 {object} models.APIResponse "Forbidden - Not a party to this request"
// @Failure 404 {object} models.APIResponse "Not Found"
// @Router /requests/{id} [get]
// @Security BearerAuth
func (h *RequestController) Get(c *gin.Context) {
	claims := middelware.ClaimsFromContext(c)

	req, err := h.lifecycle.GetRequestForActor(c.Request.Context(), claims.ActorID, claims.Role, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(http.StatusOK, "Request retrieved", req))
}

// Accept handles POST /api/v1/requests/:id/accept
// @Summary Accept a broadcasted request
// @Description First technician wins; losers receive 409
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} models.APIResponse "Accepted"
// @Failure 403 {object} models.APIResponse "Forbidden - Not offered, suspended or inactive"
// @Failure 409 {object} models.APIResponse "Conflict - Already taken or slot conflict"
// @Router /requests/{id}/accept [post]
// @Security BearerAuth
func (h *RequestController) Accept(c *gin.Context) {
	claims := middelware.ClaimsFromContext(c)

	req, err := h.lifecycle.Accept(c.Request.Context(), claims.ActorID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(http.StatusOK, "Request accepted", req))
}

// MarkOnTheWay handles POST /api/v1/requests/:id/on-the-way
// @Summary Start travelling to the customer
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} models.APIResponse "On the way"
// @Failure 409 {object} models.APIResponse "Conflict - Not in accepted state"
// @Router /requests/{id}/on-the-way [post]
// @Security BearerAuth
func (h *RequestController) MarkOnTheWay(c *gin.Context) {
	claims := middelware.ClaimsFromContext(c)

	req, err := h.lifecycle.MarkOnTheWay(c.Request.Context(), claims.ActorID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(http.StatusOK, "Marked on the way", req))
}

// SubmitEstimate handles POST /api/v1/requests/:id/estimate
// @Summary Submit the diagnosed cost estimate
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param request body models.SubmitEstimateRequest true "Estimate"
// @Success 200 {object} models.APIResponse "Estimate recorded"
// @Failure 409 {object} models.APIResponse "Conflict - Not on the way"
// @Router /requests/{id}/estimate [post]
// @Security BearerAuth
func (h *RequestController) SubmitEstimate(c *gin.Context) {
	claims := middelware.ClaimsFromContext(c)

	var body models.SubmitEstimateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}
	if err := utils.ValidateStruct(&body); err != nil {
		respondBindError(c, err)
		return
	}

	req, err := h.lifecycle.SubmitEstimate(c.Request.Context(), claims.ActorID, c.Param("id"), body.EstimatedServiceCost)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(http.StatusOK, "Estimate submitted", req))
}

// ApproveEstimate handles POST /api/v1/requests/:id/approve
// @Summary Approve the technician's estimate
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} models.APIResponse "Approved"
// @Failure 409 {object} models.APIResponse "Conflict - No estimate awaiting approval"
// @Router /requests/{id}/approve [post]
// @Security BearerAuth
func (h *RequestController) ApproveEstimate(c *gin.Context) {
	claims := middelware.ClaimsFromContext(c)

	req, err := h.lifecycle.ApproveEstimate(c.Request.Context(), claims.ActorID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(http.StatusOK, "Estimate approved", req))
}

// Complete handles POST /api/v1/requests/:id/complete
// @Summary Issue the completion code
// @Description Mints a one-time code and sends it to the customer; status is unchanged until verification
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} models.APIResponse "Completion code issued"
// @Failure 409 {object} models.APIResponse "Conflict - Not in a completable state"
// @Router /requests/{id}/complete [post]
// @Security BearerAuth
func (h *RequestController) Complete(c *gin.Context) {
	claims := middelware.ClaimsFromContext(c)

	req, err := h.lifecycle.CompleteService(c.Request.Context(), claims.ActorID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(http.StatusOK, "Completion code sent to the customer", req))
}

// VerifyOTP handles POST /api/v1/requests/:id/verify-otp
// @Summary Verify the completion code and close the job
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param request body models.VerifyOTPRequest true "Completion code"
// @Success 200 {object} models.APIResponse "Completed"
// @Failure 400 {object} models.APIResponse "Bad Request - Incorrect code"
// @Failure 409 {object} models.APIResponse "Conflict - No code issued or wrong state"
// @Router /requests/{id}/verify-otp [post]
// @Security BearerAuth
func (h *RequestController) VerifyOTP(c *gin.Context) {
	claims := middelware.ClaimsFromContext(c)

	var body models.VerifyOTPRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}
	if err := utils.ValidateStruct(&body); err != nil {
		respondBindError(c, err)
		return
	}

	req, err := h.lifecycle.VerifyOTP(c.Request.Context(), claims.ActorID, c.Param("id"), body.OTP)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(http.StatusOK, "Service completed", req))
}

// CancelByCustomer handles POST /api/v1/requests/:id/cancel
// @Summary Cancel my service request
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} models.APIResponse "Cancelled"
// @Failure 403 {object} models.APIResponse "Forbidden - Cannot cancel after approval"
// @Failure 409 {object} models.APIResponse "Conflict - Already closed"
// @Router /requests/{id}/cancel [post]
// @Security BearerAuth
func (h *RequestController) CancelByCustomer(c *gin.Context) {
	claims := middelware.ClaimsFromContext(c)

	req, err := h.lifecycle.CancelByCustomer(c.Request.Context(), claims.ActorID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(http.StatusOK, "Request cancelled", req))
}

// CancelByTechnician handles POST /api/v1/requests/:id/cancel-technician
// @Summary Withdraw from an assigned job
// @Description Before travel the job is re-broadcast; while on the way it cancels with penalties
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} models.APIResponse "Cancelled or re-broadcasted"
// @Failure 403 {object} models.APIResponse "Forbidden - Cannot cancel after the estimate"
// @Failure 409 {object} models.APIResponse "Conflict - Already closed"
// @Router /requests/{id}/cancel-technician [post]
// @Security BearerAuth
func (h *RequestController) CancelByTechnician(c *gin.Context) {
	claims := middelware.ClaimsFromContext(c)

	req, err := h.lifecycle.CancelByTechnician(c.Request.Context(), claims.ActorID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(http.StatusOK, "Request updated", req))
}
