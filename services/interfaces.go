package services

import (
	"context"
	"electrocare-backend/models"
)

// DispatchServiceInterface is the intake surface consumed by the controller
type DispatchServiceInterface interface {
	CreateRequest(ctx context.Context, userID string, in *models.CreateRequestRequest) (*models.CreateRequestResponse, error)
}

// LifecycleServiceInterface is the post-intake surface consumed by the controller
type LifecycleServiceInterface interface {
	Accept(ctx context.Context, technicianID, requestID string) (*models.ServiceRequest, error)
	MarkOnTheWay(ctx context.Context, technicianID, requestID string) (*models.ServiceRequest, error)
	SubmitEstimate(ctx context.Context, technicianID, requestID string, estimatedCost int) (*models.ServiceRequest, error)
	ApproveEstimate(ctx context.Context, userID, requestID string) (*models.ServiceRequest, error)
	CompleteService(ctx context.Context, technicianID, requestID string) (*models.ServiceRequest, error)
	VerifyOTP(ctx context.Context, technicianID, requestID, otp string) (*models.ServiceRequest, error)
	CancelByCustomer(ctx context.Context, userID, requestID string) (*models.ServiceRequest, error)
	CancelByTechnician(ctx context.Context, technicianID, requestID string) (*models.ServiceRequest, error)
	ListCustomerRequests(ctx context.Context, userID string) ([]*models.ServiceRequest, error)
	TechnicianInbox(ctx context.Context, technicianID string) (*models.TechnicianInbox, error)
	GetRequestForActor(ctx context.Context, actorID string, role models.ActorRole, requestID string) (*models.ServiceRequest, error)
}
