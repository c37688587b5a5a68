package repository

import (
	"context"
	"electrocare-backend/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// RequestRepositoryInterface defines the contract for service request persistence
type RequestRepositoryInterface interface {
	CreateRequest(ctx context.Context, req *models.ServiceRequest) (*models.ServiceRequest, error)
	TxCreate(req *models.ServiceRequest) (types.TransactWriteItem, error)
	GetRequest(ctx context.Context, id string) (*models.ServiceRequest, error)
	GetRequestsByUser(ctx context.Context, userID string) ([]*models.ServiceRequest, error)
	GetRequestsByTechnician(ctx context.Context, technicianID string) ([]*models.ServiceRequest, error)
	AcceptRequest(ctx context.Context, requestID, technicianID string) error
	TransitionStatus(ctx context.Context, requestID string, updates map[string]interface{}, condition string, conditionValues map[string]interface{}) error
	HasSlotConflict(ctx context.Context, technicianID, scheduledDate string, slot models.PreferredSlot) (bool, error)
	TxTransition(requestID string, sets map[string]interface{}, condition string, conditionValues map[string]interface{}) (types.TransactWriteItem, error)
}

// QueueRepositoryInterface defines the contract for broadcast queue persistence
type QueueRepositoryInterface interface {
	Populate(ctx context.Context, requestID string, technicianIDs []string) error
	MarkResponded(ctx context.Context, requestID, technicianID string, status models.QueueResponseStatus) error
	GetPendingForTechnician(ctx context.Context, technicianID string) ([]*models.QueueEntry, error)
	GetEntriesForRequest(ctx context.Context, requestID string) ([]*models.QueueEntry, error)
}

// TechnicianRepositoryInterface defines the contract for technician snapshots
type TechnicianRepositoryInterface interface {
	GetTechnician(ctx context.Context, id string) (*models.Technician, error)
	ListBroadcastable(ctx context.Context) ([]*models.Technician, error)
	ListByPincode(ctx context.Context, pincode string) ([]*models.Technician, error)
	SetAvailability(ctx context.Context, id string, status models.TechnicianStatus, available bool) error
	TxAdjust(id string, sets map[string]interface{}, adds map[string]int) (types.TransactWriteItem, error)
}

// UserRepositoryInterface defines the contract for customer snapshots
type UserRepositoryInterface interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	TxAdjust(id string, adds map[string]int) (types.TransactWriteItem, error)
}

// SubscriptionRepositoryInterface defines the contract for plan snapshots
type SubscriptionRepositoryInterface interface {
	GetActiveForUser(ctx context.Context, userID string) (*models.Subscription, error)
	AdjustCounters(ctx context.Context, subscriptionID string, freeDelta, totalDelta int) error
	TxAdjustCounters(subscriptionID string, freeDelta, totalDelta int) (types.TransactWriteItem, error)
}

// TransactionRepositoryInterface defines the contract for the append-only ledger
type TransactionRepositoryInterface interface {
	Record(ctx context.Context, txn *models.Transaction) error
	TxRecord(txn *models.Transaction) (types.TransactWriteItem, error)
	GetByRequest(ctx context.Context, requestID string) ([]*models.Transaction, error)
}
