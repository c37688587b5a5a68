package repository

import (
	"context"
	"electrocare-backend/dal"
	"electrocare-backend/models"
	"electrocare-backend/utils"
	"electrocare-backend/utils/logger"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type RequestRepository struct {
	db     dal.DatabaseClientInterface
	config *models.Config
	logger logger.Logger
}

func NewRequestRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *RequestRepository {
	return &RequestRepository{
		db:     db,
		config: cfg,
		logger: log,
	}
}

func (r *RequestRepository) table() string {
	return r.config.DynamoDBTablePrefix + "_service_requests"
}

func (r *RequestRepository) CreateRequest(ctx context.Context, req *models.ServiceRequest) (*models.ServiceRequest, error) {
	now := time.Now()
	req.RequestID = utils.GenerateUUID()
	req.CreatedAt = now
	req.UpdatedAt = now

	r.logger.Infof("Creating service request %s for user %s", req.RequestID, req.UserID)

	if err := r.db.PutItem(ctx, r.table(), req); err != nil {
		r.logger.Errorf("Failed to create service request: %v", err)
		return nil, err
	}

	return req, nil
}

// TxCreate builds a transactional Put for a new request so intake can commit
// the request together with its fee movement. The caller receives the filled
// RequestID before the group is executed.
func (r *RequestRepository) TxCreate(req *models.ServiceRequest) (types.TransactWriteItem, error) {
	now := time.Now()
	req.RequestID = utils.GenerateUUID()
	req.CreatedAt = now
	req.UpdatedAt = now
	return buildPutTx(r.table(), req)
}

func (r *RequestRepository) GetRequest(ctx context.Context, id string) (*models.ServiceRequest, error) {
	if id == "" {
		return nil, models.NewValidation("request ID is required")
	}

	req := models.ServiceRequest{}
	err := r.db.GetItem(ctx, models.QueryConfig{
		TableName: r.table(),
		KeyName:   "requestID",
		KeyValue:  id,
		KeyType:   models.StringType,
	}, &req)
	if err != nil {
		r.logger.Errorf("Failed to get service request %s: %v", id, err)
		return nil, fmt.Errorf("failed to get service request: %w", err)
	}

	if req.RequestID == "" {
		return nil, models.NewNotFound("service request not found")
	}

	return &req, nil
}

func (r *RequestRepository) GetRequestsByUser(ctx context.Context, userID string) ([]*models.ServiceRequest, error) {
	var requests []*models.ServiceRequest
	err := r.db.QueryByIndex(ctx, r.table(), "userID-index", "userID", userID, &requests)
	if err != nil {
		r.logger.Errorf("Failed to get requests for user %s: %v", userID, err)
		return nil, err
	}
	return requests, nil
}

func (r *RequestRepository) GetRequestsByTechnician(ctx context.Context, technicianID string) ([]*models.ServiceRequest, error) {
	var requests []*models.ServiceRequest
	err := r.db.QueryByIndex(ctx, r.table(), "technicianID-index", "technicianID", technicianID, &requests)
	if err != nil {
		r.logger.Errorf("Failed to get requests for technician %s: %v", technicianID, err)
		return nil, err
	}
	return requests, nil
}

// AcceptRequest is the race-sensitive assignment write: one conditional
// update that only succeeds while the request is still unassigned and in a
// broadcastable status. Losers get Conflict, never a partial assignment.
func (r *RequestRepository) AcceptRequest(ctx context.Context, requestID, technicianID string) error {
	now := time.Now()
	err := r.db.ConditionalUpdateItem(ctx, r.table(), "requestID", requestID,
		map[string]interface{}{
			"status":       models.RequestStatusAccepted,
			"technicianID": technicianID,
			"acceptedAt":   now,
			"updatedAt":    now,
		},
		"(#status = :cond_pending OR #status = :cond_broadcasted) AND (attribute_not_exists(#technicianID) OR #technicianID = :cond_empty)",
		map[string]interface{}{
			":cond_pending":     models.RequestStatusPending,
			":cond_broadcasted": models.RequestStatusBroadcasted,
			":cond_empty":       "",
		},
	)
	if errors.Is(err, dal.ErrConditionFailed) {
		return models.NewConflict("service request already accepted or no longer available")
	}
	return err
}

// TransitionStatus applies a guarded field update. The condition expression
// re-checks the prior status (and any ownership attribute) inside the write,
// so stale re-submissions fail with Conflict instead of double-applying.
func (r *RequestRepository) TransitionStatus(ctx context.Context, requestID string, updates map[string]interface{}, condition string, conditionValues map[string]interface{}) error {
	if _, ok := updates["updatedAt"]; !ok {
		updates["updatedAt"] = time.Now()
	}
	err := r.db.ConditionalUpdateItem(ctx, r.table(), "requestID", requestID, updates, condition, conditionValues)
	if errors.Is(err, dal.ErrConditionFailed) {
		return models.NewConflict("service request is no longer in the expected state")
	}
	return err
}

// HasSlotConflict reports whether the technician already holds an active job
// at the same (scheduled date, slot) pair.
func (r *RequestRepository) HasSlotConflict(ctx context.Context, technicianID, scheduledDate string, slot models.PreferredSlot) (bool, error) {
	jobs, err := r.GetRequestsByTechnician(ctx, technicianID)
	if err != nil {
		return false, err
	}

	for _, job := range jobs {
		if job.ScheduledDate != scheduledDate || job.PreferredSlot != slot {
			continue
		}
		for _, st := range models.ActiveAssignmentStatuses {
			if job.Status == st {
				return true, nil
			}
		}
	}
	return false, nil
}

// TxTransition builds the request-table leg of a settlement transaction:
// a guarded status update that the grouped write commits or rejects as a
// unit with the money movements.
func (r *RequestRepository) TxTransition(requestID string, sets map[string]interface{}, condition string, conditionValues map[string]interface{}) (types.TransactWriteItem, error) {
	if _, ok := sets["updatedAt"]; !ok {
		sets["updatedAt"] = time.Now()
	}
	return buildUpdateTx(r.table(), "requestID", requestID, sets, nil, condition, conditionValues)
}
