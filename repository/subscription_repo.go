package repository

import (
	"context"
	"electrocare-backend/dal"
	"electrocare-backend/models"
	"electrocare-backend/utils/logger"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type SubscriptionRepository struct {
	db     dal.DatabaseClientInterface
	config *models.Config
	logger logger.Logger
}

func NewSubscriptionRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *SubscriptionRepository {
	return &SubscriptionRepository{
		db:     db,
		config: cfg,
		logger: log,
	}
}

func (r *SubscriptionRepository) table() string {
	return r.config.DynamoDBTablePrefix + "_subscriptions"
}

// GetActiveForUser returns the user's current subscription, or nil when the
// user has none (basic-plan behavior, not an error).
func (r *SubscriptionRepository) GetActiveForUser(ctx context.Context, userID string) (*models.Subscription, error) {
	var subs []*models.Subscription
	err := r.db.QueryByIndex(ctx, r.table(), "userID-index", "userID", userID, &subs)
	if err != nil {
		r.logger.Errorf("Failed to query subscriptions for user %s: %v", userID, err)
		return nil, err
	}

	now := time.Now()
	for _, sub := range subs {
		if sub.IsCurrent(now) {
			return sub, nil
		}
	}
	return nil, nil
}

// AdjustCounters moves the visit counters outside a settlement group
// (intake path).
func (r *SubscriptionRepository) AdjustCounters(ctx context.Context, subscriptionID string, freeDelta, totalDelta int) error {
	item, err := r.TxAdjustCounters(subscriptionID, freeDelta, totalDelta)
	if err != nil {
		return err
	}
	return r.db.TransactWriteItems(ctx, []types.TransactWriteItem{item})
}

// TxAdjustCounters builds the counter leg of a settlement transaction.
// Free and total counters move together: a free visit is always a visit.
func (r *SubscriptionRepository) TxAdjustCounters(subscriptionID string, freeDelta, totalDelta int) (types.TransactWriteItem, error) {
	adds := map[string]int{}
	if freeDelta != 0 {
		adds["freeVisitsUsed"] = freeDelta
	}
	if totalDelta != 0 {
		adds["totalVisitsUsed"] = totalDelta
	}
	return buildUpdateTx(r.table(), "subscriptionID", subscriptionID, map[string]interface{}{
		"updatedAt": time.Now(),
	}, adds, "", nil)
}
