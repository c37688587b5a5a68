package repository

import (
	"context"
	"electrocare-backend/dal"
	"electrocare-backend/models"
	"electrocare-backend/utils/logger"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type UserRepository struct {
	db     dal.DatabaseClientInterface
	config *models.Config
	logger logger.Logger
}

func NewUserRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		config: cfg,
		logger: log,
	}
}

func (r *UserRepository) table() string {
	return r.config.DynamoDBTablePrefix + "_users"
}

func (r *UserRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	if id == "" {
		return nil, models.NewValidation("user ID is required")
	}

	user := models.User{}
	err := r.db.GetItem(ctx, models.QueryConfig{
		TableName: r.table(),
		KeyName:   "userID",
		KeyValue:  id,
		KeyType:   models.StringType,
	}, &user)
	if err != nil {
		r.logger.Errorf("Failed to get user %s: %v", id, err)
		return nil, err
	}

	if user.UserID == "" {
		return nil, models.NewNotFound("user not found")
	}

	return &user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := models.User{}
	err := r.db.GetItem(ctx, models.QueryConfig{
		TableName: r.table(),
		IndexName: "email-index",
		KeyName:   "email",
		KeyValue:  email,
		KeyType:   models.StringType,
	}, &user)
	if err != nil {
		return nil, err
	}
	if user.UserID == "" {
		return nil, models.NewNotFound("user not found")
	}
	return &user, nil
}

// TxAdjust builds the user-table leg of a settlement transaction: wallet
// refunds and loyalty penalties move with the rest of the group.
func (r *UserRepository) TxAdjust(id string, adds map[string]int) (types.TransactWriteItem, error) {
	return buildUpdateTx(r.table(), "userID", id, map[string]interface{}{
		"updatedAt": time.Now(),
	}, adds, "", nil)
}
