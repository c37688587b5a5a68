package repository

import (
	"context"
	"electrocare-backend/dal"
	"electrocare-backend/models"
	"electrocare-backend/utils"
	"electrocare-backend/utils/logger"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type TransactionRepository struct {
	db     dal.DatabaseClientInterface
	config *models.Config
	logger logger.Logger
}

func NewTransactionRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		config: cfg,
		logger: log,
	}
}

func (r *TransactionRepository) table() string {
	return r.config.DynamoDBTablePrefix + "_transactions"
}

// Record appends one ledger entry outside a settlement group.
func (r *TransactionRepository) Record(ctx context.Context, txn *models.Transaction) error {
	item, err := r.TxRecord(txn)
	if err != nil {
		return err
	}
	return r.db.TransactWriteItems(ctx, []types.TransactWriteItem{item})
}

// TxRecord builds the ledger leg of a settlement transaction. Entries are
// append-only; nothing in the engine mutates or deletes them.
func (r *TransactionRepository) TxRecord(txn *models.Transaction) (types.TransactWriteItem, error) {
	if txn.TransactionID == "" {
		txn.TransactionID = utils.GenerateUUID()
	}
	if txn.Status == "" {
		txn.Status = models.TransactionSuccess
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}
	return buildPutTx(r.table(), txn)
}

// GetByRequest returns every ledger entry linked to one request.
func (r *TransactionRepository) GetByRequest(ctx context.Context, requestID string) ([]*models.Transaction, error) {
	var txns []*models.Transaction
	err := r.db.QueryByIndex(ctx, r.table(), "requestID-index", "relatedRequestID", requestID, &txns)
	if err != nil {
		r.logger.Errorf("Failed to get transactions for request %s: %v", requestID, err)
		return nil, err
	}
	return txns, nil
}
