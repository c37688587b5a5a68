package services

import (
	"context"
	"electrocare-backend/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/mock"
)

// MockDBClient implements dal.DatabaseClientInterface for testing
type MockDBClient struct {
	mock.Mock
}

func (m *MockDBClient) GetItem(ctx context.Context, config models.QueryConfig, result interface{}) error {
	args := m.Called(ctx, config, result)
	return args.Error(0)
}

func (m *MockDBClient) PutItem(ctx context.Context, tableName string, item interface{}) error {
	args := m.Called(ctx, tableName, item)
	return args.Error(0)
}

func (m *MockDBClient) UpdateItem(ctx context.Context, tableName, key, keyValue string, updates map[string]interface{}) error {
	args := m.Called(ctx, tableName, key, keyValue, updates)
	return args.Error(0)
}

func (m *MockDBClient) ConditionalUpdateItem(ctx context.Context, tableName, key, keyValue string, updates map[string]interface{}, condition string, conditionValues map[string]interface{}) error {
	args := m.Called(ctx, tableName, key, keyValue, updates, condition, conditionValues)
	return args.Error(0)
}

func (m *MockDBClient) DeleteItem(ctx context.Context, tableName, key, value string) error {
	args := m.Called(ctx, tableName, key, value)
	return args.Error(0)
}

func (m *MockDBClient) TransactWriteItems(ctx context.Context, items []types.TransactWriteItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockDBClient) QueryByIndex(ctx context.Context, tableName, indexName, keyName, keyValue string, results interface{}) error {
	args := m.Called(ctx, tableName, indexName, keyName, keyValue, results)
	return args.Error(0)
}

func (m *MockDBClient) Scan(ctx context.Context, tableName string, results interface{}) error {
	args := m.Called(ctx, tableName, results)
	return args.Error(0)
}

func (m *MockDBClient) ScanTable(ctx context.Context, tableName string, results interface{}) error {
	args := m.Called(ctx, tableName, results)
	return args.Error(0)
}

func (m *MockDBClient) CreateTable(ctx context.Context, input *dynamodb.CreateTableInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockDBClient) DescribeTable(ctx context.Context, tableName string) (*dynamodb.DescribeTableOutput, error) {
	args := m.Called(ctx, tableName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.DescribeTableOutput), args.Error(1)
}

// MockRequestRepo implements repository.RequestRepositoryInterface
type MockRequestRepo struct {
	mock.Mock
}

func (m *MockRequestRepo) CreateRequest(ctx context.Context, req *models.ServiceRequest) (*models.ServiceRequest, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRequest), args.Error(1)
}

func (m *MockRequestRepo) TxCreate(req *models.ServiceRequest) (types.TransactWriteItem, error) {
	args := m.Called(req)
	return args.Get(0).(types.TransactWriteItem), args.Error(1)
}

func (m *MockRequestRepo) GetRequest(ctx context.Context, id string) (*models.ServiceRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRequest), args.Error(1)
}

func (m *MockRequestRepo) GetRequestsByUser(ctx context.Context, userID string) ([]*models.ServiceRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ServiceRequest), args.Error(1)
}

func (m *MockRequestRepo) GetRequestsByTechnician(ctx context.Context, technicianID string) ([]*models.ServiceRequest, error) {
	args := m.Called(ctx, technicianID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ServiceRequest), args.Error(1)
}

func (m *MockRequestRepo) AcceptRequest(ctx context.Context, requestID, technicianID string) error {
	args := m.Called(ctx, requestID, technicianID)
	return args.Error(0)
}

func (m *MockRequestRepo) TransitionStatus(ctx context.Context, requestID string, updates map[string]interface{}, condition string, conditionValues map[string]interface{}) error {
	args := m.Called(ctx, requestID, updates, condition, conditionValues)
	return args.Error(0)
}

func (m *MockRequestRepo) HasSlotConflict(ctx context.Context, technicianID, scheduledDate string, slot models.PreferredSlot) (bool, error) {
	args := m.Called(ctx, technicianID, scheduledDate, slot)
	return args.Bool(0), args.Error(1)
}

func (m *MockRequestRepo) TxTransition(requestID string, sets map[string]interface{}, condition string, conditionValues map[string]interface{}) (types.TransactWriteItem, error) {
	args := m.Called(requestID, sets, condition, conditionValues)
	return args.Get(0).(types.TransactWriteItem), args.Error(1)
}

// MockQueueRepo implements repository.QueueRepositoryInterface
type MockQueueRepo struct {
	mock.Mock
}

func (m *MockQueueRepo) Populate(ctx context.Context, requestID string, technicianIDs []string) error {
	args := m.Called(ctx, requestID, technicianIDs)
	return args.Error(0)
}

func (m *MockQueueRepo) MarkResponded(ctx context.Context, requestID, technicianID string, status models.QueueResponseStatus) error {
	args := m.Called(ctx, requestID, technicianID, status)
	return args.Error(0)
}

func (m *MockQueueRepo) GetPendingForTechnician(ctx context.Context, technicianID string) ([]*models.QueueEntry, error) {
	args := m.Called(ctx, technicianID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QueueEntry), args.Error(1)
}

func (m *MockQueueRepo) GetEntriesForRequest(ctx context.Context, requestID string) ([]*models.QueueEntry, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QueueEntry), args.Error(1)
}

// MockTechnicianRepo implements repository.TechnicianRepositoryInterface
type MockTechnicianRepo struct {
	mock.Mock
}

func (m *MockTechnicianRepo) GetTechnician(ctx context.Context, id string) (*models.Technician, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Technician), args.Error(1)
}

func (m *MockTechnicianRepo) ListBroadcastable(ctx context.Context) ([]*models.Technician, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Technician), args.Error(1)
}

func (m *MockTechnicianRepo) ListByPincode(ctx context.Context, pincode string) ([]*models.Technician, error) {
	args := m.Called(ctx, pincode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Technician), args.Error(1)
}

func (m *MockTechnicianRepo) SetAvailability(ctx context.Context, id string, status models.TechnicianStatus, available bool) error {
	args := m.Called(ctx, id, status, available)
	return args.Error(0)
}

func (m *MockTechnicianRepo) TxAdjust(id string, sets map[string]interface{}, adds map[string]int) (types.TransactWriteItem, error) {
	args := m.Called(id, sets, adds)
	return args.Get(0).(types.TransactWriteItem), args.Error(1)
}

// MockUserRepo implements repository.UserRepositoryInterface
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetUser(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) TxAdjust(id string, adds map[string]int) (types.TransactWriteItem, error) {
	args := m.Called(id, adds)
	return args.Get(0).(types.TransactWriteItem), args.Error(1)
}

// MockSubscriptionRepo implements repository.SubscriptionRepositoryInterface
type MockSubscriptionRepo struct {
	mock.Mock
}

func (m *MockSubscriptionRepo) GetActiveForUser(ctx context.Context, userID string) (*models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepo) AdjustCounters(ctx context.Context, subscriptionID string, freeDelta, totalDelta int) error {
	args := m.Called(ctx, subscriptionID, freeDelta, totalDelta)
	return args.Error(0)
}

func (m *MockSubscriptionRepo) TxAdjustCounters(subscriptionID string, freeDelta, totalDelta int) (types.TransactWriteItem, error) {
	args := m.Called(subscriptionID, freeDelta, totalDelta)
	return args.Get(0).(types.TransactWriteItem), args.Error(1)
}

// MockTransactionRepo implements repository.TransactionRepositoryInterface
type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) Record(ctx context.Context, txn *models.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepo) TxRecord(txn *models.Transaction) (types.TransactWriteItem, error) {
	args := m.Called(txn)
	return args.Get(0).(types.TransactWriteItem), args.Error(1)
}

func (m *MockTransactionRepo) GetByRequest(ctx context.Context, requestID string) ([]*models.Transaction, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

// noopLogger satisfies logger.Logger without recording anything.
type noopLogger struct{}

func (noopLogger) Debug(args ...interface{})                 {}
func (noopLogger) Info(args ...interface{})                  {}
func (noopLogger) Warn(args ...interface{})                  {}
func (noopLogger) Error(args ...interface{})                 {}
func (noopLogger) Debugf(format string, args ...interface{}) {}
func (noopLogger) Infof(format string, args ...interface{})  {}
func (noopLogger) Warnf(format string, args ...interface{})  {}
func (noopLogger) Errorf(format string, args ...interface{}) {}
func (noopLogger) Fatal(args ...interface{})                 {}
func (noopLogger) Fatalf(format string, args ...interface{}) {}
