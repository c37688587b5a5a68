package repository

import (
	"electrocare-backend/dal"
	"electrocare-backend/models"
	"electrocare-backend/utils/logger"
	"fmt"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var condNamePattern = regexp.MustCompile(`#([A-Za-z0-9_]+)`)

// Repository bundles the per-entity repositories over one database client.
type Repository struct {
	Request      *RequestRepository
	Queue        *QueueRepository
	Technician   *TechnicianRepository
	User         *UserRepository
	Subscription *SubscriptionRepository
	Transaction  *TransactionRepository
}

func NewRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *Repository {
	return &Repository{
		Request:      NewRequestRepository(db, cfg, log),
		Queue:        NewQueueRepository(db, cfg, log),
		Technician:   NewTechnicianRepository(db, cfg, log),
		User:         NewUserRepository(db, cfg, log),
		Subscription: NewSubscriptionRepository(db, cfg, log),
		Transaction:  NewTransactionRepository(db, cfg, log),
	}
}

// buildUpdateTx assembles one transactional Update item. Set fields go into a
// SET clause, integer deltas into an ADD clause, and the optional condition
// guards the whole group: if it fails, the engine reports a settlement
// failure instead of committing a partial transition.
func buildUpdateTx(table, keyName, keyValue string, sets map[string]interface{}, adds map[string]int, condition string, conditionValues map[string]interface{}) (types.TransactWriteItem, error) {
	names := make(map[string]string)
	values := make(map[string]types.AttributeValue)

	expr := ""
	i := 0
	for field, value := range sets {
		if i == 0 {
			expr += "SET "
		} else {
			expr += ", "
		}
		names["#s"+field] = field
		av, err := attributevalue.Marshal(value)
		if err != nil {
			return types.TransactWriteItem{}, fmt.Errorf("marshal %s: %w", field, err)
		}
		values[":s"+field] = av
		expr += "#s" + field + " = :s" + field
		i++
	}

	i = 0
	for field, delta := range adds {
		if i == 0 {
			if expr != "" {
				expr += " "
			}
			expr += "ADD "
		} else {
			expr += ", "
		}
		names["#a"+field] = field
		av, err := attributevalue.Marshal(delta)
		if err != nil {
			return types.TransactWriteItem{}, fmt.Errorf("marshal %s: %w", field, err)
		}
		values[":a"+field] = av
		expr += "#a" + field + " :a" + field
		i++
	}

	for placeholder, value := range conditionValues {
		av, err := attributevalue.Marshal(value)
		if err != nil {
			return types.TransactWriteItem{}, fmt.Errorf("marshal condition value %s: %w", placeholder, err)
		}
		values[placeholder] = av
	}

	for _, name := range condNamePattern.FindAllStringSubmatch(condition, -1) {
		if _, ok := names["#"+name[1]]; !ok {
			names["#"+name[1]] = name[1]
		}
	}

	update := &types.Update{
		TableName: aws.String(table),
		Key: map[string]types.AttributeValue{
			keyName: &types.AttributeValueMemberS{Value: keyValue},
		},
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeValues: values,
	}
	if len(names) > 0 {
		update.ExpressionAttributeNames = names
	}
	if condition != "" {
		update.ConditionExpression = aws.String(condition)
	}

	return types.TransactWriteItem{Update: update}, nil
}

// buildPutTx assembles one transactional Put item.
func buildPutTx(table string, item interface{}) (types.TransactWriteItem, error) {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("marshal item: %w", err)
	}
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName: aws.String(table),
			Item:      av,
		},
	}, nil
}
