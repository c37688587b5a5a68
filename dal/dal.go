package dal

import (
	"context"
	"electrocare-backend/models"
	"errors"
	"fmt"
	"regexp"

	"electrocare-backend/utils/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var attrNamePattern = regexp.MustCompile(`#([A-Za-z0-9_]+)`)

// ErrConditionFailed is returned when a conditional write loses its race:
// the stored item no longer matches the condition expression.
var ErrConditionFailed = errors.New("conditional write failed")

// ErrTransactionCanceled is returned when a grouped settlement write could
// not be applied as a unit.
var ErrTransactionCanceled = errors.New("transaction canceled")

type DynamoDBClient struct {
	client *dynamodb.Client
	config *models.Config
	logger logger.Logger
}

// NewDynamoDBClient creates a new DynamoDB client
func NewDynamoDBClient(cfg *models.Config, log logger.Logger) (*DynamoDBClient, error) {
	awsCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Override endpoint for local DynamoDB
	if cfg.DynamoDBEndpoint != "" {
		awsCfg.EndpointResolver = aws.EndpointResolverFunc(func(service, region string) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:           cfg.DynamoDBEndpoint,
				SigningRegion: cfg.AWSRegion,
			}, nil
		})
	}

	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		awsCfg.Credentials = aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		))
	}

	client := dynamodb.NewFromConfig(awsCfg)

	dbClient := &DynamoDBClient{
		client: client,
		config: cfg,
		logger: log,
	}

	log.Info("DynamoDB client initialized successfully")
	return dbClient, nil
}

// GetItem retrieves an item by key or index query, depending on the config
func (db *DynamoDBClient) GetItem(ctx context.Context, qc models.QueryConfig, result interface{}) error {
	if qc.IndexName != "" {
		items, err := db.queryRaw(ctx, qc)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return attributevalue.UnmarshalMap(items[0], result)
	}

	input := &dynamodb.GetItemInput{
		TableName: aws.String(qc.TableName),
		Key: map[string]types.AttributeValue{
			qc.KeyName: &types.AttributeValueMemberS{Value: qc.KeyValue},
		},
	}

	output, err := db.client.GetItem(ctx, input)
	if err != nil {
		db.logger.Errorf("Failed to get item: %v", err)
		return err
	}

	if output.Item == nil {
		return nil
	}

	return attributevalue.UnmarshalMap(output.Item, result)
}

// PutItem stores an item in DynamoDB
func (db *DynamoDBClient) PutItem(ctx context.Context, tableName string, item interface{}) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      av,
	}

	_, err = db.client.PutItem(ctx, input)
	return err
}

// UpdateItem updates named fields on an item
func (db *DynamoDBClient) UpdateItem(ctx context.Context, tableName, key, keyValue string, updates map[string]interface{}) error {
	return db.ConditionalUpdateItem(ctx, tableName, key, keyValue, updates, "", nil)
}

// ConditionalUpdateItem updates named fields only while the condition
// expression holds. Condition values may reference the ":cond_" namespace to
// avoid colliding with the generated update values. Returns
// ErrConditionFailed when the stored item no longer matches.
func (db *DynamoDBClient) ConditionalUpdateItem(ctx context.Context, tableName, key, keyValue string, updates map[string]interface{}, condition string, conditionValues map[string]interface{}) error {
	updateExpression := "SET "
	expressionAttributeNames := make(map[string]string)
	expressionAttributeValues := make(map[string]types.AttributeValue)

	i := 0
	for field, value := range updates {
		if i > 0 {
			updateExpression += ", "
		}

		attrName := "#" + field
		attrValue := ":" + field

		updateExpression += attrName + " = " + attrValue
		expressionAttributeNames[attrName] = field

		av, err := attributevalue.Marshal(value)
		if err != nil {
			return err
		}
		expressionAttributeValues[attrValue] = av
		i++
	}

	for placeholder, value := range conditionValues {
		av, err := attributevalue.Marshal(value)
		if err != nil {
			return err
		}
		expressionAttributeValues[placeholder] = av
	}

	// Register placeholder names referenced only by the condition, so guards
	// can touch attributes (like reserved words) the update does not set.
	for _, name := range attrNamePattern.FindAllStringSubmatch(condition, -1) {
		if _, ok := expressionAttributeNames["#"+name[1]]; !ok {
			expressionAttributeNames["#"+name[1]] = name[1]
		}
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(tableName),
		Key: map[string]types.AttributeValue{
			key: &types.AttributeValueMemberS{Value: keyValue},
		},
		UpdateExpression:          aws.String(updateExpression),
		ExpressionAttributeNames:  expressionAttributeNames,
		ExpressionAttributeValues: expressionAttributeValues,
		ReturnValues:              types.ReturnValueAllNew,
	}
	if condition != "" {
		input.ConditionExpression = aws.String(condition)
	}

	_, err := db.client.UpdateItem(ctx, input)
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrConditionFailed
		}
		return err
	}
	return nil
}

// TransactWriteItems applies a group of writes atomically. Settlement uses
// this so a status flip is never committed without its paired wallet deltas
// and transaction records.
func (db *DynamoDBClient) TransactWriteItems(ctx context.Context, items []types.TransactWriteItem) error {
	if len(items) == 0 {
		return nil
	}

	_, err := db.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			db.logger.Errorf("Transaction canceled: %v", tce.CancellationReasons)
			for _, reason := range tce.CancellationReasons {
				if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
					return ErrConditionFailed
				}
			}
			return ErrTransactionCanceled
		}
		return err
	}
	return nil
}

// DeleteItem deletes an item from DynamoDB
func (db *DynamoDBClient) DeleteItem(ctx context.Context, tableName, key, value string) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(tableName),
		Key: map[string]types.AttributeValue{
			key: &types.AttributeValueMemberS{Value: value},
		},
	}

	_, err := db.client.DeleteItem(ctx, input)
	return err
}

// QueryByIndex queries items using a global secondary index
func (db *DynamoDBClient) QueryByIndex(ctx context.Context, tableName, indexName, keyName, keyValue string, results interface{}) error {
	items, err := db.queryRaw(ctx, models.QueryConfig{
		TableName: tableName,
		IndexName: indexName,
		KeyName:   keyName,
		KeyValue:  keyValue,
	})
	if err != nil {
		return err
	}

	return attributevalue.UnmarshalListOfMaps(items, results)
}

func (db *DynamoDBClient) queryRaw(ctx context.Context, qc models.QueryConfig) ([]map[string]types.AttributeValue, error) {
	limit := qc.Limit
	if limit == 0 {
		limit = 50
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(qc.TableName),
		Limit:                  aws.Int32(limit),
		KeyConditionExpression: aws.String("#kn0 = :kv0"),
		ExpressionAttributeNames: map[string]string{
			"#kn0": qc.KeyName,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":kv0": &types.AttributeValueMemberS{Value: qc.KeyValue},
		},
	}
	if qc.IndexName != "" {
		input.IndexName = aws.String(qc.IndexName)
	}

	output, err := db.client.Query(ctx, input)
	if err != nil {
		return nil, err
	}
	return output.Items, nil
}

// Scan scans the entire table
func (db *DynamoDBClient) Scan(ctx context.Context, tableName string, results interface{}) error {
	input := &dynamodb.ScanInput{
		TableName: aws.String(tableName),
	}

	output, err := db.client.Scan(ctx, input)
	if err != nil {
		return err
	}

	return attributevalue.UnmarshalListOfMaps(output.Items, results)
}

// ScanTable scans a table (alias for Scan)
func (db *DynamoDBClient) ScanTable(ctx context.Context, tableName string, results interface{}) error {
	return db.Scan(ctx, tableName, results)
}

// CreateTable creates a table
func (db *DynamoDBClient) CreateTable(ctx context.Context, input *dynamodb.CreateTableInput) error {
	_, err := db.client.CreateTable(ctx, input)
	return err
}

// DescribeTable describes a table
func (db *DynamoDBClient) DescribeTable(ctx context.Context, tableName string) (*dynamodb.DescribeTableOutput, error) {
	input := &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	}
	return db.client.DescribeTable(ctx, input)
}
