package worker

import (
	"context"
	"electrocare-backend/dal"
	"electrocare-backend/infrastructure"
	"electrocare-backend/models"
	"electrocare-backend/utils/logger"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/smithy-go"
)

// InfrastructureSetup provisions the DynamoDB tables the engine depends on:
// service_requests, request_queue, technicians, users, subscriptions and
// transactions, each with its query indexes.
type InfrastructureSetup struct {
	InfrastructureSetup models.InfrastructureSetup
}

// ToModelsInfrastructureSetup returns the embedded models.InfrastructureSetup
func (is *InfrastructureSetup) ToModelsInfrastructureSetup() *models.InfrastructureSetup {
	return &is.InfrastructureSetup
}

// NewInfrastructureSetup creates a new infrastructure setup handler
func NewInfrastructureSetup(cfg *models.Config, log logger.Logger) (*InfrastructureSetup, error) {
	dbClient, err := dal.NewDynamoDBClient(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}

	return &InfrastructureSetup{
		InfrastructureSetup: models.InfrastructureSetup{
			Config:   cfg,
			Logger:   log,
			DBClient: dbClient,
		},
	}, nil
}

// Execute creates every configured table, sequentially to avoid throttling.
func (is *InfrastructureSetup) Execute(ctx context.Context, statusManager *StatusManager) error {
	is.InfrastructureSetup.Logger.Info("Starting table provisioning...")

	if err := statusManager.UpdateProgress(models.StatusCreatingTables, "Creating tables", nil); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	for _, tableName := range is.tableNames() {
		if err := is.createTableWithRetry(ctx, tableName); err != nil {
			is.InfrastructureSetup.Logger.Errorf("Failed to create table %s: %v", tableName, err)
			statusManager.MarkFailed(fmt.Sprintf("Failed to create table %s: %v", tableName, err))
			return err
		}

		statusManager.AddTableCreated(tableName, indexCountFor(tableName))
		is.InfrastructureSetup.Logger.Infof("Table ready: %s", tableName)
	}

	if err := statusManager.UpdateProgress(models.StatusValidating, "Validating tables", nil); err != nil {
		is.InfrastructureSetup.Logger.Errorf("Failed to update status: %v", err)
	}
	if err := is.validateInfrastructure(ctx); err != nil {
		statusManager.MarkFailed(fmt.Sprintf("Validation failed: %v", err))
		return err
	}

	return statusManager.MarkCompleted()
}

// tableNames returns the prefixed table names for this environment.
func (is *InfrastructureSetup) tableNames() []string {
	var names []string
	for _, base := range is.InfrastructureSetup.Config.Tables {
		names = append(names, is.InfrastructureSetup.Config.DynamoDBTablePrefix+"_"+base)
	}
	return names
}

// indexCountFor is the expected GSI count per base table, used during
// validation.
func indexCountFor(tableName string) int {
	switch {
	case strings.HasSuffix(tableName, "service_requests"), strings.HasSuffix(tableName, "request_queue"):
		return 2
	default:
		return 1
	}
}

// createTableWithRetry creates a table with retry logic
func (is *InfrastructureSetup) createTableWithRetry(ctx context.Context, tableName string) error {
	maxRetries := 3
	baseDelay := 5 * time.Second

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * baseDelay
			is.InfrastructureSetup.Logger.Infof("Retrying table creation for %s in %v (attempt %d/%d)",
				tableName, delay, attempt+1, maxRetries+1)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if exists, err := is.tableExists(ctx, tableName); err != nil {
			is.InfrastructureSetup.Logger.Errorf("Failed to check if table exists: %v", err)
			continue
		} else if exists {
			is.InfrastructureSetup.Logger.Infof("Table %s already exists, skipping creation", tableName)
			return nil
		}

		if err := is.createTableFromEmbeddedJSON(ctx, tableName); err != nil {
			is.InfrastructureSetup.Logger.Errorf("Attempt %d failed to create table %s: %v", attempt+1, tableName, err)
			if attempt == maxRetries {
				return fmt.Errorf("failed to create table %s after %d attempts: %w", tableName, maxRetries+1, err)
			}
			continue
		}

		return nil
	}

	return fmt.Errorf("exhausted all retry attempts for table %s", tableName)
}

func (is *InfrastructureSetup) createTableFromEmbeddedJSON(ctx context.Context, tableName string) error {
	input, err := infrastructure.GetTables(tableName)
	if err != nil {
		return fmt.Errorf("failed to get table input: %w", err)
	}
	if err := is.InfrastructureSetup.DBClient.CreateTable(ctx, input); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// isTableNotFoundError checks if error indicates table not found
func isTableNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "ResourceNotFoundException"
	}

	errorStr := err.Error()
	return strings.Contains(errorStr, "ResourceNotFoundException") ||
		strings.Contains(errorStr, "Table not found") ||
		strings.Contains(errorStr, "Requested resource not found")
}

// tableExists checks if a table already exists
func (is *InfrastructureSetup) tableExists(ctx context.Context, tableName string) (bool, error) {
	_, err := is.InfrastructureSetup.DBClient.DescribeTable(ctx, tableName)
	if err != nil {
		if isTableNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// validateInfrastructure checks every table is active with the expected
// index count.
func (is *InfrastructureSetup) validateInfrastructure(ctx context.Context) error {
	is.InfrastructureSetup.Logger.Info("Validating provisioned tables")

	for _, tableName := range is.tableNames() {
		desc, err := is.InfrastructureSetup.DBClient.DescribeTable(ctx, tableName)
		if err != nil {
			return fmt.Errorf("table %s validation failed: %w", tableName, err)
		}

		if desc.Table.TableStatus != "ACTIVE" {
			return fmt.Errorf("table %s is not active: %s", tableName, desc.Table.TableStatus)
		}

		expected := indexCountFor(tableName)
		actual := len(desc.Table.GlobalSecondaryIndexes)
		if actual != expected {
			return fmt.Errorf("table %s has %d indexes, expected %d", tableName, actual, expected)
		}

		is.InfrastructureSetup.Logger.Infof("Table %s validation passed", tableName)
	}

	is.InfrastructureSetup.Logger.Info("Table validation completed successfully")
	return nil
}
