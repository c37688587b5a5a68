package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractBaseTableName(t *testing.T) {
	assert.Equal(t, "service_requests", extractBaseTableName("dev_service_requests"))
	assert.Equal(t, "request_queue", extractBaseTableName("prod_request_queue"))
	assert.Equal(t, "users", extractBaseTableName("dev_users"))
	assert.Equal(t, "users", extractBaseTableName("users"))
}

func TestGetTablesAppliesPrefix(t *testing.T) {
	input, err := GetTables("dev_service_requests")

	assert.NoError(t, err)
	assert.Equal(t, "dev_service_requests", *input.TableName)
	assert.NotEmpty(t, input.KeySchema)
	assert.Equal(t, "requestID", *input.KeySchema[0].AttributeName)
	assert.Len(t, input.GlobalSecondaryIndexes, 2)
}

func TestGetTablesUnknownTable(t *testing.T) {
	_, err := GetTables("dev_no_such_table")
	assert.Error(t, err)
}

func TestGetTablesAllConfiguredTables(t *testing.T) {
	gsiCounts := map[string]int{
		"dev_service_requests": 2,
		"dev_request_queue":    2,
		"dev_technicians":      1,
		"dev_users":            1,
		"dev_subscriptions":    1,
		"dev_transactions":     1,
	}

	for name, want := range gsiCounts {
		input, err := GetTables(name)
		assert.NoError(t, err, name)
		assert.Len(t, input.GlobalSecondaryIndexes, want, name)
		assert.NotNil(t, input.ProvisionedThroughput, name)
	}
}
