package models

import (
	"context"
	"electrocare-backend/utils/logger"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/robfig/cron"
)

// DBClient interface to avoid circular dependency
type DBClient interface {
	CreateTable(ctx context.Context, input *dynamodb.CreateTableInput) error
	DescribeTable(ctx context.Context, tableName string) (*dynamodb.DescribeTableOutput, error)
}

// StatusManager handles infrastructure setup status tracking
type StatusManager struct {
	StatusFilePath string
}

// LockManager handles distributed locking for infrastructure setup
type LockManager struct {
	LockFilePath string
	LockTimeout  time.Duration
	Environment  string
}

// Worker manages the table-provisioning cron job
type Worker struct {
	Config              *Config
	Logger              logger.Logger
	CronJob             *cron.Cron
	LockManager         *LockManager
	StatusManager       *StatusManager
	InfrastructureSetup *InfrastructureSetup

	WorkerConfig *WorkerConfig
	OwnerID      string
	IsRunning    bool
	StopChan     chan struct{}

	Mu        sync.RWMutex
	Ctx       context.Context
	Cancel    context.CancelFunc
	SetupOnce sync.Once
	StopOnce  sync.Once
}

// InfrastructureSetup handles the actual table creation
type InfrastructureSetup struct {
	Config   *Config
	Logger   logger.Logger
	DBClient DBClient
}

// WorkerConfig holds configuration for the infrastructure worker
type WorkerConfig struct {
	CronSchedule string `json:"cron_schedule"`

	LockTimeout       time.Duration `json:"lock_timeout"`
	LockRetryInterval time.Duration `json:"lock_retry_interval"`

	MaxRetries int           `json:"max_retries"`
	RetryDelay time.Duration `json:"retry_delay"`

	Environment    string   `json:"environment"`
	RequiredTables []string `json:"required_tables"`

	LockFilePath   string `json:"lock_file_path"`
	StatusFilePath string `json:"status_file_path"`

	DryRun  bool `json:"dry_run"`
	RunOnce bool `json:"run_once"`
}

// LockInfo represents distributed lock information
type LockInfo struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	AcquiredAt  time.Time `json:"acquired_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Environment string    `json:"environment"`
}

// WorkerStatus represents the current status of the infrastructure worker
type WorkerStatus string

const (
	StatusIdle            WorkerStatus = "idle"
	StatusRunning         WorkerStatus = "running"
	StatusCreatingTables  WorkerStatus = "creating_tables"
	StatusWaitingTables   WorkerStatus = "waiting_for_tables"
	StatusValidating      WorkerStatus = "validating"
	StatusCompleted       WorkerStatus = "completed"
	StatusFailed          WorkerStatus = "failed"
	StatusRetrying        WorkerStatus = "retrying"
)

// ExecutionResult holds the result of infrastructure setup execution
type ExecutionResult struct {
	Success   bool          `json:"success"`
	Status    WorkerStatus  `json:"status"`
	Phase     string        `json:"phase,omitempty"`
	StartTime time.Time     `json:"start_time"`
	EndTime   *time.Time    `json:"end_time,omitempty"`
	Duration  time.Duration `json:"duration"`

	TablesCreated []TableStatus `json:"tables_created"`

	ErrorMessage string `json:"error_message,omitempty"`
	RetryCount   int    `json:"retry_count"`

	Environment string                 `json:"environment"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// TableStatus represents table provisioning status information
type TableStatus struct {
	Name           string     `json:"name"`
	Status         string     `json:"status"` // CREATING, ACTIVE, FAILED
	CreatedAt      time.Time  `json:"created_at"`
	BecameActiveAt *time.Time `json:"became_active_at,omitempty"`
	IndexCount     int        `json:"index_count"`
}
