package worker

import (
	"context"
	"electrocare-backend/models"
	"electrocare-backend/utils/logger"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron"
)

// Worker runs the table-provisioning job. On a fresh environment it creates
// the engine's tables once under a file lock; afterwards it only confirms
// the setup is still in place.
type Worker struct {
	Worker *models.Worker
}

func NewWorker(ctx context.Context, cfg *models.Config, log logger.Logger) (*models.Worker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	hostname := os.Getenv("HOSTNAME")
	if hostname == "" {
		hostname = "localhost"
	}
	ownerID := fmt.Sprintf("worker-%s-%s", hostname, uuid.New().String()[:8])

	workerConfig := &models.WorkerConfig{
		CronSchedule:      getCronScheduleForEnvironment(cfg.AppEnv),
		LockTimeout:       30 * time.Minute,
		LockRetryInterval: 5 * time.Second,
		MaxRetries:        5,
		RetryDelay:        2 * time.Second,
		Environment:       cfg.AppEnv,
		RequiredTables:    cfg.Tables,
		LockFilePath:      fmt.Sprintf("/tmp/electrocare-infrastructure-%s.lock", cfg.AppEnv),
		StatusFilePath:    fmt.Sprintf("/tmp/electrocare-status-%s.json", cfg.AppEnv),
		DryRun:            os.Getenv("INFRASTRUCTURE_DRY_RUN") == "true",
		RunOnce:           true,
	}

	if err := validateWorkerConfig(workerConfig); err != nil {
		return nil, fmt.Errorf("invalid worker configuration: %w", err)
	}

	infrastructureSetup, err := NewInfrastructureSetup(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create infrastructure setup: %w", err)
	}

	lockManager := NewLockManager(workerConfig.LockFilePath, workerConfig.LockTimeout, workerConfig.Environment)
	statusManager := NewStatusManager(workerConfig.StatusFilePath)

	cronJob := cron.New()
	ctx, cancel := context.WithCancel(context.Background())

	return &models.Worker{
		Config:              cfg,
		Logger:              log,
		CronJob:             cronJob,
		LockManager:         lockManager,
		StatusManager:       statusManager.ToModelsStatusManager(),
		InfrastructureSetup: infrastructureSetup.ToModelsInfrastructureSetup(),
		WorkerConfig:        workerConfig,
		OwnerID:             ownerID,
		StopChan:            make(chan struct{}),
		Ctx:                 ctx,
		Cancel:              cancel,
	}, nil
}

// Start starts the infrastructure worker
func (w *Worker) Start() error {
	w.Worker.Mu.Lock()
	defer w.Worker.Mu.Unlock()

	if w.Worker.IsRunning {
		return fmt.Errorf("worker is already running")
	}

	if w.Worker.Ctx == nil || w.Worker.Cancel == nil {
		return fmt.Errorf("worker context is nil, worker may have been improperly initialized")
	}

	select {
	case <-w.Worker.Ctx.Done():
		return fmt.Errorf("worker context is cancelled, cannot start")
	default:
	}

	w.Worker.Logger.Infof("Starting infrastructure worker with schedule: %s", w.Worker.WorkerConfig.CronSchedule)
	w.Worker.Logger.Infof("Worker ID: %s", w.Worker.OwnerID)

	statusManager := &StatusManager{StatusManager: *w.Worker.StatusManager}
	if completed, err := statusManager.IsSetupCompleted(); err != nil {
		w.Worker.Logger.Debugf("No usable setup status yet: %v", err)
	} else if completed {
		w.Worker.Logger.Info("Table setup already completed, starting in monitoring mode")
		return w.startMonitoringMode()
	}

	if w.Worker.WorkerConfig.RunOnce {
		w.Worker.Logger.Info("Running in RunOnce mode - executing setup once and stopping")
		w.Worker.IsRunning = true
		go w.runOnceSetup()
		return nil
	}

	if err := w.Worker.CronJob.AddFunc(w.Worker.WorkerConfig.CronSchedule, w.executeSetupJobWithContext); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	w.Worker.CronJob.Start()
	w.Worker.IsRunning = true
	w.Worker.Logger.Info("Infrastructure worker started successfully")

	return nil
}

// executeSetupJobWithContext is the context-aware cron job function
func (w *Worker) executeSetupJobWithContext() {
	ctx, cancel := context.WithTimeout(w.Worker.Ctx, 15*time.Minute)
	defer cancel()

	w.executeSetupJobInternal(ctx)
}

// runOnceSetup handles RunOnce mode execution
func (w *Worker) runOnceSetup() {
	defer func() {
		if r := recover(); r != nil {
			w.Worker.Logger.Errorf("RunOnce setup panicked: %v", r)
		}
		w.Stop()
	}()

	ctx, cancel := context.WithTimeout(w.Worker.Ctx, 15*time.Minute)
	defer cancel()

	w.Worker.Logger.Info("Executing one-time table setup")
	w.executeSetupJobInternal(ctx)
}

// validateWorkerConfig checks the worker configuration for errors.
func validateWorkerConfig(config *models.WorkerConfig) error {
	if config == nil {
		return fmt.Errorf("worker config cannot be nil")
	}
	if config.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if config.LockTimeout <= 0 {
		return fmt.Errorf("lock timeout must be positive")
	}
	if config.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if config.RetryDelay <= 0 {
		return fmt.Errorf("retry delay must be positive")
	}
	if len(config.RequiredTables) == 0 {
		return fmt.Errorf("at least one required table must be specified")
	}
	if config.LockFilePath == "" {
		return fmt.Errorf("lock file path is required")
	}
	if config.StatusFilePath == "" {
		return fmt.Errorf("status file path is required")
	}

	if config.CronSchedule != "" {
		cronParser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := cronParser.Parse(config.CronSchedule); err != nil {
			return fmt.Errorf("invalid cron schedule '%s': %w", config.CronSchedule, err)
		}
	}

	return nil
}

// getCronScheduleForEnvironment returns environment-specific cron schedules
func getCronScheduleForEnvironment(env string) string {
	switch env {
	case "development":
		return "*/30 * * * * *"
	case "testing":
		return "0 */5 * * * *"
	case "production":
		return "0 */15 * * * *"
	default:
		return "0 */10 * * * *"
	}
}

// startMonitoringMode schedules periodic health checks instead of setup.
func (w *Worker) startMonitoringMode() error {
	if err := w.Worker.CronJob.AddFunc("0 */10 * * * *", w.healthCheckJob); err != nil {
		return fmt.Errorf("failed to add health check job: %w", err)
	}

	w.Worker.CronJob.Start()
	w.Worker.IsRunning = true
	return nil
}

// healthCheckJob re-validates the provisioned tables.
func (w *Worker) healthCheckJob() {
	w.Worker.Logger.Debug("Performing table health check")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	infrastructureSetup := &InfrastructureSetup{InfrastructureSetup: *w.Worker.InfrastructureSetup}
	statusManager := &StatusManager{StatusManager: *w.Worker.StatusManager}

	if err := infrastructureSetup.validateInfrastructure(ctx); err != nil {
		w.Worker.Logger.Errorf("Table health check failed: %v", err)
		statusManager.UpdateProgress(models.StatusFailed,
			fmt.Sprintf("Health check failed: %v", err),
			map[string]any{"health_check_failed_at": time.Now()})
	} else {
		w.Worker.Logger.Debug("Table health check passed")
	}
}

// GetStatus returns the current worker status
func (w *Worker) GetStatus() (*models.ExecutionResult, error) {
	statusManager := &StatusManager{StatusManager: *w.Worker.StatusManager}
	return statusManager.LoadStatus()
}

// IsRunning returns whether the worker is currently running
func (w *Worker) IsRunning() bool {
	return w.Worker.IsRunning
}

// executeSetupJobInternal is the core setup execution logic
func (w *Worker) executeSetupJobInternal(ctx context.Context) {
	statusManager := &StatusManager{StatusManager: *w.Worker.StatusManager}

	select {
	case <-w.Worker.Ctx.Done():
		w.Worker.Logger.Info("Worker is stopping, skipping execution")
		return
	case <-ctx.Done():
		w.Worker.Logger.Info("Context cancelled, skipping execution")
		return
	default:
	}

	w.Worker.Logger.Info("Table setup job triggered")

	if completed, err := statusManager.IsSetupCompleted(); err != nil {
		if strings.Contains(err.Error(), "no such file or directory") {
			w.Worker.Logger.Debug("Status file not found, proceeding with setup")
		} else {
			w.Worker.Logger.Errorf("Failed to check completion status: %v", err)
		}
	} else if completed {
		w.Worker.Logger.Info("Table setup already completed successfully, skipping execution")
		if !w.Worker.WorkerConfig.RunOnce {
			w.Stop()
		}
		return
	}

	lockInfo, err := w.acquireLockWithContext(ctx)
	if err != nil {
		w.Worker.Logger.Warnf("Failed to acquire lock: %v", err)
		return
	}

	defer func() {
		lockManager := &LockManager{LockManager: *w.Worker.LockManager}
		if err := lockManager.ReleaseLock(lockInfo); err != nil {
			w.Worker.Logger.Errorf("Failed to release lock: %v", err)
		}
	}()

	w.Worker.Logger.Info("Lock acquired, starting table setup")

	if err := w.executeSetupWithErrorHandling(ctx); err != nil {
		w.Worker.Logger.Errorf("Table setup failed: %v", err)
		if !w.Worker.WorkerConfig.RunOnce {
			if err := w.handleSetupFailure(err); err != nil {
				w.Worker.Logger.Errorf("Failed to handle setup failure: %v", err)
			}
		}
		return
	}

	w.Worker.Logger.Info("Table setup completed successfully, all resources are ready")

	if !w.Worker.WorkerConfig.RunOnce {
		w.Stop()
	}
}

// Stop stops the infrastructure worker
func (w *Worker) Stop() error {
	var err error
	w.Worker.StopOnce.Do(func() {
		w.Worker.Mu.Lock()
		defer w.Worker.Mu.Unlock()

		if !w.Worker.IsRunning {
			return
		}

		w.Worker.Logger.Info("Stopping infrastructure worker service")

		if w.Worker.Cancel != nil {
			w.Worker.Cancel()
		}

		if w.Worker.CronJob != nil {
			w.Worker.CronJob.Stop()
			w.Worker.Logger.Info("Cron jobs stopped")
		}

		w.Worker.IsRunning = false

		select {
		case <-w.Worker.StopChan:
		default:
			close(w.Worker.StopChan)
		}

		w.Worker.Logger.Info("Infrastructure worker stopped")
	})

	return err
}

// acquireLockWithContext tries to acquire the lock, honouring cancellation.
func (w *Worker) acquireLockWithContext(ctx context.Context) (*models.LockInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	type result struct {
		lockInfo *models.LockInfo
		err      error
	}

	resultChan := make(chan result, 1)

	go func() {
		lockManager := &LockManager{LockManager: *w.Worker.LockManager}
		lockInfo, err := lockManager.AcquireLock(w.Worker.OwnerID)
		resultChan <- result{lockInfo, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("lock acquisition cancelled: %w", ctx.Err())
	case res := <-resultChan:
		return res.lockInfo, res.err
	}
}

// executeSetupWithErrorHandling executes setup with status tracking.
func (w *Worker) executeSetupWithErrorHandling(ctx context.Context) error {
	setupCtx, cancel := context.WithTimeout(ctx, 15*time.Minute)
	defer cancel()

	result := &models.ExecutionResult{
		StartTime:     time.Now(),
		Status:        models.StatusRunning,
		Environment:   w.Worker.Config.AppEnv,
		TablesCreated: make([]models.TableStatus, 0),
		Metadata:      make(map[string]any),
	}

	statusManager := &StatusManager{StatusManager: *w.Worker.StatusManager}
	if err := statusManager.SaveStatus(result); err != nil {
		w.Worker.Logger.Errorf("Failed to save initial status: %v", err)
	}

	if w.Worker.WorkerConfig.DryRun {
		w.Worker.Logger.Info("Running in DRY RUN mode - no actual changes will be made")
		result.Success = true
		result.Status = models.StatusCompleted
		result.Metadata["dry_run"] = true
		return statusManager.SaveStatus(result)
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("table setup panicked: %v", r)
			w.Worker.Logger.Errorf("Setup panic: %v", err)
			statusManager.MarkFailed(err.Error())
		}
	}()

	infrastructureSetup := &InfrastructureSetup{InfrastructureSetup: *w.Worker.InfrastructureSetup}
	return infrastructureSetup.Execute(setupCtx, statusManager)
}

// handleSetupFailure handles setup failures with retry logic
func (w *Worker) handleSetupFailure(setupErr error) error {
	statusManager := &StatusManager{StatusManager: *w.Worker.StatusManager}

	retryCount, err := statusManager.GetRetryCount()
	if err != nil {
		w.Worker.Logger.Warnf("Failed to get retry count, assuming 0: %v", err)
		retryCount = 0
	}

	if retryCount >= w.Worker.WorkerConfig.MaxRetries {
		w.Worker.Logger.Errorf("Maximum retries (%d) exceeded, giving up", w.Worker.WorkerConfig.MaxRetries)
		return statusManager.MarkFailed(fmt.Sprintf("Max retries exceeded: %v", setupErr))
	}

	if err := statusManager.IncrementRetryCount(); err != nil {
		return fmt.Errorf("failed to increment retry count: %w", err)
	}

	retryDelay := w.calculateRetryDelay(retryCount)
	w.Worker.Logger.Warnf("Setup failed (attempt %d/%d), will retry in %v: %v",
		retryCount+1, w.Worker.WorkerConfig.MaxRetries+1, retryDelay, setupErr)

	return statusManager.UpdateProgress(models.StatusRetrying,
		fmt.Sprintf("Retrying after failure: %v", setupErr),
		map[string]any{
			"next_retry_at": time.Now().Add(retryDelay),
			"last_error":    setupErr.Error(),
		})
}

// calculateRetryDelay doubles the delay per retry, capped at one hour.
func (w *Worker) calculateRetryDelay(retryCount int) time.Duration {
	delay := w.Worker.WorkerConfig.RetryDelay
	for range retryCount {
		delay *= 2
	}
	if delay > time.Hour {
		delay = time.Hour
	}
	return delay
}
