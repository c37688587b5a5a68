package worker

import (
	"context"
	"electrocare-backend/models"
	"electrocare-backend/utils/logger"
	"fmt"
	"time"
)

// Service wraps the infrastructure worker for easy integration
type Service struct {
	worker *models.Worker
	logger logger.Logger
}

// NewService creates a new worker service
func NewService(ctx context.Context, cfg *models.Config, log logger.Logger) (*Service, error) {
	worker, err := NewWorker(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create infrastructure worker: %w", err)
	}

	return &Service{
		worker: worker,
		logger: log,
	}, nil
}

// StartInBackground starts the infrastructure worker in the background
func (s *Service) StartInBackground() error {
	s.logger.Info("Starting infrastructure worker service in background")

	go func() {
		w := &Worker{Worker: s.worker}
		if err := w.Start(); err != nil {
			s.logger.Errorf("Infrastructure worker failed to start: %v", err)
		}
	}()

	return nil
}

// Stop stops the infrastructure worker service
func (s *Service) Stop() error {
	w := &Worker{Worker: s.worker}
	s.logger.Info("Stopping infrastructure worker service")
	return w.Stop()
}

// GetStatus returns the current table setup status
func (s *Service) GetStatus() (*models.ExecutionResult, error) {
	w := &Worker{Worker: s.worker}
	return w.GetStatus()
}

// IsSetupCompleted checks if table setup is completed
func (s *Service) IsSetupCompleted() (bool, error) {
	status, err := s.GetStatus()
	if err != nil {
		return false, err
	}
	return status.Status == models.StatusCompleted && status.Success, nil
}

// GetHealthStatus returns a health status for monitoring
func (s *Service) GetHealthStatus() map[string]interface{} {
	w := &Worker{Worker: s.worker}
	status, err := s.GetStatus()
	if err != nil {
		return map[string]interface{}{
			"status":         "error",
			"message":        fmt.Sprintf("Failed to get status: %v", err),
			"healthy":        false,
			"worker_running": w.IsRunning(),
		}
	}

	healthy := status.Status == models.StatusCompleted && status.Success

	return map[string]interface{}{
		"status":         string(status.Status),
		"healthy":        healthy,
		"worker_running": w.IsRunning(),
		"tables_created": status.TablesCreated,
		"retry_count":    status.RetryCount,
		"environment":    status.Environment,
		"start_time":     status.StartTime,
		"duration":       status.Duration.String(),
		"error_message":  status.ErrorMessage,
	}
}

// WaitForCompletion polls until table setup completes or the timeout hits.
func (s *Service) WaitForCompletion(timeoutSeconds int) error {
	w := &Worker{Worker: s.worker}
	s.logger.Infof("Waiting for table setup completion (timeout: %ds)", timeoutSeconds)

	for i := 0; i < timeoutSeconds; i++ {
		if completed, err := s.IsSetupCompleted(); err == nil && completed {
			s.logger.Info("Table setup completed")
			return nil
		}

		select {
		case <-w.Worker.StopChan:
			return fmt.Errorf("worker stopped before completion")
		default:
		}

		time.Sleep(1 * time.Second)
	}

	return fmt.Errorf("timeout waiting for table setup completion")
}
