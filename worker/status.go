package worker

import (
	"electrocare-backend/models"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// StatusManager persists the provisioning progress to a status file so a
// restarted instance can tell whether setup already ran.
type StatusManager struct {
	models.StatusManager
}

// NewStatusManager creates a new status manager
func NewStatusManager(statusPath string) *StatusManager {
	return &StatusManager{
		StatusManager: models.StatusManager{
			StatusFilePath: statusPath,
		},
	}
}

// ToModelsStatusManager returns the embedded models.StatusManager
func (sm *StatusManager) ToModelsStatusManager() *models.StatusManager {
	return &sm.StatusManager
}

func (sm *StatusManager) SaveStatus(result *models.ExecutionResult) error {
	if err := os.MkdirAll(filepath.Dir(sm.StatusFilePath), 0755); err != nil {
		return fmt.Errorf("failed to create status directory: %w", err)
	}

	if result.EndTime == nil && (result.Status == models.StatusCompleted || result.Status == models.StatusFailed) {
		now := time.Now()
		result.EndTime = &now
		result.Duration = now.Sub(result.StartTime)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	tempFile := sm.StatusFilePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp status file: %w", err)
	}
	if err := os.Rename(tempFile, sm.StatusFilePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename status file: %w", err)
	}
	return nil
}

func (sm *StatusManager) LoadStatus() (*models.ExecutionResult, error) {
	data, err := os.ReadFile(sm.StatusFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read status file: %w", err)
	}

	var result models.ExecutionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status: %w", err)
	}
	return &result, nil
}

// IsSetupCompleted checks if the table provisioning already finished.
func (sm *StatusManager) IsSetupCompleted() (bool, error) {
	status, err := sm.LoadStatus()
	if err != nil {
		return false, err
	}
	return status.Status == models.StatusCompleted && status.Success, nil
}

func (sm *StatusManager) UpdateProgress(status models.WorkerStatus, message string, metadata map[string]any) error {
	current, err := sm.LoadStatus()
	if err != nil {
		current = &models.ExecutionResult{
			StartTime:     time.Now(),
			TablesCreated: make([]models.TableStatus, 0),
			Metadata:      make(map[string]any),
		}
	}

	current.Status = status
	if current.Metadata == nil {
		current.Metadata = make(map[string]any)
	}
	if message != "" {
		current.Metadata["last_message"] = message
		current.Metadata["last_update"] = time.Now()
	}
	for k, v := range metadata {
		current.Metadata[k] = v
	}

	return sm.SaveStatus(current)
}

// AddTableCreated records a provisioned table, once.
func (sm *StatusManager) AddTableCreated(tableName string, indexCount int) error {
	status, err := sm.LoadStatus()
	if err != nil {
		return err
	}

	for _, table := range status.TablesCreated {
		if table.Name == tableName {
			return nil
		}
	}

	status.TablesCreated = append(status.TablesCreated, models.TableStatus{
		Name:       tableName,
		Status:     "CREATING",
		CreatedAt:  time.Now(),
		IndexCount: indexCount,
	})
	return sm.SaveStatus(status)
}

// MarkCompleted marks the setup as completed
func (sm *StatusManager) MarkCompleted() error {
	status, err := sm.LoadStatus()
	if err != nil {
		return err
	}

	status.Success = true
	status.Status = models.StatusCompleted
	now := time.Now()
	status.EndTime = &now
	status.Duration = now.Sub(status.StartTime)

	return sm.SaveStatus(status)
}

// MarkFailed marks the setup as failed
func (sm *StatusManager) MarkFailed(errorMsg string) error {
	status, err := sm.LoadStatus()
	if err != nil {
		return err
	}

	status.Success = false
	status.Status = models.StatusFailed
	status.ErrorMessage = errorMsg
	now := time.Now()
	status.EndTime = &now
	status.Duration = now.Sub(status.StartTime)

	return sm.SaveStatus(status)
}

// GetRetryCount returns the persisted retry counter.
func (sm *StatusManager) GetRetryCount() (int, error) {
	status, err := sm.LoadStatus()
	if err != nil {
		return 0, err
	}
	return status.RetryCount, nil
}

// IncrementRetryCount increments the retry counter
func (sm *StatusManager) IncrementRetryCount() error {
	status, err := sm.LoadStatus()
	if err != nil {
		return err
	}

	status.RetryCount++
	status.Status = models.StatusRetrying

	return sm.SaveStatus(status)
}

// ResetStatus resets the status (useful for forced re-runs)
func (sm *StatusManager) ResetStatus() error {
	return os.Remove(sm.StatusFilePath)
}
