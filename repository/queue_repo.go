package repository

import (
	"context"
	"electrocare-backend/dal"
	"electrocare-backend/models"
	"electrocare-backend/utils/logger"
	"time"
)

type QueueRepository struct {
	db     dal.DatabaseClientInterface
	config *models.Config
	logger logger.Logger
}

func NewQueueRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *QueueRepository {
	return &QueueRepository{
		db:     db,
		config: cfg,
		logger: log,
	}
}

func (r *QueueRepository) table() string {
	return r.config.DynamoDBTablePrefix + "_request_queue"
}

// entryKey derives the entry id from the (request, technician) pair, which
// makes Populate idempotent: re-running intake overwrites the same entries
// instead of duplicating them.
func entryKey(requestID, technicianID string) string {
	return requestID + "#" + technicianID
}

// Populate creates one pending entry per candidate technician.
func (r *QueueRepository) Populate(ctx context.Context, requestID string, technicianIDs []string) error {
	now := time.Now()
	for _, technicianID := range technicianIDs {
		entry := &models.QueueEntry{
			EntryID:        entryKey(requestID, technicianID),
			RequestID:      requestID,
			TechnicianID:   technicianID,
			ResponseStatus: models.QueueResponsePending,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := r.db.PutItem(ctx, r.table(), entry); err != nil {
			r.logger.Errorf("Failed to enqueue request %s for technician %s: %v", requestID, technicianID, err)
			return err
		}
	}

	r.logger.Infof("Broadcast queue populated for request %s: %d entries", requestID, len(technicianIDs))
	return nil
}

// MarkResponded updates exactly one entry; it is a no-op if the pair was
// never broadcast. Entries are never deleted.
func (r *QueueRepository) MarkResponded(ctx context.Context, requestID, technicianID string, status models.QueueResponseStatus) error {
	existing, err := r.getEntry(ctx, requestID, technicianID)
	if err != nil {
		return err
	}
	if existing == nil {
		r.logger.Warnf("No queue entry for request %s / technician %s, skipping response update", requestID, technicianID)
		return nil
	}

	now := time.Now()
	return r.db.UpdateItem(ctx, r.table(), "entryID", existing.EntryID, map[string]interface{}{
		"responseStatus": status,
		"responseTime":   now,
		"updatedAt":      now,
	})
}

func (r *QueueRepository) getEntry(ctx context.Context, requestID, technicianID string) (*models.QueueEntry, error) {
	entry := models.QueueEntry{}
	err := r.db.GetItem(ctx, models.QueryConfig{
		TableName: r.table(),
		KeyName:   "entryID",
		KeyValue:  entryKey(requestID, technicianID),
		KeyType:   models.StringType,
	}, &entry)
	if err != nil {
		return nil, err
	}
	if entry.EntryID == "" {
		return nil, nil
	}
	return &entry, nil
}

// GetPendingForTechnician returns entries the technician has not yet
// responded to. Callers filter out requests that have left the broadcasted
// state since.
func (r *QueueRepository) GetPendingForTechnician(ctx context.Context, technicianID string) ([]*models.QueueEntry, error) {
	var entries []*models.QueueEntry
	err := r.db.QueryByIndex(ctx, r.table(), "technicianID-index", "technicianID", technicianID, &entries)
	if err != nil {
		r.logger.Errorf("Failed to get queue entries for technician %s: %v", technicianID, err)
		return nil, err
	}

	var pending []*models.QueueEntry
	for _, entry := range entries {
		if entry.ResponseStatus == models.QueueResponsePending {
			pending = append(pending, entry)
		}
	}
	return pending, nil
}

// GetEntriesForRequest returns the audit trail for one request.
func (r *QueueRepository) GetEntriesForRequest(ctx context.Context, requestID string) ([]*models.QueueEntry, error) {
	var entries []*models.QueueEntry
	err := r.db.QueryByIndex(ctx, r.table(), "requestID-index", "requestID", requestID, &entries)
	if err != nil {
		r.logger.Errorf("Failed to get queue entries for request %s: %v", requestID, err)
		return nil, err
	}
	return entries, nil
}
