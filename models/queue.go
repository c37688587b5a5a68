package models

import "time"

type QueueResponseStatus string

const (
	QueueResponsePending  QueueResponseStatus = "pending"
	QueueResponseAccepted QueueResponseStatus = "accepted"
	QueueResponseRejected QueueResponseStatus = "rejected"
	// QueueResponseExpired is reserved for a future timeout sweeper; nothing
	// in the engine drives it today.
	QueueResponseExpired QueueResponseStatus = "expired"
)

// QueueEntry is one (request, technician) broadcast pairing. Entries are
// created in bulk at intake, updated when the technician responds, and never
// deleted: the queue doubles as the audit trail of who was offered a job.
type QueueEntry struct {
	EntryID        string              `json:"entryID" dynamodbav:"entryID"`
	RequestID      string              `json:"requestID" dynamodbav:"requestID" validate:"required"`
	TechnicianID   string              `json:"technicianID" dynamodbav:"technicianID" validate:"required"`
	ResponseStatus QueueResponseStatus `json:"responseStatus" dynamodbav:"responseStatus"`
	ResponseTime   *time.Time          `json:"responseTime,omitempty" dynamodbav:"responseTime,omitempty"`
	CreatedAt      time.Time           `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt" dynamodbav:"updatedAt"`
}

// TechnicianInbox is what a technician sees: open broadcasts they may still
// accept plus the jobs already assigned to them.
type TechnicianInbox struct {
	Broadcasted []*ServiceRequest `json:"broadcasted"`
	MyJobs      []*ServiceRequest `json:"myJobs"`
}
