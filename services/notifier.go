package services

import (
	"context"
	"electrocare-backend/utils/logger"
	"sync"
)

// RecipientKind tells the delivery layer which audience a notification
// belongs to.
type RecipientKind string

const (
	RecipientUser       RecipientKind = "user"
	RecipientTechnician RecipientKind = "technician"
)

// Notifier is the injected notification capability. Delivery is advisory:
// implementations must never fail a core transition, and the engine never
// waits on them beyond the call itself.
type Notifier interface {
	Notify(ctx context.Context, recipientID string, kind RecipientKind, title, message string)
}

// LogNotifier logs notifications instead of delivering them. Used when no
// push/email channel is wired, and as the safe default.
type LogNotifier struct {
	logger logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log}
}

func (n *LogNotifier) Notify(ctx context.Context, recipientID string, kind RecipientKind, title, message string) {
	n.logger.Infof("notify %s %s: %s - %s", kind, recipientID, title, message)
}

// MemoryNotifier records notifications in memory for tests.
type MemoryNotifier struct {
	mu   sync.Mutex
	Sent []SentNotification
}

type SentNotification struct {
	RecipientID string
	Kind        RecipientKind
	Title       string
	Message     string
}

func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{}
}

func (n *MemoryNotifier) Notify(ctx context.Context, recipientID string, kind RecipientKind, title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = append(n.Sent, SentNotification{
		RecipientID: recipientID,
		Kind:        kind,
		Title:       title,
		Message:     message,
	})
}

// ForRecipient returns the notifications recorded for one recipient.
func (n *MemoryNotifier) ForRecipient(recipientID string) []SentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []SentNotification
	for _, s := range n.Sent {
		if s.RecipientID == recipientID {
			out = append(out, s)
		}
	}
	return out
}
