package core

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a history entry.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is an inbound chat message as handed to the queue by the
// transport connector. Retries accumulates delivery attempts when the
// consumer fails.
type Message struct {
	ID         string
	Sender     string
	Body       string
	EnqueuedAt time.Time
	Retries    int
}

// NewMessage builds a queued message with a fresh ID and enqueue timestamp.
func NewMessage(sender, body string) Message {
	return Message{
		ID:         NewID(),
		Sender:     sender,
		Body:       body,
		EnqueuedAt: time.Now().UTC(),
	}
}

// HistoryEntry is one turn of a persisted conversation.
type HistoryEntry struct {
	Role      string
	Text      string
	Timestamp time.Time
}

// CustomerID references a customer record owned by the persistent store.
type CustomerID int64

// CustomerProfile is the subset of the customer record the engine reads.
type CustomerProfile struct {
	ID     CustomerID
	Branch string // empty when no branch has been resolved yet
}

// NewID generates a new unique identifier for messages and correlation.
func NewID() string { return uuid.NewString() }
