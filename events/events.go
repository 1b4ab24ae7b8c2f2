package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind identifies what happened.
type Kind string

const (
	PageAccessed    Kind = "page_accessed"
	NonHomeAccess   Kind = "non_home_access"
	FileReadSuccess Kind = "file_read_success"
	FileReadError   Kind = "file_read_error"
)

// Kinds lists every event kind in a stable order.
func Kinds() []Kind {
	return []Kind{PageAccessed, NonHomeAccess, FileReadSuccess, FileReadError}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case PageAccessed, NonHomeAccess, FileReadSuccess, FileReadError:
		return true
	}
	return false
}

// Event is a single lifecycle notification. It only lives for the duration
// of a Publish call; subscribers that want to keep it must copy what they
// need.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Kind      Kind      `json:"kind"`
	Subject   string    `json:"subject"`
	Timestamp time.Time `json:"timestamp"`
}

// New creates an event of the given kind stamped with the current time.
func New(kind Kind, subject string) Event {
	return Event{
		ID:        uuid.New(),
		Kind:      kind,
		Subject:   subject,
		Timestamp: time.Now().UTC(),
	}
}

// Message renders the human-readable line that gets echoed and persisted.
func (e Event) Message() string {
	switch e.Kind {
	case PageAccessed:
		return fmt.Sprintf("The %s page was accessed.", e.Subject)
	case NonHomeAccess:
		return fmt.Sprintf("Non-home page accessed: %s", e.Subject)
	case FileReadSuccess:
		return fmt.Sprintf("File read successfully: %s", e.Subject)
	case FileReadError:
		return fmt.Sprintf("Error reading file: %s", e.Subject)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Subject)
	}
}
