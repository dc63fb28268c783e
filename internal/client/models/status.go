package models

import "strings"

// Status is a display label for a log record. It is not a state machine:
// the server may send labels outside the known set.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusArchived Status = "archived"
	StatusOther    Status = "other"
)

// DefaultStatus is used by create when the caller passes none.
const DefaultStatus = StatusPending

var knownStatuses = []Status{StatusDraft, StatusPending, StatusActive, StatusInactive, StatusArchived}

// Classify maps s onto the fixed label set, case-insensitively.
// Unknown labels classify as StatusOther.
func (s Status) Classify() Status {
	norm := Status(strings.ToLower(strings.TrimSpace(string(s))))
	for _, k := range knownStatuses {
		if norm == k {
			return k
		}
	}
	return StatusOther
}

// Valid reports whether s may be sent on create.
func (s Status) Valid() bool {
	return s.Classify() != StatusOther
}

// Title returns the capitalised label, e.g. "Pending".
func (s Status) Title() string {
	c := s.Classify()
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}
