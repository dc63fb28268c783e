package services

import (
	"errors"

	"github.com/dmitrijs2005/policylogs/internal/client/client"
)

// ErrSessionChanged is returned when a logout or another login completed
// while a profile refresh was in flight; the fetched profile is dropped.
var ErrSessionChanged = errors.New("session changed during request")

// ValidationError reports malformed local input. It is returned before any
// network call and matches client.ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Is makes local validation failures match client.ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == client.ErrValidation
}

// UserMessage returns the short text to show for err: the server's message
// for API failures, the validation text for local ones.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var ae *client.Error
	if errors.As(err, &ae) {
		return ae.Error()
	}
	return err.Error()
}
