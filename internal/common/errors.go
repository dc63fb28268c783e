package common

import "errors"

var (
	// ErrNotAuthenticated is returned by operations that need a session
	// when none is established.
	ErrNotAuthenticated = errors.New("not authenticated")
)
