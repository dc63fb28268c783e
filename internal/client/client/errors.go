package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/dmitrijs2005/policylogs/internal/client/transport"
)

// Failure kinds. Match them with errors.Is on any error returned by Client.
var (
	ErrNetwork      = errors.New("network unavailable")
	ErrAuth         = errors.New("authentication failed")
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrDecode       = errors.New("unexpected response")
	ErrUnauthorized = errors.New("unauthorized")
	ErrServer       = errors.New("server error")
)

// Error is a classified API failure. Kind is one of the sentinels above;
// Message is short and suitable for showing to a user.
type Error struct {
	Kind    error
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

// Unwrap exposes both Kind and the underlying cause to errors.Is.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// authEndpoints answer 4xx for bad credentials or duplicate accounts.
var authEndpoints = map[string]bool{
	pathLogin:    true,
	pathRegister: true,
}

// mapError classifies a transport failure for the request at path.
func mapError(path string, err error) error {
	if err == nil {
		return nil
	}

	var se *transport.StatusError
	switch {
	case errors.Is(err, transport.ErrTransport):
		return &Error{Kind: ErrNetwork, Message: "network unavailable, check your connection", Err: err}
	case errors.Is(err, transport.ErrRequest):
		return &Error{Kind: ErrValidation, Message: "request could not be sent: invalid input", Err: err}
	case errors.Is(err, transport.ErrDecode):
		return &Error{Kind: ErrDecode, Message: "unexpected response from server", Err: err}
	case errors.As(err, &se):
		return statusError(path, se)
	default:
		return &Error{Kind: ErrServer, Message: err.Error(), Err: err}
	}
}

func statusError(path string, se *transport.StatusError) *Error {
	e := &Error{Status: se.Code, Message: serverMessage(se.Body), Err: se}

	switch {
	case authEndpoints[path] && se.Code >= 400 && se.Code < 500 && se.Code != http.StatusNotFound:
		e.Kind = ErrAuth
	case se.Code == http.StatusUnauthorized, se.Code == http.StatusForbidden:
		e.Kind = ErrUnauthorized
	case se.Code == http.StatusNotFound:
		e.Kind = ErrNotFound
	case se.Code == http.StatusBadRequest:
		e.Kind = ErrValidation
	default:
		e.Kind = ErrServer
	}

	if e.Message == "" {
		e.Message = defaultMessage(e.Kind, se.Code)
	}
	return e
}

func defaultMessage(kind error, code int) string {
	switch kind {
	case ErrAuth:
		return "invalid credentials"
	case ErrUnauthorized:
		return "not authorized, please log in again"
	case ErrNotFound:
		return "not found"
	case ErrValidation:
		return "request rejected by server"
	default:
		return fmt.Sprintf("server error (%d)", code)
	}
}

// serverMessage extracts the first human-readable message from a Django
// REST framework error body: {"detail": ...}, {"non_field_errors": [...]},
// {"field": ["..."]} or a bare list. Returns "" when nothing fits.
func serverMessage(body []byte) string {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return ""
	}

	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		return firstString(t)
	case map[string]any:
		if s := asMessage(t["detail"]); s != "" {
			return s
		}
		if s := asMessage(t["non_field_errors"]); s != "" {
			return s
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if s := asMessage(t[k]); s != "" {
				return k + ": " + s
			}
		}
	}
	return ""
}

func asMessage(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		return firstString(t)
	}
	return ""
}

func firstString(list []any) string {
	for _, item := range list {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
