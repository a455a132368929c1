package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrUnavailable   = errors.New("backend unavailable")
	ErrRequestFailed = errors.New("request failed")
)

// DefaultMessage is shown when the backend gives no message of its own.
const DefaultMessage = "request failed"

// FieldErrors holds per-field validation messages. The backend sends either
// a string or a list of strings per field.
type FieldErrors map[string][]string

func (f *FieldErrors) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		// Some endpoints send "errors": [] or a bare string; nothing per-field.
		*f = nil
		return nil
	}
	out := make(FieldErrors, len(raw))
	for field, v := range raw {
		var many []string
		if err := json.Unmarshal(v, &many); err == nil {
			out[field] = many
			continue
		}
		var one string
		if err := json.Unmarshal(v, &one); err == nil {
			out[field] = []string{one}
		}
	}
	*f = out
	return nil
}

// Error is the single failure shape returned by the client.
type Error struct {
	Kind    error
	Status  int
	Message string
	Fields  FieldErrors

	cause error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Kind, e.cause}
	}
	return []error{e.Kind}
}

// kindForStatus maps an HTTP status to a sentinel.
func kindForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusUnprocessableEntity:
		return ErrValidation
	case status == http.StatusTooManyRequests, status >= 500:
		return ErrUnavailable
	default:
		return ErrRequestFailed
	}
}

func responseError(status int, env *envelope) *Error {
	e := &Error{Kind: kindForStatus(status), Status: status, Message: DefaultMessage}
	if env != nil {
		if env.Message != "" {
			e.Message = env.Message
		}
		e.Fields = env.Errors
		if len(e.Fields) > 0 && e.Kind == ErrRequestFailed {
			e.Kind = ErrValidation
		}
	}
	return e
}

func transportError(err error) *Error {
	return &Error{Kind: ErrUnavailable, Message: DefaultMessage, cause: err}
}

// Message returns the text to show the user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return DefaultMessage
}

// FieldMessages flattens validation errors into sorted "field: message"
// lines. It returns nil for errors without per-field detail.
func FieldMessages(err error) []string {
	var e *Error
	if !errors.As(err, &e) || len(e.Fields) == 0 {
		return nil
	}
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var out []string
	for _, f := range fields {
		for _, m := range e.Fields[f] {
			out = append(out, f+": "+m)
		}
	}
	return out
}

// Describe is Message plus any field messages, one per line.
func Describe(err error) string {
	lines := append([]string{Message(err)}, FieldMessages(err)...)
	return strings.Join(lines, "\n")
}
