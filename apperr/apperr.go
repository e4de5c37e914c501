package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies a failure at the controller boundary
type Kind string

const (
	KindNetwork    Kind = "network"
	KindService    Kind = "service"
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation"
)

var (
	// ErrBusy is returned when an operation is attempted while the previous one is still in flight.
	ErrBusy = errors.New("operation already in progress")
	// ErrInvalidState is returned when an operation is not allowed in the current controller state.
	ErrInvalidState = errors.New("operation not allowed in current state")
)

type Error struct {
	Kind   Kind
	Op     string
	Status int
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	b.WriteString(" error")
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+e.Fields[k])
		}
		b.WriteString(": ")
		b.WriteString(strings.Join(parts, "; "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Network reports a transport failure where no response was received
func Network(op string, err error) *Error {
	return &Error{Kind: KindNetwork, Op: op, Err: err}
}

// Service reports a response carrying a failure status
func Service(op string, status int, body string) *Error {
	var err error
	if body = strings.TrimSpace(body); body != "" {
		if len(body) > 256 {
			body = body[:256] + "..."
		}
		err = errors.New(body)
	}
	return &Error{Kind: KindService, Op: op, Status: status, Err: err}
}

// Malformed reports a success status whose payload could not be used
func Malformed(op string, status int, err error) *Error {
	return &Error{Kind: KindService, Op: op, Status: status, Err: fmt.Errorf("malformed response: %w", err)}
}

func NotFound(op string, id string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Status: http.StatusNotFound, Err: fmt.Errorf("%q not found", id)}
}

// Validation reports missing or malformed input caught before any network call
func Validation(op string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Op: op, Fields: fields}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsNetwork(err error) bool    { return KindOf(err) == KindNetwork }
func IsService(err error) bool    { return KindOf(err) == KindService }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// FieldsOf returns the per-field validation messages carried by err
func FieldsOf(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

// HTTPStatus maps err onto the status the HTTP surface answers with
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBusy), errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	}
	switch KindOf(err) {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindNetwork, KindService:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
