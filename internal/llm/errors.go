package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

type ErrorKind int

const (
	Transient ErrorKind = iota + 1
	Permanent
)

func (k ErrorKind) String() string {
	switch k {
	case Transient:
		return "transient"
	case Permanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// BackendError is returned by every text and image client.
type BackendError struct {
	Backend string
	Kind    ErrorKind
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend (%s): %v", e.Backend, e.Kind, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

func (e *BackendError) Retryable() bool { return e.Kind == Transient }

func NewBackendError(backend string, kind ErrorKind, err error) *BackendError {
	return &BackendError{Backend: backend, Kind: kind, Err: err}
}

// Classify wraps err as a BackendError, deciding the kind from timeouts and
// network failures. Errors that are already BackendErrors pass through.
func Classify(backend string, err error) error {
	if err == nil {
		return nil
	}
	var be *BackendError
	if errors.As(err, &be) {
		return err
	}
	return NewBackendError(backend, kindOf(err), err)
}

// ClassifyStatus wraps err using an HTTP status code reported by the backend.
func ClassifyStatus(backend string, status int, err error) error {
	if err == nil {
		return nil
	}
	return NewBackendError(backend, StatusKind(status), err)
}

func StatusKind(status int) ErrorKind {
	if status == http.StatusTooManyRequests || status == http.StatusRequestTimeout {
		return Transient
	}
	if status >= 500 && status < 600 {
		return Transient
	}
	return Permanent
}

func IsTransient(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.Kind == Transient
}

func kindOf(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return Transient
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Transient
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return Transient
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return Transient
	}
	return Permanent
}
