package domain

import "fmt"

// Error types for consistent error handling across the gateway.

// ErrValidation indicates missing or malformed input. Detected before any
// remote call is made.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrConflict indicates a duplicate resource (e.g. signup with an email
// that already has an account).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrUnauthorized indicates invalid credentials or token. The message never
// reveals whether the username exists.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrNotFound indicates an unknown local resource reference.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrRemoteAPI indicates the remote ledger rejected a request with a
// non-2xx status. Status and raw body are preserved for diagnostics and
// passed through to the caller; requests are never retried.
type ErrRemoteAPI struct {
	Operation string
	Status    int
	Body      string
}

func (e *ErrRemoteAPI) Error() string {
	return fmt.Sprintf("remote ledger %s returned %d: %s", e.Operation, e.Status, e.Body)
}

// ErrTransport indicates the remote ledger was unreachable or returned
// unparseable data, as opposed to rejecting the request. Callers can use
// this to distinguish "rejected" from "unreachable".
type ErrTransport struct {
	Operation string
	Err       error
}

func (e *ErrTransport) Error() string {
	return fmt.Sprintf("remote ledger %s transport failure: %v", e.Operation, e.Err)
}

func (e *ErrTransport) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open and the call was
// not attempted.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}
