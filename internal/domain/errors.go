package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrNoBookingData = errors.New("booking response carried no data")
)

// Names of the pieces correlation can fail to find.
const (
	MissingStoredSession = "stored session data"
	MissingTransactionID = "transactionId"
	MissingPrebookID     = "prebookId"
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Field + " " + e.Reason }

// GatewayError is any failure of a provider call. Payload holds the raw
// provider body so callers can show it unchanged.
type GatewayError struct {
	Op      string
	Status  int
	Message string
	Payload json.RawMessage
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("provider %s: %s (status %d)", e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("provider %s: %s", e.Op, e.Message)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// CorrelationError lists what could not be recovered after the payment redirect.
type CorrelationError struct {
	Missing []string
}

func (e *CorrelationError) Error() string {
	return "missing booking information: " + strings.Join(e.Missing, ", ")
}
