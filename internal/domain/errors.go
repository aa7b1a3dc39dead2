package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInsufficientData is returned when every data source failed for a request.
// Callers should surface it as a retryable condition, not a verdict.
var ErrInsufficientData = errors.New("all data sources unavailable")

// ValidationError reports a malformed or out-of-range request input. It names
// the offending field so callers can correct it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UnknownCropError reports a crop identifier with no profile. Handled like a
// validation failure; no adapter is called.
type UnknownCropError struct {
	Crop  string
	Known []string
}

func (e *UnknownCropError) Error() string {
	return fmt.Sprintf("unknown crop %q: supported crops are %s", e.Crop, strings.Join(e.Known, ", "))
}
