package features

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrSchemaMismatch reports a required numeric attribute that is missing
	// or not numeric, or a categorical value that is not a label.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrUnknownCategoricalAttribute reports a categorical attribute that is
	// absent from the record.
	ErrUnknownCategoricalAttribute = errors.New("unknown categorical attribute")
	// ErrInvalidSchema reports a target schema that breaks its own invariants.
	ErrInvalidSchema = errors.New("invalid schema")
)

// AlignError carries the attribute that failed alignment.
type AlignError struct {
	Kind      error
	Attribute string
	Reason    string
}

func (e *AlignError) Error() string {
	return fmt.Sprintf("%v: %q: %s", e.Kind, e.Attribute, e.Reason)
}

func (e *AlignError) Unwrap() error { return e.Kind }

func newAlignError(kind error, attribute, reason string) error {
	return &AlignError{Kind: kind, Attribute: attribute, Reason: reason}
}
