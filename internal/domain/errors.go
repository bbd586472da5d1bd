package domain

import (
	"errors"
	"fmt"
)

// Base error kinds. Callers classify failures with errors.Is against these.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("record not found")
	ErrEmptyUpdate      = errors.New("no valid update data provided")
	ErrStoreUnavailable = errors.New("store unavailable")
)

var (
	ErrInvalidNumeric  = fmt.Errorf("%w: invalid numeric value", ErrValidation)
	ErrMissingItems    = fmt.Errorf("%w: items are required", ErrValidation)
	ErrInvalidDiscount = fmt.Errorf("%w: discount_pct must be between 0 and 1", ErrValidation)
	ErrUnknownField    = fmt.Errorf("%w: field is not updatable", ErrValidation)
)
