package slotgrid

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by this module wraps exactly one
// of them so callers can branch with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrDataSource = errors.New("data source failed")
	ErrInvariant  = errors.New("invariant violated")
)

var (
	ErrInvalidInterval = fmt.Errorf("%w: interval must be greater than zero", ErrValidation)
	ErrNoTimeslots     = fmt.Errorf("%w: no day provides any timeslots", ErrInvariant)
	ErrSlotCount       = fmt.Errorf("%w: slot count does not match the slot grid", ErrInvariant)
)
