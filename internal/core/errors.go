package core

import "errors"

// Failure kinds surfaced by the engine. Operations wrap these with
// fmt.Errorf("...: %w", ...) so callers can classify with errors.Is while
// still seeing the offending values in the message.
var (
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInvalidDate           = errors.New("invalid date")
	ErrEmptyName             = errors.New("empty name")
	ErrNotFound              = errors.New("not found")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrAlreadySatisfied      = errors.New("nothing left to allocate")
	ErrAllocationTotal       = errors.New("allocation percentages must total 100")
	ErrNoCategories          = errors.New("no top-level categories")
	ErrUnsupportedGoalType   = errors.New("unsupported goal type")
	ErrUnsupportedTargetType = errors.New("unsupported target type")
	ErrUnsupportedLinkType   = errors.New("unsupported link type")
)
