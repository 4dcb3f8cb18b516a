package services

import (
	"context"

	"github.com/shopspring/decimal"

	"budget/internal/core"
)

// EventPublisher receives domain events after a mutation commits. Delivery
// is best effort: a publish failure is logged, never surfaced to the
// caller, and never rolls the mutation back. A nil publisher disables
// events.
type EventPublisher interface {
	PublishPaycheckAllocated(ctx context.Context, paycheckID int64, amount decimal.Decimal) error
	PublishBalanceUpdated(ctx context.Context, update core.BalanceUpdate) error
}
