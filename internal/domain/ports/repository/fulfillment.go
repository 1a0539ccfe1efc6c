package repository

import (
	"context"

	"ai-home-decorator/internal/domain/model"
)

// FulfillmentRepository is the consumed-event log backing webhook
// idempotency. MarkFulfilled must be called in the same transaction as
// the credit increment it guards.
type FulfillmentRepository interface {
	// MarkFulfilled records the event key as consumed. A key seen
	// before yields ErrAlreadyProcessed and writes nothing.
	MarkFulfilled(ctx context.Context, tx Tx, f *model.Fulfillment) error
	WasFulfilled(ctx context.Context, tx Tx, eventID string) (bool, error)
	ListByUser(ctx context.Context, tx Tx, userID string, limit int) ([]*model.Fulfillment, error)
}
