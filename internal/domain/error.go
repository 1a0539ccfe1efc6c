package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound            = errors.New("entity not found")
	ErrAlreadyExists       = errors.New("entity already exists")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInvalidExecContext  = errors.New("invalid query execution context")
	ErrInsufficientCredits = errors.New("insufficient credits")

	// Fulfillment errors. ErrAlreadyProcessed and ErrIgnoredEvent are
	// benign: the webhook endpoint answers 200 for both so the payment
	// platform stops retrying.
	ErrAlreadyProcessed = errors.New("event already processed")
	ErrIgnoredEvent     = errors.New("ignored event type")
	ErrUnknownProduct   = errors.New("product not in credit catalog")

	// Client purchase flow errors
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrPurchaseCancelled = errors.New("purchase cancelled by user")
	ErrPurchaseInFlight  = errors.New("another purchase is already in flight")
)
