package adapter

import (
	"context"

	"ai-home-decorator/internal/domain/model"
)

// PaymentGateway wraps the store billing provider (RevenueCat). It is
// an external collaborator: nothing behind this interface may touch the
// Entitlement Store. Credits are granted exclusively by the webhook
// path.
type PaymentGateway interface {
	Name() string

	// Identify links the billing identity to our user id; Logout
	// unlinks it on sign-out.
	Identify(ctx context.Context, userID string) error
	Logout(ctx context.Context, userID string) error

	// ListOfferings returns the packages currently on sale. An empty
	// slice is a valid, displayable answer, not an error.
	ListOfferings(ctx context.Context, userID string) ([]model.PurchasePackage, error)

	// Purchase executes the store purchase for the package and returns
	// the receipt. A user dismissing the store dialog yields
	// ErrPurchaseCancelled.
	Purchase(ctx context.Context, userID, packageID string) (*model.Receipt, error)

	// RecentReceipts lists the user's settled store transactions. Used
	// by the reconciliation worker to re-derive purchase events the
	// webhook may have never delivered.
	RecentReceipts(ctx context.Context, userID string) ([]model.Receipt, error)
}
