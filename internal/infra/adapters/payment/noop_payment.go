package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ai-home-decorator/internal/domain"
	"ai-home-decorator/internal/domain/model"
	"ai-home-decorator/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopPaymentGateway)(nil)

// NoopPaymentGateway is a simple in-memory gateway for dev mode and tests.
type NoopPaymentGateway struct {
	mu        sync.Mutex
	seq       int64
	packages  []model.PurchasePackage
	CancelAll bool // when set, every Purchase reports user cancellation
}

func NewNoopPaymentGateway() *NoopPaymentGateway {
	return &NoopPaymentGateway{
		packages: []model.PurchasePackage{
			{Identifier: "credits_15", Title: "Starter Pack", Description: "15 design credits", PriceString: "$1.99"},
			{Identifier: "credits_50", Title: "Decorator Pack", Description: "50 design credits", PriceString: "$4.99"},
			{Identifier: "credits_120", Title: "Studio Pack", Description: "120 design credits", PriceString: "$9.99"},
		},
	}
}

func (g *NoopPaymentGateway) Name() string { return "noop" }

func (g *NoopPaymentGateway) Identify(ctx context.Context, userID string) error { return nil }
func (g *NoopPaymentGateway) Logout(ctx context.Context, userID string) error   { return nil }

func (g *NoopPaymentGateway) ListOfferings(ctx context.Context, userID string) ([]model.PurchasePackage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]model.PurchasePackage, len(g.packages))
	copy(out, g.packages)
	return out, nil
}

func (g *NoopPaymentGateway) Purchase(ctx context.Context, userID, packageID string) (*model.Receipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.CancelAll {
		return nil, domain.ErrPurchaseCancelled
	}
	g.seq++
	return &model.Receipt{
		TransactionID: fmt.Sprintf("noop-txn-%d", g.seq),
		ProductID:     packageID,
		PurchasedAt:   time.Now(),
	}, nil
}

func (g *NoopPaymentGateway) RecentReceipts(ctx context.Context, userID string) ([]model.Receipt, error) {
	return nil, nil
}
