// File: internal/usecase/purchase_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"ai-home-decorator/internal/domain"
	"ai-home-decorator/internal/domain/model"
	"ai-home-decorator/internal/domain/ports/adapter"
	"ai-home-decorator/internal/infra/logging"
	"ai-home-decorator/internal/infra/metrics"
	"ai-home-decorator/internal/infra/redis"
)

// Compile-time check
var _ PurchaseUseCase = (*purchaseUC)(nil)

// PurchaseUseCase drives the client side of buying a credit pack. It
// never writes the ledger: credits arrive only through the webhook
// path, no matter what the store call here returns.
type PurchaseUseCase interface {
	ListPackages(ctx context.Context, userID string) ([]model.PurchasePackage, error)
	// Purchase runs the store flow for one package. An anonymous caller
	// gets ErrNotAuthenticated before any store traffic; a second
	// concurrent purchase by the same user gets ErrPurchaseInFlight.
	Purchase(ctx context.Context, userID, packageID string) (*model.Receipt, error)
}

type purchaseUC struct {
	gateway adapter.PaymentGateway
	locker  redis.Locker
	lockTTL time.Duration
	log     *zerolog.Logger
}

func NewPurchaseUseCase(gateway adapter.PaymentGateway, locker redis.Locker, lockTTL time.Duration, log *zerolog.Logger) *purchaseUC {
	if lockTTL <= 0 {
		lockTTL = time.Minute
	}
	return &purchaseUC{gateway: gateway, locker: locker, lockTTL: lockTTL, log: log}
}

func (u *purchaseUC) ListPackages(ctx context.Context, userID string) ([]model.PurchasePackage, error) {
	defer logging.TraceDuration(u.log, "PurchaseUC.ListPackages")()
	return u.gateway.ListOfferings(ctx, userID)
}

func (u *purchaseUC) Purchase(ctx context.Context, userID, packageID string) (*model.Receipt, error) {
	defer logging.TraceDuration(u.log, "PurchaseUC.Purchase")()

	if userID == "" {
		metrics.IncPurchaseAttempt("not_authenticated")
		return nil, domain.ErrNotAuthenticated
	}
	if packageID == "" {
		return nil, domain.ErrInvalidArgument
	}
	log := logging.With(logging.WithUserID(ctx, userID), u.log)

	// One purchase in flight per user. No waiting: a second tap on the
	// buy button fails immediately instead of queueing a duplicate
	// store dialog.
	token, err := u.locker.TryLock(ctx, "purchase:"+userID, u.lockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrPurchaseInFlight) {
			metrics.IncPurchaseAttempt("in_flight")
		}
		return nil, err
	}
	defer func() {
		if unlockErr := u.locker.Unlock(ctx, "purchase:"+userID, token); unlockErr != nil {
			log.Warn().Err(unlockErr).Msg("purchase lock release failed")
		}
	}()

	receipt, err := u.gateway.Purchase(ctx, userID, packageID)
	if err != nil {
		if errors.Is(err, domain.ErrPurchaseCancelled) {
			// User dismissed the store dialog. Not a failure worth
			// surfacing; the client returns to the paywall silently.
			log.Debug().Str("package_id", packageID).Msg("purchase cancelled by user")
			metrics.IncPurchaseAttempt("cancelled")
			return nil, err
		}
		log.Error().Err(err).Str("package_id", packageID).Msg("store purchase failed")
		metrics.IncPurchaseAttempt("error")
		return nil, err
	}

	metrics.IncPurchaseAttempt("completed")
	log.Info().Str("package_id", packageID).Str("transaction_id", receipt.TransactionID).
		Msg("store purchase completed, awaiting webhook fulfillment")
	return receipt, nil
}
