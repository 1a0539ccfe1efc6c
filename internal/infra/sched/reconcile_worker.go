package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"ai-home-decorator/internal/domain"
	"ai-home-decorator/internal/domain/model"
	"ai-home-decorator/internal/domain/ports/adapter"
	"ai-home-decorator/internal/domain/ports/repository"
	"ai-home-decorator/internal/usecase"
)

// ReconcileWorker periodically replays recently active users' settled
// store transactions through the fulfillment path. This covers webhook
// deliveries that never arrived (platform outage, our downtime). The
// consumed-event log makes the replay safe: anything already granted
// comes back as a duplicate and is skipped.
type ReconcileWorker struct {
	fulfillment usecase.FulfillmentUseCase
	profiles    repository.ProfileRepository
	gateway     adapter.PaymentGateway
	interval    time.Duration
	lookback    time.Duration // how far back "recently active" reaches
	batch       int
	log         *zerolog.Logger
}

func NewReconcileWorker(
	fulfillment usecase.FulfillmentUseCase,
	profiles repository.ProfileRepository,
	gateway adapter.PaymentGateway,
	interval, lookback time.Duration,
	batch int,
	log *zerolog.Logger,
) *ReconcileWorker {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	if lookback <= 0 {
		lookback = 48 * time.Hour
	}
	if batch <= 0 {
		batch = 200
	}
	return &ReconcileWorker{
		fulfillment: fulfillment,
		profiles:    profiles,
		gateway:     gateway,
		interval:    interval,
		lookback:    lookback,
		batch:       batch,
		log:         log,
	}
}

func (w *ReconcileWorker) Start(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *ReconcileWorker) tick(ctx context.Context) {
	since := time.Now().Add(-w.lookback)
	profiles, err := w.profiles.ListActiveSince(ctx, repository.NoTX, since, w.batch)
	if err != nil {
		w.log.Error().Err(err).Msg("reconciler: list active profiles failed")
		return
	}

	var replayed, skipped int
	for _, p := range profiles {
		receipts, err := w.gateway.RecentReceipts(ctx, p.ID)
		if err != nil {
			w.log.Warn().Err(err).Str("user_id", p.ID).Msg("reconciler: receipt fetch failed")
			continue
		}
		for _, r := range receipts {
			if r.TransactionID == "" {
				continue
			}
			ev := &model.PurchaseEvent{
				Type:          model.EventNonRenewingPurchase,
				RawType:       "RECONCILED",
				AppUserID:     p.ID,
				ProductID:     r.ProductID,
				TransactionID: r.TransactionID,
				PurchasedAt:   r.PurchasedAt,
			}
			_, err := w.fulfillment.Fulfill(ctx, ev)
			switch {
			case err == nil:
				replayed++
				w.log.Info().Str("user_id", p.ID).Str("transaction_id", r.TransactionID).
					Msg("reconciler: missed purchase fulfilled")
			case errors.Is(err, domain.ErrAlreadyProcessed):
				skipped++
			case errors.Is(err, domain.ErrUnknownProduct):
				// Subscriptions and other non-credit products show up in
				// the receipt list too; they are not ours to grant.
				skipped++
			default:
				w.log.Warn().Err(err).Str("transaction_id", r.TransactionID).
					Msg("reconciler: replay failed")
			}
		}
	}
	if replayed > 0 {
		w.log.Info().Int("replayed", replayed).Int("skipped", skipped).Msg("reconciliation pass complete")
	}
}
