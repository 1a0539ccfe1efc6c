// File: internal/usecase/fulfillment_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"ai-home-decorator/internal/domain"
	"ai-home-decorator/internal/domain/model"
	"ai-home-decorator/internal/domain/ports/adapter"
	"ai-home-decorator/internal/domain/ports/repository"
	"ai-home-decorator/internal/infra/logging"
	"ai-home-decorator/internal/infra/metrics"
	"ai-home-decorator/internal/infra/worker"
)

// Compile-time check
var _ FulfillmentUseCase = (*fulfillmentUC)(nil)

type FulfillmentUseCase interface {
	// Fulfill grants the credits an event is worth, exactly once per
	// event key. Replays return ErrAlreadyProcessed with nothing
	// written; non-purchase events return ErrIgnoredEvent.
	Fulfill(ctx context.Context, ev *model.PurchaseEvent) (*model.Fulfillment, error)
	// History lists a user's past grants, newest first.
	History(ctx context.Context, userID string, limit int) ([]*model.Fulfillment, error)
}

type fulfillmentUC struct {
	profiles     repository.ProfileRepository
	fulfillments repository.FulfillmentRepository
	tm           repository.TransactionManager
	catalog      *model.CreditCatalog
	notifier     adapter.NotificationDispatcher
	pool         *worker.Pool
	log          *zerolog.Logger
}

func NewFulfillmentUseCase(
	profiles repository.ProfileRepository,
	fulfillments repository.FulfillmentRepository,
	tm repository.TransactionManager,
	catalog *model.CreditCatalog,
	notifier adapter.NotificationDispatcher,
	pool *worker.Pool,
	log *zerolog.Logger,
) *fulfillmentUC {
	return &fulfillmentUC{
		profiles:     profiles,
		fulfillments: fulfillments,
		tm:           tm,
		catalog:      catalog,
		notifier:     notifier,
		pool:         pool,
		log:          log,
	}
}

func (u *fulfillmentUC) Fulfill(ctx context.Context, ev *model.PurchaseEvent) (*model.Fulfillment, error) {
	defer logging.TraceDuration(u.log, "FulfillmentUC.Fulfill")()

	if ev == nil {
		return nil, domain.ErrInvalidArgument
	}
	log := logging.With(logging.WithEventID(logging.WithUserID(ctx, ev.AppUserID), ev.Key()), u.log)

	if !ev.Type.Fulfillable() {
		log.Info().Str("type", ev.RawType).Msg("ignoring non-purchase event")
		metrics.IncWebhookEvent("ignored")
		return nil, domain.ErrIgnoredEvent
	}

	credits, err := u.catalog.Credits(ev.ProductID)
	if err != nil {
		log.Warn().Str("product_id", ev.ProductID).Msg("unknown product in purchase event")
		metrics.IncWebhookEvent("unknown_product")
		return nil, err
	}

	f := &model.Fulfillment{
		EventID:     ev.Key(),
		UserID:      ev.AppUserID,
		ProductID:   ev.ProductID,
		EventType:   string(ev.Type),
		Credits:     credits,
		FulfilledAt: time.Now(),
	}

	// Consumed-event insert and balance increment commit together or
	// not at all; a crash between them must not strand or double a
	// grant.
	var balance int64
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.fulfillments.MarkFulfilled(ctx, tx, f); err != nil {
			return err
		}
		b, err := u.profiles.AddCredits(ctx, tx, ev.AppUserID, credits)
		if err != nil {
			return err
		}
		balance = b
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyProcessed):
			log.Info().Msg("duplicate delivery, already fulfilled")
			metrics.IncWebhookEvent("duplicate")
		case errors.Is(err, domain.ErrNotFound):
			log.Warn().Msg("purchase event for unknown user")
			metrics.IncWebhookEvent("unknown_user")
		default:
			log.Error().Err(err).Msg("fulfillment transaction failed")
			metrics.IncWebhookEvent("error")
		}
		return nil, err
	}

	metrics.IncWebhookEvent("fulfilled")
	metrics.AddCreditsGranted(credits)
	log.Info().Int64("credits", credits).Int64("balance", balance).Msg("purchase fulfilled")

	u.notifyFulfilled(ctx, ev.AppUserID, credits)
	return f, nil
}

// notifyFulfilled queues a best-effort push once the grant is durable.
func (u *fulfillmentUC) notifyFulfilled(ctx context.Context, userID string, credits int64) {
	if u.pool == nil || u.notifier == nil {
		return
	}
	note := adapter.PushNote{
		Title:  "Credits added",
		Body:   fmt.Sprintf("%d credits have been added to your account.", credits),
		Screen: "home",
	}
	err := u.pool.Submit(func(taskCtx context.Context) error {
		p, err := u.profiles.FindByID(taskCtx, repository.NoTX, userID)
		if err != nil {
			return err
		}
		if p.PushToken == "" {
			return nil
		}
		return u.notifier.Send(taskCtx, p.PushToken, note)
	})
	if err != nil {
		logging.With(ctx, u.log).Warn().Err(err).Msg("push not queued")
	}
}

func (u *fulfillmentUC) History(ctx context.Context, userID string, limit int) ([]*model.Fulfillment, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if limit <= 0 {
		limit = 50
	}
	return u.fulfillments.ListByUser(ctx, repository.NoTX, userID, limit)
}
