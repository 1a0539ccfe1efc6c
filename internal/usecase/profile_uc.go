// File: internal/usecase/profile_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"ai-home-decorator/internal/domain"
	"ai-home-decorator/internal/domain/model"
	"ai-home-decorator/internal/domain/ports/adapter"
	"ai-home-decorator/internal/domain/ports/repository"
	"ai-home-decorator/internal/infra/logging"
	"ai-home-decorator/internal/infra/worker"
)

// Compile-time check
var _ ProfileUseCase = (*profileUC)(nil)

type ProfileUseCase interface {
	// RegisterOrFetch returns the existing profile for id, creating it
	// with the welcome credit grant on first sight.
	RegisterOrFetch(ctx context.Context, id, email string) (*model.UserProfile, error)
	Get(ctx context.Context, id string) (*model.UserProfile, error)
	Balance(ctx context.Context, id string) (int64, error)
	// SetPushToken stores the device token and, exactly once per user,
	// follows up with the welcome notification.
	SetPushToken(ctx context.Context, id, token string) error
}

type profileUC struct {
	profiles       repository.ProfileRepository
	tm             repository.TransactionManager
	notifier       adapter.NotificationDispatcher
	gateway        adapter.PaymentGateway
	pool           *worker.Pool
	welcomeCredits int64
	log            *zerolog.Logger
}

func NewProfileUseCase(
	profiles repository.ProfileRepository,
	tm repository.TransactionManager,
	notifier adapter.NotificationDispatcher,
	gateway adapter.PaymentGateway,
	pool *worker.Pool,
	welcomeCredits int64,
	log *zerolog.Logger,
) *profileUC {
	return &profileUC{
		profiles:       profiles,
		tm:             tm,
		notifier:       notifier,
		gateway:        gateway,
		pool:           pool,
		welcomeCredits: welcomeCredits,
		log:            log,
	}
}

func (u *profileUC) RegisterOrFetch(ctx context.Context, id, email string) (*model.UserProfile, error) {
	defer logging.TraceDuration(u.log, "ProfileUC.RegisterOrFetch")()

	if id == "" {
		return nil, domain.ErrInvalidArgument
	}

	var out *model.UserProfile
	var created bool
	// Read and create run as one atomic unit so two concurrent first
	// requests cannot both apply the welcome grant.
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		p, err := u.profiles.FindByID(ctx, tx, id)
		if err == nil {
			p.Touch()
			if saveErr := u.profiles.Save(ctx, tx, p); saveErr != nil {
				return saveErr
			}
			out = p
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		fresh, err := model.NewUserProfile(id, email, u.welcomeCredits)
		if err != nil {
			return err
		}
		if err := u.profiles.Save(ctx, tx, fresh); err != nil {
			return err
		}
		out = fresh
		created = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created && u.gateway != nil {
		// Link the billing identity so purchase events carry our user
		// id. Best-effort: the webhook path still works if this fails,
		// the platform links on first device purchase anyway.
		if err := u.gateway.Identify(ctx, id); err != nil {
			logging.With(ctx, u.log).Warn().Err(err).Msg("billing identity link failed")
		}
	}
	return out, nil
}

func (u *profileUC) Get(ctx context.Context, id string) (*model.UserProfile, error) {
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.profiles.FindByID(ctx, repository.NoTX, id)
}

func (u *profileUC) Balance(ctx context.Context, id string) (int64, error) {
	p, err := u.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return p.Credits, nil
}

func (u *profileUC) SetPushToken(ctx context.Context, id, token string) error {
	defer logging.TraceDuration(u.log, "ProfileUC.SetPushToken")()

	if id == "" || token == "" {
		return domain.ErrInvalidArgument
	}

	var sendWelcome bool
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		p, err := u.profiles.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := u.profiles.SetPushToken(ctx, tx, id, token); err != nil {
			return err
		}
		if !p.WelcomeSent {
			if err := u.profiles.MarkWelcomeSent(ctx, tx, id); err != nil {
				return err
			}
			sendWelcome = true
		}
		return nil
	})
	if err != nil {
		return err
	}

	if sendWelcome && u.pool != nil && u.notifier != nil {
		note := adapter.PushNote{
			Title:  "Welcome!",
			Body:   fmt.Sprintf("You've received %d free credits! Start designing your dream room now.", u.welcomeCredits),
			Screen: "home",
		}
		submitErr := u.pool.Submit(func(taskCtx context.Context) error {
			return u.notifier.Send(taskCtx, token, note)
		})
		if submitErr != nil {
			logging.With(ctx, u.log).Warn().Err(submitErr).Msg("welcome push not queued")
		}
	}
	return nil
}
