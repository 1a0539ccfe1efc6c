// File: internal/usecase/generation_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"ai-home-decorator/internal/domain"
	"ai-home-decorator/internal/domain/model"
	"ai-home-decorator/internal/domain/ports/adapter"
	"ai-home-decorator/internal/domain/ports/repository"
	"ai-home-decorator/internal/infra/logging"
	"ai-home-decorator/internal/infra/metrics"
)

// Compile-time check
var _ GenerationUseCase = (*generationUC)(nil)

type GenerationUseCase interface {
	// Redecorate spends the mode's credit cost, generates the image,
	// and refunds the spend if generation fails. ErrInsufficientCredits
	// when the balance cannot cover the mode.
	Redecorate(ctx context.Context, userID string, mode model.DecorMode, prompt string, roomImage []byte) ([]byte, error)
}

type generationUC struct {
	profiles  repository.ProfileRepository
	generator adapter.ImageGenerator
	log       *zerolog.Logger
}

func NewGenerationUseCase(profiles repository.ProfileRepository, generator adapter.ImageGenerator, log *zerolog.Logger) *generationUC {
	return &generationUC{profiles: profiles, generator: generator, log: log}
}

func (u *generationUC) Redecorate(ctx context.Context, userID string, mode model.DecorMode, prompt string, roomImage []byte) ([]byte, error) {
	defer logging.TraceDuration(u.log, "GenerationUC.Redecorate")()

	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	if len(roomImage) == 0 || prompt == "" {
		return nil, domain.ErrInvalidArgument
	}
	cost, err := mode.CreditCost()
	if err != nil {
		return nil, err
	}
	log := logging.With(logging.WithUserID(ctx, userID), u.log)

	// Pay first: the spend is a single conditional update, so two
	// concurrent generations cannot overdraw the balance.
	balance, err := u.profiles.SpendCredits(ctx, repository.NoTX, userID, cost)
	if err != nil {
		metrics.ObserveGeneration(string(mode), false, 0)
		return nil, err
	}

	image, genErr := u.generator.Redesign(ctx, prompt, roomImage)
	if genErr != nil {
		// Refund the spend; the user paid for an image that never came.
		if _, refundErr := u.profiles.AddCredits(ctx, repository.NoTX, userID, cost); refundErr != nil {
			log.Error().Err(refundErr).Int64("credits", cost).Msg("refund after failed generation did not apply")
		}
		metrics.ObserveGeneration(string(mode), false, 0)
		log.Error().Err(genErr).Str("mode", string(mode)).Msg("image generation failed")
		return nil, genErr
	}

	metrics.ObserveGeneration(string(mode), true, cost)
	log.Info().Str("mode", string(mode)).Int64("cost", cost).Int64("balance", balance).Msg("room redesigned")
	return image, nil
}
