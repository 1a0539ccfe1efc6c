// File: internal/usecase/stats_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"ai-home-decorator/internal/domain/ports/repository"
	"ai-home-decorator/internal/infra/logging"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// Stats is the admin panel snapshot.
type Stats struct {
	Users        int   `json:"users"`
	TotalCredits int64 `json:"total_credits"`
}

type StatsUseCase interface {
	Totals(ctx context.Context) (*Stats, error)
}

type statsUC struct {
	profiles repository.ProfileRepository
	log      *zerolog.Logger
}

func NewStatsUseCase(profiles repository.ProfileRepository, log *zerolog.Logger) *statsUC {
	return &statsUC{profiles: profiles, log: log}
}

func (u *statsUC) Totals(ctx context.Context) (*Stats, error) {
	defer logging.TraceDuration(u.log, "StatsUC.Totals")()

	users, err := u.profiles.CountProfiles(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	credits, err := u.profiles.SumCredits(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	return &Stats{Users: users, TotalCredits: credits}, nil
}
