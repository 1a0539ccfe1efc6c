package repository

import (
	"context"
	"time"

	"ai-home-decorator/internal/domain/model"
)

// ProfileRepository is the Entitlement Store: it holds the per-user
// credit balance and serves every read and write of it.
//
// AddCredits and SpendCredits are relative, single-statement updates so
// concurrent webhook deliveries for the same user cannot lose an
// increment; callers never compute a new absolute balance themselves.
type ProfileRepository interface {
	Save(ctx context.Context, tx Tx, p *model.UserProfile) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.UserProfile, error)
	SetPushToken(ctx context.Context, tx Tx, id, token string) error
	MarkWelcomeSent(ctx context.Context, tx Tx, id string) error

	// AddCredits atomically adds amount (> 0) to the user's balance and
	// returns the new balance. ErrNotFound if the profile is missing.
	AddCredits(ctx context.Context, tx Tx, id string, amount int64) (int64, error)
	// SpendCredits atomically subtracts amount (> 0), refusing to go
	// below zero with ErrInsufficientCredits, and returns the new
	// balance.
	SpendCredits(ctx context.Context, tx Tx, id string, amount int64) (int64, error)

	CountProfiles(ctx context.Context, tx Tx) (int, error)
	SumCredits(ctx context.Context, tx Tx) (int64, error)
	ListActiveSince(ctx context.Context, tx Tx, since time.Time, limit int) ([]*model.UserProfile, error)
}
