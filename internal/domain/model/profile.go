package model

import (
	"time"

	"ai-home-decorator/internal/domain"

	"github.com/google/uuid"
)

// UserProfile is the durable per-user entitlement record. The credit
// balance only grows through webhook fulfillment; generation flows
// spend it. Invariant: Credits >= 0 at all times.
type UserProfile struct {
	ID           string
	Email        string
	Credits      int64
	PushToken    string
	WelcomeSent  bool
	RegisteredAt time.Time
	LastActiveAt time.Time
}

// NewUserProfile creates a profile with the sign-up credit grant
// already applied. The id is normally the auth provider's user id; an
// empty id gets a fresh UUID (used by tests and the seed tool).
func NewUserProfile(id, email string, welcomeCredits int64) (*UserProfile, error) {
	if email == "" {
		return nil, domain.ErrInvalidArgument
	}
	if welcomeCredits < 0 {
		return nil, domain.ErrInvalidArgument
	}
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now()
	return &UserProfile{
		ID:           id,
		Email:        email,
		Credits:      welcomeCredits,
		RegisteredAt: now,
		LastActiveAt: now,
	}, nil
}

func (p *UserProfile) IsZero() bool { return p == nil || p.ID == "" }
func (p *UserProfile) Touch()       { p.LastActiveAt = time.Now() }
