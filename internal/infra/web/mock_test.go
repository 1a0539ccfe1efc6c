package web

import (
	"context"

	"ai-home-decorator/internal/domain/model"
	"ai-home-decorator/internal/usecase"
)

// Scripted use case fakes. Each test assigns only the funcs it needs.

type mockProfileUC struct {
	RegisterOrFetchFunc func(ctx context.Context, id, email string) (*model.UserProfile, error)
	SetPushTokenFunc    func(ctx context.Context, id, token string) error
}

var _ usecase.ProfileUseCase = (*mockProfileUC)(nil)

func (m *mockProfileUC) RegisterOrFetch(ctx context.Context, id, email string) (*model.UserProfile, error) {
	return m.RegisterOrFetchFunc(ctx, id, email)
}

func (m *mockProfileUC) Get(ctx context.Context, id string) (*model.UserProfile, error) {
	return m.RegisterOrFetchFunc(ctx, id, "")
}

func (m *mockProfileUC) Balance(ctx context.Context, id string) (int64, error) {
	p, err := m.RegisterOrFetchFunc(ctx, id, "")
	if err != nil {
		return 0, err
	}
	return p.Credits, nil
}

func (m *mockProfileUC) SetPushToken(ctx context.Context, id, token string) error {
	return m.SetPushTokenFunc(ctx, id, token)
}

type mockPurchaseUC struct {
	ListPackagesFunc func(ctx context.Context, userID string) ([]model.PurchasePackage, error)
	PurchaseFunc     func(ctx context.Context, userID, packageID string) (*model.Receipt, error)
}

var _ usecase.PurchaseUseCase = (*mockPurchaseUC)(nil)

func (m *mockPurchaseUC) ListPackages(ctx context.Context, userID string) ([]model.PurchasePackage, error) {
	return m.ListPackagesFunc(ctx, userID)
}

func (m *mockPurchaseUC) Purchase(ctx context.Context, userID, packageID string) (*model.Receipt, error) {
	return m.PurchaseFunc(ctx, userID, packageID)
}

type mockGenerationUC struct {
	RedecorateFunc func(ctx context.Context, userID string, mode model.DecorMode, prompt string, roomImage []byte) ([]byte, error)
}

var _ usecase.GenerationUseCase = (*mockGenerationUC)(nil)

func (m *mockGenerationUC) Redecorate(ctx context.Context, userID string, mode model.DecorMode, prompt string, roomImage []byte) ([]byte, error) {
	return m.RedecorateFunc(ctx, userID, mode, prompt, roomImage)
}

type mockStatsUC struct {
	TotalsFunc func(ctx context.Context) (*usecase.Stats, error)
}

var _ usecase.StatsUseCase = (*mockStatsUC)(nil)

func (m *mockStatsUC) Totals(ctx context.Context) (*usecase.Stats, error) {
	return m.TotalsFunc(ctx)
}
