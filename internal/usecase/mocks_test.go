// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"ai-home-decorator/internal/domain"
	"ai-home-decorator/internal/domain/model"
	"ai-home-decorator/internal/domain/ports/adapter"
	"ai-home-decorator/internal/domain/ports/repository"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// memProfileRepo is a small in-memory implementation used by unit tests.
type memProfileRepo struct {
	mu      sync.Mutex
	store   map[string]*model.UserProfile
	saveErr error // used by tests to simulate save failures
	addErr  error
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{store: make(map[string]*model.UserProfile)}
}

var _ repository.ProfileRepository = (*memProfileRepo)(nil)

func (m *memProfileRepo) Save(ctx context.Context, tx repository.Tx, p *model.UserProfile) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.store[p.ID]; ok {
		// credits only change through AddCredits/SpendCredits
		cp := *p
		cp.Credits = existing.Credits
		m.store[p.ID] = &cp
		return nil
	}
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memProfileRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProfileRepo) SetPushToken(ctx context.Context, tx repository.Tx, id, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.PushToken = token
	return nil
}

func (m *memProfileRepo) MarkWelcomeSent(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.WelcomeSent = true
	return nil
}

func (m *memProfileRepo) AddCredits(ctx context.Context, tx repository.Tx, id string, amount int64) (int64, error) {
	if m.addErr != nil {
		return 0, m.addErr
	}
	if amount <= 0 {
		return 0, domain.ErrInvalidArgument
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	p.Credits += amount
	return p.Credits, nil
}

func (m *memProfileRepo) SpendCredits(ctx context.Context, tx repository.Tx, id string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidArgument
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if p.Credits < amount {
		return 0, domain.ErrInsufficientCredits
	}
	p.Credits -= amount
	return p.Credits, nil
}

func (m *memProfileRepo) CountProfiles(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store), nil
}

func (m *memProfileRepo) SumCredits(ctx context.Context, tx repository.Tx) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, p := range m.store {
		sum += p.Credits
	}
	return sum, nil
}

func (m *memProfileRepo) ListActiveSince(ctx context.Context, tx repository.Tx, since time.Time, limit int) ([]*model.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.UserProfile
	for _, p := range m.store {
		if !p.LastActiveAt.Before(since) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// memFulfillmentRepo records consumed event keys like the postgres repo
// does: first insert wins, replays get ErrAlreadyProcessed.
type memFulfillmentRepo struct {
	mu    sync.Mutex
	store map[string]*model.Fulfillment
}

func newMemFulfillmentRepo() *memFulfillmentRepo {
	return &memFulfillmentRepo{store: make(map[string]*model.Fulfillment)}
}

var _ repository.FulfillmentRepository = (*memFulfillmentRepo)(nil)

func (m *memFulfillmentRepo) MarkFulfilled(ctx context.Context, tx repository.Tx, f *model.Fulfillment) error {
	if f.EventID == "" {
		return domain.ErrInvalidArgument
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[f.EventID]; ok {
		return domain.ErrAlreadyProcessed
	}
	cp := *f
	m.store[f.EventID] = &cp
	return nil
}

func (m *memFulfillmentRepo) WasFulfilled(ctx context.Context, tx repository.Tx, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.store[eventID]
	return ok, nil
}

func (m *memFulfillmentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.Fulfillment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Fulfillment
	for _, f := range m.store {
		if f.UserID == userID {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FulfilledAt.After(out[j].FulfilledAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MockTxManager runs the callback immediately without a real
// transaction. Assign WithTxFunc to exercise commit/rollback behavior.
type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// memLocker implements redis.Locker in memory.
type memLocker struct {
	mu    sync.Mutex
	held  map[string]string
	seq   int
	fail  error // returned by TryLock when set
	locks int   // total successful TryLock calls
}

func newMemLocker() *memLocker {
	return &memLocker{held: make(map[string]string)}
}

func (m *memLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if m.fail != nil {
		return "", m.fail
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.held[key]; ok {
		return "", domain.ErrPurchaseInFlight
	}
	m.seq++
	token := fmt.Sprintf("tok-%d", m.seq)
	m.held[key] = token
	m.locks++
	return token, nil
}

func (m *memLocker) Unlock(ctx context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[key] == token {
		delete(m.held, key)
	}
	return nil
}

// fakeGateway lets each test script the billing provider.
type fakeGateway struct {
	ListOfferingsFunc  func(ctx context.Context, userID string) ([]model.PurchasePackage, error)
	PurchaseFunc       func(ctx context.Context, userID, packageID string) (*model.Receipt, error)
	RecentReceiptsFunc func(ctx context.Context, userID string) ([]model.Receipt, error)
}

var _ adapter.PaymentGateway = (*fakeGateway)(nil)

func (f *fakeGateway) Name() string                                    { return "fake" }
func (f *fakeGateway) Identify(ctx context.Context, userID string) error { return nil }
func (f *fakeGateway) Logout(ctx context.Context, userID string) error   { return nil }

func (f *fakeGateway) ListOfferings(ctx context.Context, userID string) ([]model.PurchasePackage, error) {
	if f.ListOfferingsFunc != nil {
		return f.ListOfferingsFunc(ctx, userID)
	}
	return nil, nil
}

func (f *fakeGateway) Purchase(ctx context.Context, userID, packageID string) (*model.Receipt, error) {
	if f.PurchaseFunc != nil {
		return f.PurchaseFunc(ctx, userID, packageID)
	}
	return &model.Receipt{TransactionID: "txn-fake", ProductID: packageID, PurchasedAt: time.Now()}, nil
}

func (f *fakeGateway) RecentReceipts(ctx context.Context, userID string) ([]model.Receipt, error) {
	if f.RecentReceiptsFunc != nil {
		return f.RecentReceiptsFunc(ctx, userID)
	}
	return nil, nil
}

// fakeNotifier records every push it was asked to send.
type fakeNotifier struct {
	mu    sync.Mutex
	sent  []adapter.PushNote
	errOn error
}

var _ adapter.NotificationDispatcher = (*fakeNotifier)(nil)

func (f *fakeNotifier) Send(ctx context.Context, pushToken string, note adapter.PushNote) error {
	if f.errOn != nil {
		return f.errOn
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, note)
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeNotifier) notes() []adapter.PushNote {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]adapter.PushNote, len(f.sent))
	copy(out, f.sent)
	return out
}

// fakeGenerator scripts the image backend.
type fakeGenerator struct {
	RedesignFunc func(ctx context.Context, prompt string, roomImage []byte) ([]byte, error)
}

var _ adapter.ImageGenerator = (*fakeGenerator)(nil)

func (f *fakeGenerator) Redesign(ctx context.Context, prompt string, roomImage []byte) ([]byte, error) {
	if f.RedesignFunc != nil {
		return f.RedesignFunc(ctx, prompt, roomImage)
	}
	return []byte("generated"), nil
}
