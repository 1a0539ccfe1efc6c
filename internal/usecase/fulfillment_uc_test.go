// File: internal/usecase/fulfillment_uc_test.go
package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-home-decorator/internal/domain"
	"ai-home-decorator/internal/domain/model"
	"ai-home-decorator/internal/infra/worker"
)

type fulfillmentDeps struct {
	profiles     *memProfileRepo
	fulfillments *memFulfillmentRepo
	tm           *MockTxManager
	notifier     *fakeNotifier
}

func newFulfillmentUCDeps() (*fulfillmentUC, *fulfillmentDeps) {
	deps := &fulfillmentDeps{
		profiles:     newMemProfileRepo(),
		fulfillments: newMemFulfillmentRepo(),
		tm:           &MockTxManager{},
		notifier:     &fakeNotifier{},
	}
	uc := NewFulfillmentUseCase(
		deps.profiles, deps.fulfillments, deps.tm,
		model.DefaultCreditCatalog(), deps.notifier, nil, nopLogger(),
	)
	return uc, deps
}

func seedProfile(t *testing.T, repo *memProfileRepo, id string, credits int64) {
	t.Helper()
	p, err := model.NewUserProfile(id, id+"@example.com", credits)
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	if err := repo.Save(context.Background(), nil, p); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
}

func purchaseEvent(id, typ, userID, productID, txnID string) *model.PurchaseEvent {
	et := model.EventType(typ)
	if !et.Fulfillable() {
		et = model.EventUnrecognized
	}
	return &model.PurchaseEvent{
		ID:            id,
		Type:          et,
		RawType:       typ,
		AppUserID:     userID,
		ProductID:     productID,
		TransactionID: txnID,
		PurchasedAt:   time.Now(),
	}
}

func TestFulfillmentUC_Fulfill(t *testing.T) {
	ctx := context.Background()

	t.Run("should grant credits for an initial purchase", func(t *testing.T) {
		uc, deps := newFulfillmentUCDeps()
		seedProfile(t, deps.profiles, "user-1", 5)

		ev := purchaseEvent("evt_1", "INITIAL_PURCHASE", "user-1", "credits_50", "txn_1")
		f, err := uc.Fulfill(ctx, ev)
		if err != nil {
			t.Fatalf("Fulfill: %v", err)
		}
		if f.Credits != 50 {
			t.Fatalf("fulfillment credits = %d, want 50", f.Credits)
		}
		p, _ := deps.profiles.FindByID(ctx, nil, "user-1")
		if p.Credits != 55 {
			t.Fatalf("balance = %d, want 55", p.Credits)
		}
	})

	t.Run("should not grant twice for the same event key", func(t *testing.T) {
		uc, deps := newFulfillmentUCDeps()
		seedProfile(t, deps.profiles, "user-1", 0)

		ev := purchaseEvent("evt_1", "INITIAL_PURCHASE", "user-1", "credits_15", "txn_1")
		if _, err := uc.Fulfill(ctx, ev); err != nil {
			t.Fatalf("first Fulfill: %v", err)
		}
		// At-least-once delivery: same event arrives again.
		replay := purchaseEvent("evt_1", "INITIAL_PURCHASE", "user-1", "credits_15", "txn_1")
		_, err := uc.Fulfill(ctx, replay)
		if !errors.Is(err, domain.ErrAlreadyProcessed) {
			t.Fatalf("replay err = %v, want ErrAlreadyProcessed", err)
		}
		p, _ := deps.profiles.FindByID(ctx, nil, "user-1")
		if p.Credits != 15 {
			t.Fatalf("balance after replay = %d, want 15", p.Credits)
		}
	})

	t.Run("should not grant again when reconciliation replays a delivered purchase", func(t *testing.T) {
		uc, deps := newFulfillmentUCDeps()
		seedProfile(t, deps.profiles, "user-1", 0)

		// Webhook delivery carries both identifiers.
		delivered := purchaseEvent("evt_uuid_1", "INITIAL_PURCHASE", "user-1", "credits_15", "txn_store_1")
		if _, err := uc.Fulfill(ctx, delivered); err != nil {
			t.Fatalf("webhook Fulfill: %v", err)
		}

		// The reconciler re-derives the purchase from the store receipt,
		// which only knows the transaction id. Same purchase, so it must
		// collide with the webhook grant.
		replayed := purchaseEvent("", "NON_RENEWING_PURCHASE", "user-1", "credits_15", "txn_store_1")
		_, err := uc.Fulfill(ctx, replayed)
		if !errors.Is(err, domain.ErrAlreadyProcessed) {
			t.Fatalf("replay err = %v, want ErrAlreadyProcessed", err)
		}
		p, _ := deps.profiles.FindByID(ctx, nil, "user-1")
		if p.Credits != 15 {
			t.Fatalf("balance = %d, want 15 (single grant)", p.Credits)
		}
	})

	t.Run("should dedupe by transaction id when the event id is absent", func(t *testing.T) {
		uc, deps := newFulfillmentUCDeps()
		seedProfile(t, deps.profiles, "user-1", 0)

		first := purchaseEvent("", "INITIAL_PURCHASE", "user-1", "credits_15", "txn_9")
		if _, err := uc.Fulfill(ctx, first); err != nil {
			t.Fatalf("first Fulfill: %v", err)
		}
		second := purchaseEvent("", "INITIAL_PURCHASE", "user-1", "credits_15", "txn_9")
		if _, err := uc.Fulfill(ctx, second); !errors.Is(err, domain.ErrAlreadyProcessed) {
			t.Fatalf("err = %v, want ErrAlreadyProcessed", err)
		}
		p, _ := deps.profiles.FindByID(ctx, nil, "user-1")
		if p.Credits != 15 {
			t.Fatalf("balance = %d, want 15", p.Credits)
		}
	})

	t.Run("should apply distinct concurrent events exactly once each", func(t *testing.T) {
		uc, deps := newFulfillmentUCDeps()
		seedProfile(t, deps.profiles, "user-1", 0)

		events := []*model.PurchaseEvent{
			purchaseEvent("evt_a", "INITIAL_PURCHASE", "user-1", "credits_15", "txn_a"),
			purchaseEvent("evt_b", "NON_RENEWING_PURCHASE", "user-1", "credits_15", "txn_b"),
		}
		var wg sync.WaitGroup
		for _, ev := range events {
			wg.Add(1)
			go func(ev *model.PurchaseEvent) {
				defer wg.Done()
				if _, err := uc.Fulfill(ctx, ev); err != nil {
					t.Errorf("Fulfill %s: %v", ev.ID, err)
				}
			}(ev)
		}
		wg.Wait()

		p, _ := deps.profiles.FindByID(ctx, nil, "user-1")
		if p.Credits != 30 {
			t.Fatalf("balance = %d, want 30", p.Credits)
		}
	})

	t.Run("should ignore non-purchase event types", func(t *testing.T) {
		uc, deps := newFulfillmentUCDeps()
		seedProfile(t, deps.profiles, "user-1", 10)

		ev := purchaseEvent("evt_c", "CANCELLATION", "user-1", "credits_15", "txn_c")
		_, err := uc.Fulfill(ctx, ev)
		if !errors.Is(err, domain.ErrIgnoredEvent) {
			t.Fatalf("err = %v, want ErrIgnoredEvent", err)
		}
		p, _ := deps.profiles.FindByID(ctx, nil, "user-1")
		if p.Credits != 10 {
			t.Fatalf("balance changed on ignored event: %d", p.Credits)
		}
		if ok, _ := deps.fulfillments.WasFulfilled(ctx, nil, "evt_c"); ok {
			t.Fatal("ignored event must not be recorded as fulfilled")
		}
	})

	t.Run("should reject an unknown product id", func(t *testing.T) {
		uc, deps := newFulfillmentUCDeps()
		seedProfile(t, deps.profiles, "user-1", 10)

		ev := purchaseEvent("evt_d", "INITIAL_PURCHASE", "user-1", "credits_9999", "txn_d")
		_, err := uc.Fulfill(ctx, ev)
		if !errors.Is(err, domain.ErrUnknownProduct) {
			t.Fatalf("err = %v, want ErrUnknownProduct", err)
		}
		p, _ := deps.profiles.FindByID(ctx, nil, "user-1")
		if p.Credits != 10 {
			t.Fatalf("balance changed on unknown product: %d", p.Credits)
		}
	})

	t.Run("should fail for an unknown user", func(t *testing.T) {
		uc, _ := newFulfillmentUCDeps()
		ev := purchaseEvent("evt_e", "RENEWAL", "ghost", "credits_15", "txn_e")
		_, err := uc.Fulfill(ctx, ev)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("should queue a push once the grant is durable", func(t *testing.T) {
		deps := &fulfillmentDeps{
			profiles:     newMemProfileRepo(),
			fulfillments: newMemFulfillmentRepo(),
			tm:           &MockTxManager{},
			notifier:     &fakeNotifier{},
		}
		pool := worker.NewPool(1, nopLogger())
		poolCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		pool.Start(poolCtx)
		uc := NewFulfillmentUseCase(
			deps.profiles, deps.fulfillments, deps.tm,
			model.DefaultCreditCatalog(), deps.notifier, pool, nopLogger(),
		)

		seedProfile(t, deps.profiles, "user-1", 0)
		_ = deps.profiles.SetPushToken(ctx, nil, "user-1", "ExponentPushToken[abc]")

		ev := purchaseEvent("evt_f", "INITIAL_PURCHASE", "user-1", "credits_120", "txn_f")
		if _, err := uc.Fulfill(ctx, ev); err != nil {
			t.Fatalf("Fulfill: %v", err)
		}

		deadline := time.Now().Add(2 * time.Second)
		for deps.notifier.count() == 0 {
			if time.Now().After(deadline) {
				t.Fatal("push was never dispatched")
			}
			time.Sleep(10 * time.Millisecond)
		}
	})
}

func TestFulfillmentUC_History(t *testing.T) {
	ctx := context.Background()
	uc, deps := newFulfillmentUCDeps()
	seedProfile(t, deps.profiles, "user-1", 0)

	for _, ev := range []*model.PurchaseEvent{
		purchaseEvent("evt_1", "INITIAL_PURCHASE", "user-1", "credits_15", "txn_1"),
		purchaseEvent("evt_2", "RENEWAL", "user-1", "credits_50", "txn_2"),
	} {
		if _, err := uc.Fulfill(ctx, ev); err != nil {
			t.Fatalf("Fulfill %s: %v", ev.ID, err)
		}
	}

	got, err := uc.History(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(history) = %d, want 2", len(got))
	}
	if _, err := uc.History(ctx, "", 10); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("empty user err = %v, want ErrInvalidArgument", err)
	}
}
