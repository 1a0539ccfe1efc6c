// File: internal/usecase/generation_uc_test.go
package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"ai-home-decorator/internal/domain"
	"ai-home-decorator/internal/domain/model"
)

func TestGenerationUC_Redecorate(t *testing.T) {
	ctx := context.Background()
	room := []byte{0xff, 0xd8, 0xff} // jpeg magic is enough for the fake

	t.Run("should spend one credit for a style redesign", func(t *testing.T) {
		profiles := newMemProfileRepo()
		seedProfile(t, profiles, "user-1", 10)
		uc := NewGenerationUseCase(profiles, &fakeGenerator{}, nopLogger())

		img, err := uc.Redecorate(ctx, "user-1", model.DecorModeStyle, "scandinavian living room", room)
		if err != nil {
			t.Fatalf("Redecorate: %v", err)
		}
		if !bytes.Equal(img, []byte("generated")) {
			t.Fatalf("image = %q", img)
		}
		p, _ := profiles.FindByID(ctx, nil, "user-1")
		if p.Credits != 9 {
			t.Fatalf("balance = %d, want 9", p.Credits)
		}
	})

	t.Run("should spend three credits for a custom redesign", func(t *testing.T) {
		profiles := newMemProfileRepo()
		seedProfile(t, profiles, "user-1", 10)
		uc := NewGenerationUseCase(profiles, &fakeGenerator{}, nopLogger())

		if _, err := uc.Redecorate(ctx, "user-1", model.DecorModeCustom, "add a fireplace", room); err != nil {
			t.Fatalf("Redecorate: %v", err)
		}
		p, _ := profiles.FindByID(ctx, nil, "user-1")
		if p.Credits != 7 {
			t.Fatalf("balance = %d, want 7", p.Credits)
		}
	})

	t.Run("should refuse when the balance cannot cover the mode", func(t *testing.T) {
		profiles := newMemProfileRepo()
		seedProfile(t, profiles, "user-1", 2)
		called := false
		gen := &fakeGenerator{
			RedesignFunc: func(ctx context.Context, prompt string, roomImage []byte) ([]byte, error) {
				called = true
				return nil, nil
			},
		}
		uc := NewGenerationUseCase(profiles, gen, nopLogger())

		_, err := uc.Redecorate(ctx, "user-1", model.DecorModeCustom, "prompt", room)
		if !errors.Is(err, domain.ErrInsufficientCredits) {
			t.Fatalf("err = %v, want ErrInsufficientCredits", err)
		}
		if called {
			t.Fatal("generator reached without payment")
		}
		p, _ := profiles.FindByID(ctx, nil, "user-1")
		if p.Credits != 2 {
			t.Fatalf("balance = %d, want 2 (unchanged)", p.Credits)
		}
	})

	t.Run("should refund the spend when generation fails", func(t *testing.T) {
		profiles := newMemProfileRepo()
		seedProfile(t, profiles, "user-1", 5)
		genErr := errors.New("model overloaded")
		gen := &fakeGenerator{
			RedesignFunc: func(ctx context.Context, prompt string, roomImage []byte) ([]byte, error) {
				return nil, genErr
			},
		}
		uc := NewGenerationUseCase(profiles, gen, nopLogger())

		_, err := uc.Redecorate(ctx, "user-1", model.DecorModeCustom, "prompt", room)
		if !errors.Is(err, genErr) {
			t.Fatalf("err = %v, want generator error", err)
		}
		p, _ := profiles.FindByID(ctx, nil, "user-1")
		if p.Credits != 5 {
			t.Fatalf("balance = %d, want 5 (refunded)", p.Credits)
		}
	})

	t.Run("should reject bad input before spending", func(t *testing.T) {
		profiles := newMemProfileRepo()
		seedProfile(t, profiles, "user-1", 5)
		uc := NewGenerationUseCase(profiles, &fakeGenerator{}, nopLogger())

		if _, err := uc.Redecorate(ctx, "", model.DecorModeStyle, "p", room); !errors.Is(err, domain.ErrNotAuthenticated) {
			t.Fatalf("anonymous err = %v", err)
		}
		if _, err := uc.Redecorate(ctx, "user-1", model.DecorModeStyle, "", room); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("empty prompt err = %v", err)
		}
		if _, err := uc.Redecorate(ctx, "user-1", "sepia", "p", room); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("bad mode err = %v", err)
		}
		p, _ := profiles.FindByID(ctx, nil, "user-1")
		if p.Credits != 5 {
			t.Fatalf("balance = %d, want 5", p.Credits)
		}
	})
}
