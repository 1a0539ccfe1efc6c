package web

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ai-home-decorator/internal/domain"
	"ai-home-decorator/internal/domain/model"
	"ai-home-decorator/internal/infra/logging"
	"ai-home-decorator/internal/usecase"
)

func contextWithClaims(ctx context.Context, claims *UserClaims) context.Context {
	ctx = context.WithValue(ctx, claimsKey, claims)
	return logging.WithUserID(ctx, claims.Subject)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type profileResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Credits      int64     `json:"credits"`
	RegisteredAt time.Time `json:"registered_at"`
}

// profileHandler serves the signed-in user's profile. First sight of a
// user id creates the profile with the welcome grant, so the app's
// initial fetch after sign-in is also the registration.
func profileHandler(profileUC usecase.ProfileUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		claims := claimsFrom(r)

		p, err := profileUC.RegisterOrFetch(r.Context(), claims.Subject, claims.Email)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				http.Error(w, "Invalid profile", http.StatusBadRequest)
				return
			}
			http.Error(w, "Failed to load profile", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, profileResponse{
			ID:           p.ID,
			Email:        p.Email,
			Credits:      p.Credits,
			RegisteredAt: p.RegisteredAt,
		})
	}
}

type pushTokenRequest struct {
	Token string `json:"token"`
}

func pushTokenHandler(profileUC usecase.ProfileUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		claims := claimsFrom(r)

		var req pushTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := profileUC.SetPushToken(r.Context(), claims.Subject, req.Token); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "Failed to store push token", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func packagesHandler(purchaseUC usecase.PurchaseUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		claims := claimsFrom(r)

		packages, err := purchaseUC.ListPackages(r.Context(), claims.Subject)
		if err != nil {
			http.Error(w, "Failed to list packages", http.StatusInternalServerError)
			return
		}
		if packages == nil {
			packages = []model.PurchasePackage{}
		}

		response := struct {
			Data []model.PurchasePackage `json:"data"`
		}{Data: packages}
		writeJSON(w, http.StatusOK, response)
	}
}

type purchaseRequest struct {
	PackageID string `json:"package_id"`
}

type purchaseResponse struct {
	Status        string `json:"status"` // pending_fulfillment | cancelled
	TransactionID string `json:"transaction_id,omitempty"`
	Message       string `json:"message,omitempty"`
}

// purchaseHandler runs the store flow. The credits themselves always
// arrive via the webhook, so a completed purchase answers with an
// optimistic message instead of a new balance.
func purchaseHandler(purchaseUC usecase.PurchaseUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		claims := claimsFrom(r)

		var req purchaseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PackageID == "" {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		receipt, err := purchaseUC.Purchase(r.Context(), claims.Subject, req.PackageID)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, purchaseResponse{
				Status:        "pending_fulfillment",
				TransactionID: receipt.TransactionID,
				Message:       "Your credits are being added! It may take a moment to appear.",
			})
		case errors.Is(err, domain.ErrPurchaseCancelled):
			// Not an error to the client: the user changed their mind.
			writeJSON(w, http.StatusOK, purchaseResponse{Status: "cancelled"})
		case errors.Is(err, domain.ErrPurchaseInFlight):
			http.Error(w, "Purchase already in progress", http.StatusConflict)
		case errors.Is(err, domain.ErrNotAuthenticated):
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		default:
			http.Error(w, "Purchase failed", http.StatusInternalServerError)
		}
	}
}

type generateRequest struct {
	Mode   string `json:"mode"` // style | custom
	Prompt string `json:"prompt"`
	Image  string `json:"image"` // base64 room photo
}

func generateHandler(generationUC usecase.GenerationUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		claims := claimsFrom(r)

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		roomImage, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			http.Error(w, "Invalid image encoding", http.StatusBadRequest)
			return
		}

		result, err := generationUC.Redecorate(r.Context(), claims.Subject, model.DecorMode(req.Mode), req.Prompt, roomImage)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, struct {
				Image string `json:"image"`
			}{Image: base64.StdEncoding.EncodeToString(result)})
		case errors.Is(err, domain.ErrInsufficientCredits):
			http.Error(w, "Not enough credits", http.StatusPaymentRequired)
		case errors.Is(err, domain.ErrInvalidArgument):
			http.Error(w, "Invalid request", http.StatusBadRequest)
		case errors.Is(err, domain.ErrNotFound):
			http.NotFound(w, r)
		default:
			http.Error(w, "Generation failed", http.StatusInternalServerError)
		}
	}
}

// statsHandler returns an http.HandlerFunc that serves service statistics.
func statsHandler(statsUC usecase.StatsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		totals, err := statsUC.Totals(r.Context())
		if err != nil {
			http.Error(w, "Failed to get totals", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, totals)
	}
}
