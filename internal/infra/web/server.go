package web

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"ai-home-decorator/internal/usecase"
)

type Server struct {
	profileUC    usecase.ProfileUseCase
	purchaseUC   usecase.PurchaseUseCase
	generationUC usecase.GenerationUseCase
	statsUC      usecase.StatsUseCase
	auth         *AuthManager
	adminKey     string
	log          *zerolog.Logger
}

func NewServer(
	profileUC usecase.ProfileUseCase,
	purchaseUC usecase.PurchaseUseCase,
	generationUC usecase.GenerationUseCase,
	statsUC usecase.StatsUseCase,
	auth *AuthManager,
	adminKey string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		profileUC:    profileUC,
		purchaseUC:   purchaseUC,
		generationUC: generationUC,
		statsUC:      statsUC,
		auth:         auth,
		adminKey:     adminKey,
		log:          logger,
	}
}

// RegisterRoutes sets up the routing for the client and admin API.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/api/v1/profile", s.userMiddleware(profileHandler(s.profileUC)))
	mux.Handle("/api/v1/profile/push-token", s.userMiddleware(pushTokenHandler(s.profileUC)))
	mux.Handle("/api/v1/packages", s.userMiddleware(packagesHandler(s.purchaseUC)))
	mux.Handle("/api/v1/purchase", s.userMiddleware(purchaseHandler(s.purchaseUC)))
	mux.Handle("/api/v1/generate", s.userMiddleware(generateHandler(s.generationUC)))

	mux.Handle("/api/v1/stats", s.adminMiddleware(statsHandler(s.statsUC)))
}

type ctxKey string

const claimsKey ctxKey = "user_claims"

func claimsFrom(r *http.Request) *UserClaims {
	c, _ := r.Context().Value(claimsKey).(*UserClaims)
	return c
}

// userMiddleware authenticates the mobile user via JWT bearer token.
func (s *Server) userMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := contextWithClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// adminMiddleware provides simple Bearer token authentication for the admin API.
func (s *Server) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.adminKey == "" {
			s.log.Error().Msg("Admin API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			http.Error(w, "Unauthorized: Malformed token", http.StatusUnauthorized)
			return
		}

		if tokenParts[1] != s.adminKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
