// File: internal/infra/http/server.go
package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"ai-home-decorator/internal/config"
	"ai-home-decorator/internal/domain"
	"ai-home-decorator/internal/domain/model"
	"ai-home-decorator/internal/infra/logging"
	"ai-home-decorator/internal/infra/metrics"
	"ai-home-decorator/internal/usecase"
)

const maxWebhookBody = 1 << 20 // 1 MiB, far above any real payload

// Server is the webhook receiver. It terminates the payment platform's
// delivery loop: any 2xx stops redelivery, any other status invites a
// retry, so the handler maps errors to statuses with care.
type Server struct {
	cfg         *config.Config
	fulfillment usecase.FulfillmentUseCase
	log         *zerolog.Logger
	server      *http.Server
}

func NewServer(cfg *config.Config, fulfillment usecase.FulfillmentUseCase, log *zerolog.Logger) *Server {
	return &Server{cfg: cfg, fulfillment: fulfillment, log: log}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook/revenuecat", s.handleWebhook)
	mux.HandleFunc("/health", s.handleHealthCheck)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Server.WebhookPort),
		Handler: s.Handler(),
	}
	s.log.Info().Int("port", s.cfg.Server.WebhookPort).Msg("webhook server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// authorized checks the shared webhook secret. Constant-time compare:
// the header is attacker-controlled input guarding a credit-granting
// endpoint.
func (s *Server) authorized(r *http.Request) bool {
	got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	want := s.cfg.RevenueCat.WebhookSecret
	if got == "" || want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := logging.WithTraceID(r.Context(), uuid.NewString())
	log := logging.With(ctx, s.log)

	if !s.authorized(r) {
		log.Warn().Str("remote", r.RemoteAddr).Msg("webhook with bad or missing secret")
		metrics.IncWebhookEvent("unauthorized")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	ev, err := model.DecodePurchaseEvent(body)
	if err != nil {
		log.Warn().Err(err).Msg("undecodable webhook payload")
		metrics.IncWebhookEvent("malformed")
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	f, err := s.fulfillment.Fulfill(ctx, ev)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Added %d credits", f.Credits)
	case errors.Is(err, domain.ErrIgnoredEvent):
		// Acknowledged so the platform stops redelivering it.
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Ignored event type")
	case errors.Is(err, domain.ErrAlreadyProcessed):
		// Duplicate delivery of a grant we already applied.
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	case errors.Is(err, domain.ErrUnknownProduct):
		http.Error(w, "Unknown product", http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "User not found", http.StatusNotFound)
	default:
		// Transient storage trouble: a non-2xx makes the platform
		// redeliver, and the idempotency key makes the retry safe.
		log.Error().Err(err).Msg("fulfillment failed")
		http.Error(w, "Database error", http.StatusInternalServerError)
	}
}
