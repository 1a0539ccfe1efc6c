package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-home-decorator/internal/domain"
)

type EventType string

const (
	EventInitialPurchase     EventType = "INITIAL_PURCHASE"
	EventRenewal             EventType = "RENEWAL"
	EventNonRenewingPurchase EventType = "NON_RENEWING_PURCHASE"
	// Everything else (cancellations, refunds, billing issues, types
	// added by the platform after us) collapses into this catch-all.
	// Unrecognized events are acknowledged and dropped, never credited
	// and never treated as a hard error.
	EventUnrecognized EventType = "UNRECOGNIZED"
)

// Fulfillable reports whether this event type grants credits.
func (t EventType) Fulfillable() bool {
	switch t {
	case EventInitialPurchase, EventRenewal, EventNonRenewingPurchase:
		return true
	}
	return false
}

// PurchaseEvent is a single notification from the payment platform.
// Delivery is at-least-once and unordered, so Key() must identify the
// underlying real-world transaction, not the delivery attempt.
type PurchaseEvent struct {
	ID            string
	Type          EventType
	RawType       string // platform's type string, kept for logging
	AppUserID     string
	ProductID     string
	TransactionID string
	PurchasedAt   time.Time
}

// Key returns the idempotency key for this event: the store transaction
// id when present, otherwise the platform event id. The transaction id
// is preferred because it survives every path a purchase can reach us
// by (webhook delivery, receipt reconciliation), while the platform
// event id only exists on the webhook leg; keying on it would let a
// reconciled replay of a delivered purchase grant twice.
func (e *PurchaseEvent) Key() string {
	if e.TransactionID != "" {
		return e.TransactionID
	}
	return e.ID
}

// webhookEnvelope mirrors the subset of the platform payload we act on.
// Unknown fields are ignored on purpose; the platform adds new ones
// without notice.
type webhookEnvelope struct {
	Event struct {
		ID            string `json:"id"`
		Type          string `json:"type"`
		AppUserID     string `json:"app_user_id"`
		ProductID     string `json:"product_id"`
		TransactionID string `json:"transaction_id"`
		PurchasedAtMs int64  `json:"purchased_at_ms"`
	} `json:"event"`
}

// DecodePurchaseEvent parses a webhook body defensively. Malformed JSON
// or a fulfillable event missing its user, product, or idempotency key
// (no transaction id and no event id) yields ErrInvalidArgument; an
// unknown type string yields a valid event of type EventUnrecognized.
func DecodePurchaseEvent(body []byte) (*PurchaseEvent, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: malformed webhook payload", domain.ErrInvalidArgument)
	}

	raw := strings.TrimSpace(env.Event.Type)
	if raw == "" {
		return nil, fmt.Errorf("%w: missing event type", domain.ErrInvalidArgument)
	}
	typ := EventType(raw)
	if !typ.Fulfillable() {
		typ = EventUnrecognized
	}

	ev := &PurchaseEvent{
		ID:            strings.TrimSpace(env.Event.ID),
		Type:          typ,
		RawType:       raw,
		AppUserID:     strings.TrimSpace(env.Event.AppUserID),
		ProductID:     strings.TrimSpace(env.Event.ProductID),
		TransactionID: strings.TrimSpace(env.Event.TransactionID),
	}
	if env.Event.PurchasedAtMs > 0 {
		ev.PurchasedAt = time.Unix(0, env.Event.PurchasedAtMs*int64(time.Millisecond)).UTC()
	}

	if ev.Type.Fulfillable() {
		if ev.AppUserID == "" {
			return nil, fmt.Errorf("%w: missing app_user_id", domain.ErrInvalidArgument)
		}
		if ev.ProductID == "" {
			return nil, fmt.Errorf("%w: missing product_id", domain.ErrInvalidArgument)
		}
		if ev.Key() == "" {
			return nil, fmt.Errorf("%w: event carries no id or transaction_id", domain.ErrInvalidArgument)
		}
	}
	return ev, nil
}

// Fulfillment is the durable record that an event's credits were
// granted. Rows are keyed by the event's idempotency key; a second
// insert with the same key is how duplicate deliveries are detected.
type Fulfillment struct {
	EventID     string
	UserID      string
	ProductID   string
	EventType   string
	Credits     int64
	FulfilledAt time.Time
}
