package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Schema is the full DDL for the entitlement store. The CHECK on
// credits is the last line of defense for the non-negative invariant;
// SpendCredits should never let an update reach it.
const Schema = `
CREATE TABLE IF NOT EXISTS user_profiles (
    id             TEXT PRIMARY KEY,
    email          TEXT NOT NULL,
    credits        BIGINT NOT NULL DEFAULT 0 CHECK (credits >= 0),
    push_token     TEXT,
    welcome_sent   BOOLEAN NOT NULL DEFAULT FALSE,
    registered_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    last_active_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS fulfilled_events (
    event_id     TEXT PRIMARY KEY,
    user_id      TEXT NOT NULL REFERENCES user_profiles(id),
    product_id   TEXT NOT NULL,
    event_type   TEXT NOT NULL,
    credits      BIGINT NOT NULL,
    fulfilled_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_fulfilled_events_user ON fulfilled_events (user_id, fulfilled_at DESC);
CREATE INDEX IF NOT EXISTS idx_user_profiles_active ON user_profiles (last_active_at DESC);
`

// EnsureSchema creates the tables when they are missing. Used by
// cmd/seed and the integration test harness.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, Schema)
	return err
}
