package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"ai-home-decorator/internal/domain"
	"ai-home-decorator/internal/domain/model"
	"ai-home-decorator/internal/domain/ports/repository"
)

var _ repository.FulfillmentRepository = (*PostgresFulfillmentRepo)(nil)

type PostgresFulfillmentRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresFulfillmentRepo(pool *pgxpool.Pool) *PostgresFulfillmentRepo {
	return &PostgresFulfillmentRepo{pool: pool}
}

// MarkFulfilled claims the event key. The primary key on event_id makes
// duplicate delivery detection a plain insert: zero affected rows means
// some earlier delivery already claimed it.
func (r *PostgresFulfillmentRepo) MarkFulfilled(ctx context.Context, qx repository.Tx, f *model.Fulfillment) error {
	if f == nil || f.EventID == "" {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO fulfilled_events (event_id, user_id, product_id, event_type, credits, fulfilled_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (event_id) DO NOTHING;
`
	ex, err := getExecutor(r.pool, qx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, q, f.EventID, f.UserID, f.ProductID, f.EventType, f.Credits, f.FulfilledAt)
	if err != nil {
		return fmt.Errorf("mark fulfilled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyProcessed
	}
	return nil
}

func (r *PostgresFulfillmentRepo) WasFulfilled(ctx context.Context, qx repository.Tx, eventID string) (bool, error) {
	row := pickRow(ctx, r.pool, qx, `SELECT EXISTS(SELECT 1 FROM fulfilled_events WHERE event_id=$1);`, eventID)
	var seen bool
	if err := row.Scan(&seen); err != nil {
		return false, fmt.Errorf("was fulfilled: %w", err)
	}
	return seen, nil
}

func (r *PostgresFulfillmentRepo) ListByUser(ctx context.Context, qx repository.Tx, userID string, limit int) ([]*model.Fulfillment, error) {
	const q = `
SELECT event_id, user_id, product_id, event_type, credits, fulfilled_at
  FROM fulfilled_events
 WHERE user_id=$1
 ORDER BY fulfilled_at DESC
 LIMIT $2;`
	ex, err := getExecutor(r.pool, qx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Fulfillment
	for rows.Next() {
		var f model.Fulfillment
		if err := rows.Scan(&f.EventID, &f.UserID, &f.ProductID, &f.EventType, &f.Credits, &f.FulfilledAt); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
