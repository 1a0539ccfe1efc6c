package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ai-home-decorator/internal/domain"
	"ai-home-decorator/internal/domain/model"
	"ai-home-decorator/internal/domain/ports/repository"
)

var _ repository.ProfileRepository = (*PostgresProfileRepo)(nil)

type PostgresProfileRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresProfileRepo(pool *pgxpool.Pool) *PostgresProfileRepo {
	return &PostgresProfileRepo{pool: pool}
}

// Save upserts the profile row. Credits are written only on INSERT (the
// sign-up grant); after that the balance moves exclusively through
// AddCredits/SpendCredits so no caller can clobber a concurrent grant.
func (r *PostgresProfileRepo) Save(ctx context.Context, qx repository.Tx, p *model.UserProfile) error {
	const q = `
INSERT INTO user_profiles (
  id, email, credits, push_token, welcome_sent, registered_at, last_active_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7
) ON CONFLICT (id) DO UPDATE SET
  email=$2, push_token=$4, welcome_sent=$5, last_active_at=$7;
`
	ex, err := getExecutor(r.pool, qx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q, p.ID, p.Email, p.Credits, p.PushToken, p.WelcomeSent, p.RegisteredAt, p.LastActiveAt)
	return err
}

func (r *PostgresProfileRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.UserProfile, error) {
	const q = `
SELECT id, email, credits, COALESCE(push_token, ''), welcome_sent, registered_at, last_active_at
  FROM user_profiles WHERE id=$1;`
	row := pickRow(ctx, r.pool, qx, q, id)
	var p model.UserProfile
	if err := row.Scan(&p.ID, &p.Email, &p.Credits, &p.PushToken, &p.WelcomeSent, &p.RegisteredAt, &p.LastActiveAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PostgresProfileRepo) SetPushToken(ctx context.Context, qx repository.Tx, id, token string) error {
	ex, err := getExecutor(r.pool, qx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, `UPDATE user_profiles SET push_token=$2, last_active_at=now() WHERE id=$1;`, id, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresProfileRepo) MarkWelcomeSent(ctx context.Context, qx repository.Tx, id string) error {
	ex, err := getExecutor(r.pool, qx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, `UPDATE user_profiles SET welcome_sent=TRUE WHERE id=$1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddCredits is a relative update: two concurrent fulfillments for the
// same user serialize on the row lock and both land.
func (r *PostgresProfileRepo) AddCredits(ctx context.Context, qx repository.Tx, id string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidArgument
	}
	row := pickRow(ctx, r.pool, qx,
		`UPDATE user_profiles SET credits = credits + $2, last_active_at=now() WHERE id=$1 RETURNING credits;`,
		id, amount)
	var balance int64
	if err := row.Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("add credits: %w", err)
	}
	return balance, nil
}

// SpendCredits refuses to take the balance below zero. The `credits >=
// $2` predicate makes the check and the subtraction one atomic
// statement.
func (r *PostgresProfileRepo) SpendCredits(ctx context.Context, qx repository.Tx, id string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidArgument
	}
	row := pickRow(ctx, r.pool, qx,
		`UPDATE user_profiles SET credits = credits - $2, last_active_at=now() WHERE id=$1 AND credits >= $2 RETURNING credits;`,
		id, amount)
	var balance int64
	err := row.Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("spend credits: %w", err)
	}

	// No row updated: either the profile is missing or the balance is
	// too low. Distinguish for the caller.
	var exists bool
	if scanErr := pickRow(ctx, r.pool, qx, `SELECT EXISTS(SELECT 1 FROM user_profiles WHERE id=$1);`, id).Scan(&exists); scanErr != nil {
		return 0, fmt.Errorf("spend credits: %w", scanErr)
	}
	if !exists {
		return 0, domain.ErrNotFound
	}
	return 0, domain.ErrInsufficientCredits
}

func (r *PostgresProfileRepo) CountProfiles(ctx context.Context, qx repository.Tx) (int, error) {
	row := pickRow(ctx, r.pool, qx, `SELECT COUNT(*) FROM user_profiles;`)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return n, nil
}

func (r *PostgresProfileRepo) SumCredits(ctx context.Context, qx repository.Tx) (int64, error) {
	row := pickRow(ctx, r.pool, qx, `SELECT COALESCE(SUM(credits), 0) FROM user_profiles;`)
	var total int64
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("sum credits: %w", err)
	}
	return total, nil
}

func (r *PostgresProfileRepo) ListActiveSince(ctx context.Context, qx repository.Tx, since time.Time, limit int) ([]*model.UserProfile, error) {
	const q = `
SELECT id, email, credits, COALESCE(push_token, ''), welcome_sent, registered_at, last_active_at
  FROM user_profiles
 WHERE last_active_at >= $1
 ORDER BY last_active_at DESC
 LIMIT $2;`
	ex, err := getExecutor(r.pool, qx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.UserProfile
	for rows.Next() {
		var p model.UserProfile
		if err := rows.Scan(&p.ID, &p.Email, &p.Credits, &p.PushToken, &p.WelcomeSent, &p.RegisteredAt, &p.LastActiveAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
