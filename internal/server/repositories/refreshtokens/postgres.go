package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securevault/internal/dbx"
	"github.com/dmitrijs2005/securevault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID string, tokenHash []byte, expiresAt time.Time) (*models.RefreshToken, error) {
	query :=
		`INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`

	rt := &models.RefreshToken{UserID: userID, TokenHash: tokenHash, ExpiresAt: expiresAt}
	err := r.db.QueryRowContext(ctx, query, userID, tokenHash, expiresAt).Scan(&rt.ID, &rt.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rt, nil
}

func (r *PostgresRepository) ListActiveForUpdate(ctx context.Context, userID string, now time.Time) ([]models.RefreshToken, error) {
	query :=
		`SELECT id, user_id, token_hash, expires_at, created_at
		 FROM refresh_tokens
		 WHERE user_id = $1 AND expires_at > $2
		 ORDER BY created_at
		 FOR UPDATE`

	rows, err := r.db.QueryContext(ctx, query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.RefreshToken
	for rows.Next() {
		var rt models.RefreshToken
		if err := rows.Scan(&rt.ID, &rt.UserID, &rt.TokenHash, &rt.ExpiresAt, &rt.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, id, userID string) (bool, error) {
	query :=
		`DELETE FROM refresh_tokens
		 WHERE id = $1 AND user_id = $2
		 RETURNING id`

	var deleted string
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return true, nil
}

func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}
