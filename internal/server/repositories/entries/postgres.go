package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securevault/internal/common"
	"github.com/dmitrijs2005/securevault/internal/dbx"
	"github.com/dmitrijs2005/securevault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.Entry) error {
	query :=
		`INSERT INTO vault_entries (user_id, title, type, ciphertext, iv, tag)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		e.UserID, e.Title, string(e.Type), e.Payload.Ciphertext, e.Payload.IV, e.Payload.Tag,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.Entry, error) {
	query :=
		`SELECT id, user_id, title, type, ciphertext, iv, tag, created_at, updated_at
		 FROM vault_entries
		 WHERE user_id = $1
		 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Entry
	for rows.Next() {
		var (
			e   models.Entry
			typ string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &typ,
			&e.Payload.Ciphertext, &e.Payload.IV, &e.Payload.Tag,
			&e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		e.Type = models.EntryType(typ)
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, e *models.Entry) error {
	query :=
		`UPDATE vault_entries
		 SET title = $3, type = $4, ciphertext = $5, iv = $6, tag = $7, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		e.ID, e.UserID, e.Title, string(e.Type), e.Payload.Ciphertext, e.Payload.IV, e.Payload.Tag,
	).Scan(&e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM vault_entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
