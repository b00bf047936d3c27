package dbx

import (
	"context"
	"database/sql"
)

// Store hands out a non-transactional handle and runs atomic units.
// A context cancelled while fn runs rolls the unit back.
type Store interface {
	Conn() DBTX
	WithTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

// SQLStore is a Store over a *sql.DB.
type SQLStore struct {
	db   *sql.DB
	opts *sql.TxOptions
}

func NewSQLStore(db *sql.DB, opts *sql.TxOptions) *SQLStore {
	return &SQLStore{db: db, opts: opts}
}

func (s *SQLStore) Conn() DBTX {
	return s.db
}

func (s *SQLStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	return WithTx(ctx, s.db, s.opts, fn)
}
