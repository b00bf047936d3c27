// Package memory is an in-process repository manager and transaction store.
//
// It backs the server when the DSN is "memory" and doubles as the store in
// service tests. Transactions are serialized; a unit that returns an
// error, panics or outlives its context is rolled back to the snapshot
// taken when it began. Calls made outside a transaction take the same
// lock for their duration.
package memory

import (
	"context"
	"database/sql"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/dmitrijs2005/securevault/internal/dbx"
	"github.com/dmitrijs2005/securevault/internal/server/models"
	"github.com/dmitrijs2005/securevault/internal/server/repositories/entries"
	"github.com/dmitrijs2005/securevault/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/securevault/internal/server/repositories/users"
)

var errNotSQL = errors.New("memory store does not execute SQL")

// handle is the DBTX handed to repositories. It only marks whether the
// caller already holds the transaction lock.
type handle struct {
	tx bool
}

func (handle) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, errNotSQL
}

func (handle) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errNotSQL
}

func (handle) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

type storedEntry struct {
	entry models.Entry
	seq   int64
}

type state struct {
	users   map[string]models.User
	byEmail map[string]string
	tokens  map[string]models.RefreshToken
	entries map[string]storedEntry
	seq     int64
}

// clone copies the maps. Stored values are replaced, never mutated, so a
// shallow copy is a consistent snapshot.
func (s *state) clone() state {
	return state{
		users:   maps.Clone(s.users),
		byEmail: maps.Clone(s.byEmail),
		tokens:  maps.Clone(s.tokens),
		entries: maps.Clone(s.entries),
		seq:     s.seq,
	}
}

type Manager struct {
	txMu  sync.Mutex
	state state
	now   func() time.Time
}

func New() *Manager {
	return &Manager{
		state: state{
			users:   map[string]models.User{},
			byEmail: map[string]string{},
			tokens:  map[string]models.RefreshToken{},
			entries: map[string]storedEntry{},
		},
		now: time.Now,
	}
}

func (m *Manager) Conn() dbx.DBTX {
	return handle{}
}

func (m *Manager) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) (err error) {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := m.state.clone()
	defer func() {
		if p := recover(); p != nil {
			m.state = snapshot
			panic(p)
		}
		if err != nil {
			m.state = snapshot
		}
	}()

	if err = fn(ctx, handle{tx: true}); err != nil {
		return err
	}
	return ctx.Err()
}

func (m *Manager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *Manager) Users(db dbx.DBTX) users.Repository {
	return &userRepo{m: m, inTx: inTx(db)}
}

func (m *Manager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return &tokenRepo{m: m, inTx: inTx(db)}
}

func (m *Manager) Entries(db dbx.DBTX) entries.Repository {
	return &entryRepo{m: m, inTx: inTx(db)}
}

func inTx(db dbx.DBTX) bool {
	h, ok := db.(handle)
	return ok && h.tx
}

// lock takes the transaction lock unless the caller already holds it.
func (m *Manager) lock(held bool) func() {
	if held {
		return func() {}
	}
	m.txMu.Lock()
	return m.txMu.Unlock
}

// SetClock replaces the time source used for created/updated timestamps.
func (m *Manager) SetClock(now func() time.Time) {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	m.now = now
}
