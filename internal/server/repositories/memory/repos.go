package memory

import (
	"context"
	"slices"
	"time"

	"github.com/dmitrijs2005/securevault/internal/common"
	"github.com/dmitrijs2005/securevault/internal/server/models"
	"github.com/google/uuid"
)

type userRepo struct {
	m    *Manager
	inTx bool
}

func (r *userRepo) Create(ctx context.Context, email string, passwordHash []byte) (*models.User, error) {
	defer r.m.lock(r.inTx)()

	s := &r.m.state
	if _, ok := s.byEmail[email]; ok {
		return nil, common.ErrorConflict
	}

	now := r.m.now()
	u := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[u.ID] = u
	s.byEmail[email] = u.ID

	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	defer r.m.lock(r.inTx)()

	id, ok := r.m.state.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u := r.m.state.users[id]
	return &u, nil
}

type tokenRepo struct {
	m    *Manager
	inTx bool
}

func (r *tokenRepo) Create(ctx context.Context, userID string, tokenHash []byte, expiresAt time.Time) (*models.RefreshToken, error) {
	defer r.m.lock(r.inTx)()

	if _, ok := r.m.state.users[userID]; !ok {
		return nil, common.ErrorNotFound
	}

	rt := models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: r.m.now(),
	}
	r.m.state.tokens[rt.ID] = rt

	return &rt, nil
}

func (r *tokenRepo) ListActiveForUpdate(ctx context.Context, userID string, now time.Time) ([]models.RefreshToken, error) {
	defer r.m.lock(r.inTx)()

	var result []models.RefreshToken
	for _, rt := range r.m.state.tokens {
		if rt.UserID == userID && rt.ExpiresAt.After(now) {
			result = append(result, rt)
		}
	}
	slices.SortFunc(result, func(a, b models.RefreshToken) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	return result, nil
}

func (r *tokenRepo) DeleteByID(ctx context.Context, id, userID string) (bool, error) {
	defer r.m.lock(r.inTx)()

	rt, ok := r.m.state.tokens[id]
	if !ok || rt.UserID != userID {
		return false, nil
	}
	delete(r.m.state.tokens, id)

	return true, nil
}

func (r *tokenRepo) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	defer r.m.lock(r.inTx)()

	var n int64
	for id, rt := range r.m.state.tokens {
		if rt.UserID == userID {
			delete(r.m.state.tokens, id)
			n++
		}
	}
	return n, nil
}

func (r *tokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	defer r.m.lock(r.inTx)()

	var n int64
	for id, rt := range r.m.state.tokens {
		if !rt.ExpiresAt.After(now) {
			delete(r.m.state.tokens, id)
			n++
		}
	}
	return n, nil
}

type entryRepo struct {
	m    *Manager
	inTx bool
}

func (r *entryRepo) Create(ctx context.Context, e *models.Entry) error {
	defer r.m.lock(r.inTx)()

	s := &r.m.state
	if _, ok := s.users[e.UserID]; !ok {
		return common.ErrorNotFound
	}

	now := r.m.now()
	e.ID = uuid.NewString()
	e.CreatedAt = now
	e.UpdatedAt = now

	s.seq++
	s.entries[e.ID] = storedEntry{entry: *e, seq: s.seq}

	return nil
}

func (r *entryRepo) ListByUser(ctx context.Context, userID string) ([]models.Entry, error) {
	defer r.m.lock(r.inTx)()

	var rows []storedEntry
	for _, se := range r.m.state.entries {
		if se.entry.UserID == userID {
			rows = append(rows, se)
		}
	}
	slices.SortFunc(rows, func(a, b storedEntry) int {
		if c := b.entry.CreatedAt.Compare(a.entry.CreatedAt); c != 0 {
			return c
		}
		return int(b.seq - a.seq)
	})

	result := make([]models.Entry, 0, len(rows))
	for _, se := range rows {
		result = append(result, se.entry)
	}
	return result, nil
}

func (r *entryRepo) Update(ctx context.Context, e *models.Entry) error {
	defer r.m.lock(r.inTx)()

	se, ok := r.m.state.entries[e.ID]
	if !ok || se.entry.UserID != e.UserID {
		return common.ErrorNotFound
	}

	updated := se.entry
	updated.Title = e.Title
	updated.Type = e.Type
	updated.Payload = e.Payload
	updated.UpdatedAt = r.m.now()

	r.m.state.entries[e.ID] = storedEntry{entry: updated, seq: se.seq}
	e.CreatedAt = updated.CreatedAt
	e.UpdatedAt = updated.UpdatedAt

	return nil
}

func (r *entryRepo) Delete(ctx context.Context, id, userID string) error {
	defer r.m.lock(r.inTx)()

	se, ok := r.m.state.entries[id]
	if !ok || se.entry.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.m.state.entries, id)

	return nil
}
