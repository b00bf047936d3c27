package services

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/dmitrijs2005/securevault/internal/common"
	"github.com/dmitrijs2005/securevault/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectStore struct {
	key         string
	body        []byte
	contentType string
	err         error
}

func (f *fakeObjectStore) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	f.key, f.body, f.contentType = key, body, contentType
	return f.err
}

func TestBackupService_Backup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid := env.register(t, aliceEmail, alicePassword)

	e, err := env.vault.Create(ctx, uid, noteInput("recovery codes", "plaintext-marker"))
	require.NoError(t, err)

	objects := &fakeObjectStore{}
	svc := NewBackupService(env.vault, objects, logging.Nop())
	svc.now = func() time.Time { return time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC) }

	res, err := svc.Backup(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Entries)
	assert.Equal(t, objects.key, res.Key)
	assert.Regexp(t, regexp.MustCompile(`^backups/`+uid+`/2025/03/07/[0-9a-f-]{36}\.json$`), res.Key)
	assert.Equal(t, "application/json", objects.contentType)
	assert.NotContains(t, string(objects.body), "plaintext-marker")

	var snap backupSnapshot
	require.NoError(t, json.Unmarshal(objects.body, &snap))
	assert.Equal(t, uid, snap.UserID)
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, e.ID, snap.Entries[0].ID)
	assert.Equal(t, e.Payload.Ciphertext, snap.Entries[0].Ciphertext)
	assert.Equal(t, e.Payload.IV, snap.Entries[0].IV)
	assert.Equal(t, e.Payload.Tag, snap.Entries[0].Tag)
}

func TestBackupService_Disabled(t *testing.T) {
	env := newTestEnv(t)
	svc := NewBackupService(env.vault, nil, logging.Nop())

	_, err := svc.Backup(context.Background(), "u1")
	assert.ErrorIs(t, err, common.ErrServiceUnavailable)
}

func TestBackupService_UploadFailure(t *testing.T) {
	env := newTestEnv(t)
	uid := env.register(t, aliceEmail, alicePassword)

	svc := NewBackupService(env.vault, &fakeObjectStore{err: errors.New("access denied")}, logging.Nop())

	_, err := svc.Backup(context.Background(), uid)
	assert.ErrorIs(t, err, common.ErrServiceUnavailable)
}
