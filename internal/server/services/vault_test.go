package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/securevault/internal/common"
	"github.com/dmitrijs2005/securevault/internal/gateway"
	"github.com/dmitrijs2005/securevault/internal/logging"
	"github.com/dmitrijs2005/securevault/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingProvider struct {
	gateway.EncryptionProvider
	encryptErr error
	decryptErr error
}

func (p *failingProvider) Encrypt(ctx context.Context, plaintext []byte) (*gateway.EncryptedPayload, error) {
	if p.encryptErr != nil {
		return nil, p.encryptErr
	}
	return p.EncryptionProvider.Encrypt(ctx, plaintext)
}

func (p *failingProvider) Decrypt(ctx context.Context, payload *gateway.EncryptedPayload) ([]byte, error) {
	if p.decryptErr != nil {
		return nil, p.decryptErr
	}
	return p.EncryptionProvider.Decrypt(ctx, payload)
}

func noteInput(title, content string) EntryInput {
	return EntryInput{Title: title, Type: models.EntryTypeNote, Content: content}
}

func TestVaultService_CreateList_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid := env.register(t, aliceEmail, alicePassword)

	e, err := env.vault.Create(ctx, uid, EntryInput{Title: "bank", Type: models.EntryTypeCredential, Content: "hunter2"})
	require.NoError(t, err)
	require.NotEmpty(t, e.ID)
	assert.NotContains(t, string(e.Payload.Ciphertext), "hunter2")
	assert.Len(t, e.Payload.IV, 12)
	assert.Len(t, e.Payload.Tag, 16)

	views, err := env.vault.List(ctx, uid)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "bank", views[0].Entry.Title)
	assert.Equal(t, models.EntryTypeCredential, views[0].Entry.Type)
	assert.Equal(t, "hunter2", views[0].Content)
	assert.NoError(t, views[0].Err)
}

func TestVaultService_Create_FreshIVPerEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid := env.register(t, aliceEmail, alicePassword)

	a, err := env.vault.Create(ctx, uid, noteInput("a", "same"))
	require.NoError(t, err)
	b, err := env.vault.Create(ctx, uid, noteInput("b", "same"))
	require.NoError(t, err)

	assert.NotEqual(t, a.Payload.IV, b.Payload.IV)
	assert.NotEqual(t, a.Payload.Ciphertext, b.Payload.Ciphertext)
}

func TestVaultService_Create_Validation(t *testing.T) {
	env := newTestEnv(t)
	uid := env.register(t, aliceEmail, alicePassword)

	tests := []struct {
		name  string
		in    EntryInput
		field string
	}{
		{"empty title", EntryInput{Title: " ", Type: models.EntryTypeNote, Content: "x"}, "title"},
		{"long title", EntryInput{Title: strings.Repeat("é", 201), Type: models.EntryTypeNote, Content: "x"}, "title"},
		{"bad type", EntryInput{Title: "t", Type: "file", Content: "x"}, "type"},
		{"empty content", EntryInput{Title: "t", Type: models.EntryTypeNote}, "content"},
		{"oversized content", noteInput("t", strings.Repeat("a", 1025)), "content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.vault.Create(context.Background(), uid, tt.in)
			var ve *common.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	list, err := env.vault.ListMetadata(context.Background(), uid)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestVaultService_Create_GatewayFailureWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	uid := env.register(t, aliceEmail, alicePassword)

	gw := &failingProvider{encryptErr: errors.New("connection refused")}
	svc := NewVaultService(env.store, env.store, gw, logging.Nop())

	_, err := svc.Create(context.Background(), uid, noteInput("t", "secret"))
	assert.ErrorIs(t, err, common.ErrServiceUnavailable)

	list, err := svc.ListMetadata(context.Background(), uid)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestVaultService_List_TamperedRowIsMarked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid := env.register(t, aliceEmail, alicePassword)

	good, err := env.vault.Create(ctx, uid, noteInput("good", "fine"))
	require.NoError(t, err)
	bad, err := env.vault.Create(ctx, uid, noteInput("bad", "tamper me"))
	require.NoError(t, err)

	bad.Payload.Ciphertext[0] ^= 0x01
	require.NoError(t, env.store.Entries(env.store.Conn()).Update(ctx, bad))

	views, err := env.vault.List(ctx, uid)
	require.NoError(t, err)
	require.Len(t, views, 2)

	byID := map[string]EntryView{}
	for _, v := range views {
		byID[v.Entry.ID] = v
	}
	assert.ErrorIs(t, byID[bad.ID].Err, common.ErrIntegrity)
	assert.Empty(t, byID[bad.ID].Content)
	assert.NoError(t, byID[good.ID].Err)
	assert.Equal(t, "fine", byID[good.ID].Content)
}

func TestVaultService_List_GatewayOutageAborts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid := env.register(t, aliceEmail, alicePassword)

	_, err := env.vault.Create(ctx, uid, noteInput("a", "b"))
	require.NoError(t, err)

	gw := &failingProvider{decryptErr: errors.New("deadline exceeded")}
	svc := NewVaultService(env.store, env.store, gw, logging.Nop())

	_, err = svc.List(ctx, uid)
	assert.ErrorIs(t, err, common.ErrServiceUnavailable)
}

func TestVaultService_List_ScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, aliceEmail, alicePassword)
	bob := env.register(t, bobEmail, bobPassword)

	_, err := env.vault.Create(ctx, alice, noteInput("alice note", "a"))
	require.NoError(t, err)

	views, err := env.vault.List(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestVaultService_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid := env.register(t, aliceEmail, alicePassword)

	e, err := env.vault.Create(ctx, uid, noteInput("old", "v1"))
	require.NoError(t, err)

	_, err = env.vault.Update(ctx, uid, e.ID, EntryInput{Title: "new", Type: models.EntryTypeCard, Content: "v2"})
	require.NoError(t, err)

	views, err := env.vault.List(ctx, uid)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "new", views[0].Entry.Title)
	assert.Equal(t, models.EntryTypeCard, views[0].Entry.Type)
	assert.Equal(t, "v2", views[0].Content)
}

func TestVaultService_CrossUserUpdateAndDeleteAreNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, aliceEmail, alicePassword)
	bob := env.register(t, bobEmail, bobPassword)

	e, err := env.vault.Create(ctx, alice, noteInput("mine", "secret"))
	require.NoError(t, err)

	_, errForeign := env.vault.Update(ctx, bob, e.ID, noteInput("stolen", "x"))
	_, errMissing := env.vault.Update(ctx, bob, uuid.NewString(), noteInput("stolen", "x"))
	assert.ErrorIs(t, errForeign, common.ErrorNotFound)
	assert.ErrorIs(t, errMissing, common.ErrorNotFound)
	assert.Equal(t, errMissing.Error(), errForeign.Error())

	assert.ErrorIs(t, env.vault.Delete(ctx, bob, e.ID), common.ErrorNotFound)

	views, err := env.vault.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "mine", views[0].Entry.Title)
	assert.Equal(t, "secret", views[0].Content)
}

func TestVaultService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid := env.register(t, aliceEmail, alicePassword)

	e, err := env.vault.Create(ctx, uid, noteInput("t", "c"))
	require.NoError(t, err)

	require.NoError(t, env.vault.Delete(ctx, uid, e.ID))
	assert.ErrorIs(t, env.vault.Delete(ctx, uid, e.ID), common.ErrorNotFound)
	assert.ErrorIs(t, env.vault.Delete(ctx, uid, "not-a-uuid"), common.ErrorNotFound)
}
