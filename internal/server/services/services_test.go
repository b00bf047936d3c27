package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/securevault/internal/breach"
	"github.com/dmitrijs2005/securevault/internal/common"
	"github.com/dmitrijs2005/securevault/internal/gateway"
	"github.com/dmitrijs2005/securevault/internal/logging"
	"github.com/dmitrijs2005/securevault/internal/server/repositories/memory"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	aliceEmail    = "alice@example.com"
	alicePassword = "Str0ng!Passw0rd123"
	bobEmail      = "bob@example.com"
	bobPassword   = "An0ther!Passw0rd"
)

type fakeChecker struct {
	verdict breach.Verdict
	err     error
	calls   int
}

func (f *fakeChecker) Check(ctx context.Context, password string) (breach.Verdict, error) {
	f.calls++
	return f.verdict, f.err
}

type testEnv struct {
	store   *memory.Manager
	key     gateway.StaticKey
	creds   *CredentialStore
	tokens  *SessionTokenManager
	auth    *AuthService
	vault   *VaultService
	checker *fakeChecker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.New()
	log := logging.Nop()

	creds, err := newCredentialStore(store, store, bcrypt.MinCost, log)
	require.NoError(t, err)

	tokens, err := NewSessionTokenManager(store, store, TokenConfig{
		Algorithm:     "HS256",
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
	}, log)
	require.NoError(t, err)
	tokens.hashCost = bcrypt.MinCost

	key := gateway.StaticKey(common.GenerateRandByteArray(32))
	gw, err := gateway.NewLocal(key, 1024)
	require.NoError(t, err)

	checker := &fakeChecker{}

	return &testEnv{
		store:   store,
		key:     key,
		creds:   creds,
		tokens:  tokens,
		auth:    NewAuthService(creds, tokens, checker, log),
		vault:   NewVaultService(store, store, gw, log),
		checker: checker,
	}
}

func (e *testEnv) register(t *testing.T, email, password string) string {
	t.Helper()
	id, err := e.auth.Register(context.Background(), email, password)
	require.NoError(t, err)
	return id
}
