// Package server wires the SecureVault API process: storage, the
// encryption gateway client, the breach checker, object storage, the
// services and the HTTP server.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/securevault/internal/breach"
	"github.com/dmitrijs2005/securevault/internal/cache"
	"github.com/dmitrijs2005/securevault/internal/cryptox"
	"github.com/dmitrijs2005/securevault/internal/dbx"
	"github.com/dmitrijs2005/securevault/internal/gateway"
	gwgrpc "github.com/dmitrijs2005/securevault/internal/gateway/grpc"
	"github.com/dmitrijs2005/securevault/internal/logging"
	"github.com/dmitrijs2005/securevault/internal/secret"
	"github.com/dmitrijs2005/securevault/internal/server/config"
	"github.com/dmitrijs2005/securevault/internal/server/httpapi"
	"github.com/dmitrijs2005/securevault/internal/server/repositories/memory"
	"github.com/dmitrijs2005/securevault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/securevault/internal/server/services"
	"github.com/dmitrijs2005/securevault/internal/storage"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	tokens  *services.SessionTokenManager
	handler http.Handler
	closers []func() error
}

// NewApp connects every dependency named in c. Resources opened before a
// failure are released before the error is returned.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (_ *App, err error) {
	app := &App{config: c, logger: logger}
	defer func() {
		if err != nil {
			app.close()
		}
	}()

	store, rm, err := app.openStore(ctx)
	if err != nil {
		return nil, err
	}

	gw, err := app.openGateway()
	if err != nil {
		return nil, err
	}

	checker := app.newBreachChecker(ctx)

	objects, err := app.openObjectStore(ctx)
	if err != nil {
		return nil, err
	}

	creds, err := services.NewCredentialStore(store, rm, logger)
	if err != nil {
		return nil, err
	}

	tokens, err := services.NewSessionTokenManager(store, rm, services.TokenConfig{
		Algorithm:            c.JWTAlgorithm,
		AccessSecret:         []byte(c.AccessTokenSecret),
		RefreshSecret:        []byte(c.RefreshTokenSecret),
		AccessTokenValidity:  c.AccessTokenValidityDuration,
		RefreshTokenValidity: c.RefreshTokenValidityDuration,
	}, logger)
	if err != nil {
		return nil, err
	}
	app.tokens = tokens

	vault := services.NewVaultService(store, rm, gw, logger)

	app.handler = httpapi.NewRouter(httpapi.Deps{
		Auth:   services.NewAuthService(creds, tokens, checker, logger),
		Tokens: tokens,
		Vault:  vault,
		Audit:  services.NewAuditService(vault),
		Backup: services.NewBackupService(vault, objects, logger),
	}, c.CORSOrigins, logger)

	return app, nil
}

func (app *App) openStore(ctx context.Context) (dbx.Store, repomanager.RepositoryManager, error) {
	if app.config.DatabaseDSN == config.MemoryDSN {
		app.logger.Warn(ctx, "using in-memory store, data is lost on exit")
		m := memory.New()
		return m, m, nil
	}

	db, err := sql.Open("pgx", app.config.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}
	app.closers = append(app.closers, db.Close)

	if err := db.PingContext(ctx); err != nil {
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, nil, fmt.Errorf("migrations error: %w", err)
	}

	return dbx.NewSQLStore(db, &sql.TxOptions{Isolation: sql.LevelReadCommitted}), rm, nil
}

func (app *App) openGateway() (gateway.EncryptionProvider, error) {
	if app.config.GatewayAddr != config.LocalGateway {
		client, err := gwgrpc.NewClient(app.config.GatewayAddr, app.config.GatewayToken, app.config.GatewayTimeout)
		if err != nil {
			return nil, fmt.Errorf("gateway client error: %w", err)
		}
		app.closers = append(app.closers, client.Close)
		return client, nil
	}

	key, err := secret.FromHex(app.config.VaultKeyHex, cryptox.KeySize)
	app.config.VaultKeyHex = ""
	_ = os.Unsetenv("VAULT_ENCRYPTION_KEY")
	if err != nil {
		return nil, fmt.Errorf("vault key error: %w", err)
	}
	app.closers = append(app.closers, key.Close)

	app.logger.Warn(context.Background(), "encryption gateway runs in-process, the API holds the vault key")
	return gateway.NewLocal(key, 0)
}

// newBreachChecker returns nil when breach checks are disabled. A Redis
// outage only disables the range cache.
func (app *App) newBreachChecker(ctx context.Context) services.BreachChecker {
	c := app.config
	if c.BreachAPIURL == "" {
		app.logger.Warn(ctx, "breach checks disabled")
		return nil
	}

	var opts []breach.Option
	if c.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, c.RedisAddr, app.logger)
		if err != nil {
			app.logger.Warn(ctx, "breach range cache disabled", "error", err)
		} else {
			app.closers = append(app.closers, rc.Close)
			opts = append(opts, breach.WithCache(rc, c.BreachCacheTTL))
		}
	}

	return breach.NewChecker(c.BreachAPIURL, c.BreachTimeout, app.logger, opts...)
}

func (app *App) openObjectStore(ctx context.Context) (services.ObjectStore, error) {
	c := app.config
	if c.S3Bucket == "" {
		app.logger.Info(ctx, "vault backups disabled, no S3 bucket configured")
		return nil, nil
	}

	s, err := storage.NewS3Store(ctx, storage.S3Config{
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 init error: %w", err)
	}
	return s, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.HTTPAddr, app.handler, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is canceled or a termination signal arrives, then
// releases every resource.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.tokens.RunJanitor(ctx, app.config.TokenCleanupInterval)
	}()

	wg.Wait()

	app.close()
	app.logger.Info(context.Background(), "App stopped")
}

func (app *App) close() {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		errs = append(errs, app.closers[i]())
	}
	app.closers = nil
	if err := errors.Join(errs...); err != nil {
		app.logger.Error(context.Background(), "error releasing resources", "error", err)
	}
}
