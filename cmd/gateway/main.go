package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/securevault/internal/cryptox"
	"github.com/dmitrijs2005/securevault/internal/gateway"
	"github.com/dmitrijs2005/securevault/internal/gateway/config"
	gwgrpc "github.com/dmitrijs2005/securevault/internal/gateway/grpc"
	"github.com/dmitrijs2005/securevault/internal/logging"
	"github.com/dmitrijs2005/securevault/internal/secret"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(cfg.LogLevel))

	key, err := secret.FromHex(cfg.VaultKeyHex, cryptox.KeySize)
	cfg.VaultKeyHex = ""
	_ = os.Unsetenv("VAULT_ENCRYPTION_KEY")
	if err != nil {
		return fmt.Errorf("vault key: %w", err)
	}
	defer key.Close()

	provider, err := gateway.NewLocal(key, cfg.MaxPlaintextSize)
	if err != nil {
		return fmt.Errorf("gateway: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	return gwgrpc.NewServer(cfg.Addr, provider, cfg.GatewayToken, logger).Run(ctx)
}
