package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func parseEnv(cfg *Config) error {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	if v, ok := os.LookupEnv("GATEWAY_ADDR"); ok {
		cfg.Addr = v
	}
	if v, ok := os.LookupEnv("GATEWAY_TOKEN"); ok {
		cfg.GatewayToken = v
	}
	if v, ok := os.LookupEnv("VAULT_ENCRYPTION_KEY"); ok {
		cfg.VaultKeyHex = v
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("GATEWAY_MAX_PLAINTEXT_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GATEWAY_MAX_PLAINTEXT_SIZE: %w", err)
		}
		cfg.MaxPlaintextSize = n
	}

	return nil
}
