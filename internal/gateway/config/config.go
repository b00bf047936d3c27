// Package config loads settings for the encryption gateway process.
//
// Sources, later ones overriding earlier ones:
//
//  1. Built-in defaults (LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment, after an optional .env file is loaded.
//  4. Command-line flags.
//
// The vault key is read only from VAULT_ENCRYPTION_KEY. It is never
// accepted from a file or a flag.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/securevault/internal/gateway"
)

type Config struct {
	Addr             string
	GatewayToken     string
	MaxPlaintextSize int
	LogLevel         string

	// VaultKeyHex is 64 hex characters. Callers move it into a locked
	// buffer and clear this field.
	VaultKeyHex string
}

func (c *Config) LoadDefaults() {
	c.Addr = ":50061"
	c.MaxPlaintextSize = gateway.DefaultMaxPlaintextSize
	c.LogLevel = "info"
}

// Validate checks settings the gateway cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if len(c.VaultKeyHex) != 64 {
		errs = append(errs, errors.New("VAULT_ENCRYPTION_KEY must be 64 hex characters"))
	}
	if c.GatewayToken == "" {
		errs = append(errs, errors.New("GATEWAY_TOKEN is required"))
	}
	if c.MaxPlaintextSize <= 0 {
		errs = append(errs, fmt.Errorf("max plaintext size must be positive, got %d", c.MaxPlaintextSize))
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config from all sources using os.Args.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	return cfg, nil
}
