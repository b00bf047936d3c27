package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/securevault/internal/flagx"
)

// JsonConfig is the on-disk shape. It has no key field on purpose.
type JsonConfig struct {
	Addr             string `json:"addr"`
	MaxPlaintextSize int    `json:"max_plaintext_size"`
	LogLevel         string `json:"log_level"`
}

func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if jc.Addr != "" {
		cfg.Addr = jc.Addr
	}
	if jc.MaxPlaintextSize != 0 {
		cfg.MaxPlaintextSize = jc.MaxPlaintextSize
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}

	return nil
}
