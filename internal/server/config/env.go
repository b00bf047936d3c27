package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

func parseEnv(cfg *Config) error {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	strs := map[string]*string{
		"HTTP_ADDR":            &cfg.HTTPAddr,
		"DATABASE_URL":         &cfg.DatabaseDSN,
		"LOG_LEVEL":            &cfg.LogLevel,
		"JWT_ACCESS_SECRET":    &cfg.AccessTokenSecret,
		"JWT_REFRESH_SECRET":   &cfg.RefreshTokenSecret,
		"JWT_ALGORITHM":        &cfg.JWTAlgorithm,
		"GATEWAY_ENDPOINT":     &cfg.GatewayAddr,
		"GATEWAY_TOKEN":        &cfg.GatewayToken,
		"VAULT_ENCRYPTION_KEY": &cfg.VaultKeyHex,
		"BREACH_API_URL":       &cfg.BreachAPIURL,
		"REDIS_ADDR":           &cfg.RedisAddr,
		"S3_ACCESS_KEY":        &cfg.S3AccessKey,
		"S3_SECRET_KEY":        &cfg.S3SecretKey,
		"S3_BUCKET":            &cfg.S3Bucket,
		"S3_REGION":            &cfg.S3Region,
		"S3_ENDPOINT":          &cfg.S3BaseEndpoint,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"ACCESS_TOKEN_TTL":       &cfg.AccessTokenValidityDuration,
		"REFRESH_TOKEN_TTL":      &cfg.RefreshTokenValidityDuration,
		"TOKEN_CLEANUP_INTERVAL": &cfg.TokenCleanupInterval,
		"GATEWAY_TIMEOUT":        &cfg.GatewayTimeout,
		"BREACH_TIMEOUT":         &cfg.BreachTimeout,
		"BREACH_CACHE_TTL":       &cfg.BreachCacheTTL,
	}
	for name, dst := range durations {
		v, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = d
	}

	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok {
		cfg.CORSOrigins = splitList(v)
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
