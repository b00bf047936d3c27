package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/securevault/internal/flagx"
	"github.com/dmitrijs2005/securevault/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Durations
// accept "15m" style strings or integer nanoseconds. Secrets are not read
// from files.
type JsonConfig struct {
	HTTPAddr    string   `json:"http_addr"`
	DatabaseDSN string   `json:"database_dsn"`
	LogLevel    string   `json:"log_level"`
	CORSOrigins []string `json:"cors_origins"`

	JWTAlgorithm                 string         `json:"jwt_algorithm"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	TokenCleanupInterval         timex.Duration `json:"token_cleanup_interval"`

	GatewayAddr    string         `json:"gateway_addr"`
	GatewayTimeout timex.Duration `json:"gateway_timeout"`

	BreachAPIURL   string         `json:"breach_api_url"`
	BreachTimeout  timex.Duration `json:"breach_timeout"`
	BreachCacheTTL timex.Duration `json:"breach_cache_ttl"`
	RedisAddr      string         `json:"redis_addr"`

	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
}

// parseJson overlays values from the file named by -c or -config. Zero
// values in the file leave the current setting alone.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var c JsonConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	setString(&cfg.HTTPAddr, c.HTTPAddr)
	setString(&cfg.DatabaseDSN, c.DatabaseDSN)
	setString(&cfg.LogLevel, c.LogLevel)
	if len(c.CORSOrigins) > 0 {
		cfg.CORSOrigins = c.CORSOrigins
	}

	setString(&cfg.JWTAlgorithm, c.JWTAlgorithm)
	setDuration(&cfg.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&cfg.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setDuration(&cfg.TokenCleanupInterval, c.TokenCleanupInterval)

	setString(&cfg.GatewayAddr, c.GatewayAddr)
	setDuration(&cfg.GatewayTimeout, c.GatewayTimeout)

	setString(&cfg.BreachAPIURL, c.BreachAPIURL)
	setDuration(&cfg.BreachTimeout, c.BreachTimeout)
	setDuration(&cfg.BreachCacheTTL, c.BreachCacheTTL)
	setString(&cfg.RedisAddr, c.RedisAddr)

	setString(&cfg.S3Bucket, c.S3Bucket)
	setString(&cfg.S3Region, c.S3Region)
	setString(&cfg.S3BaseEndpoint, c.S3BaseEndpoint)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
