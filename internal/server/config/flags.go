package config

import (
	"flag"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/securevault/internal/flagx"
)

// parseFlags applies command-line overrides.
//
//	-a string     HTTP listen address
//	-d string     database DSN ("memory" for the in-memory store)
//	-l string     log level
//	-o string     comma-separated CORS origins
//	-j string     JWT algorithm (HS256, HS384, HS512)
//	-t int        access token validity, minutes
//	-r int        refresh token validity, minutes
//	-i duration   expired token cleanup interval
//	-g string     encryption gateway address ("local" for in-process)
//	-w duration   gateway call timeout
//	-B string     breach range API URL (empty disables breach checks)
//	-R string     Redis address for the breach range cache
//	-b string     S3 bucket for backups
//	-n string     S3 region
//	-e string     S3 base endpoint
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "address and port to run server")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	origins := fs.String("o", strings.Join(cfg.CORSOrigins, ","), "allowed CORS origins")

	fs.StringVar(&cfg.JWTAlgorithm, "j", cfg.JWTAlgorithm, "JWT signing algorithm")
	accessTokenValidityDuration := fs.Int("t", int(cfg.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(cfg.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")
	fs.DurationVar(&cfg.TokenCleanupInterval, "i", cfg.TokenCleanupInterval, "expired token cleanup interval")

	fs.StringVar(&cfg.GatewayAddr, "g", cfg.GatewayAddr, "encryption gateway address")
	fs.DurationVar(&cfg.GatewayTimeout, "w", cfg.GatewayTimeout, "encryption gateway timeout")

	fs.StringVar(&cfg.BreachAPIURL, "B", cfg.BreachAPIURL, "breach range API URL")
	fs.StringVar(&cfg.RedisAddr, "R", cfg.RedisAddr, "Redis address")

	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3Region, "n", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(flagx.FilterArgs(args, flagx.Names(fs))); err != nil {
		return err
	}

	// Only flags actually given replace values, so minute rounding never
	// touches durations that came from the environment.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			cfg.CORSOrigins = splitList(*origins)
		case "t":
			cfg.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		case "r":
			cfg.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
		}
	})

	return nil
}
