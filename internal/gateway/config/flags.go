package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/securevault/internal/flagx"
)

// parseFlags applies command-line overrides.
//
//	-a string   gRPC listen address
//	-m int      maximum plaintext size in bytes
//	-l string   log level
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "address and port to listen on")
	fs.IntVar(&cfg.MaxPlaintextSize, "m", cfg.MaxPlaintextSize, "maximum plaintext size (bytes)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	return fs.Parse(flagx.FilterArgs(args, flagx.Names(fs)))
}
