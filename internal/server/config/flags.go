package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/solarauth/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   password salt
//	-k string   JWT HMAC signing key
//	-i string   token issuer
//	-t int      token validity, hours
//	-l string   log level
//
// Arguments are filtered with flagx.FilterArgs first so that -c/-config and
// anything else handled elsewhere does not trip the parser.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-k", "-i", "-t", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.PasswordSalt, "s", config.PasswordSalt, "password salt")
	fs.StringVar(&config.TokenSecret, "k", config.TokenSecret, "token signing key")
	fs.StringVar(&config.TokenIssuer, "i", config.TokenIssuer, "token issuer")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Hours()), "token validity (in hours)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Hour
		}
	})
	return nil
}
