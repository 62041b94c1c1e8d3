package config

import (
	"flag"
	"io"
	"time"
)

// parseFlags applies the global flags and stops at the first non-flag
// argument. It returns the remaining arguments and the -c/-config value.
func parseFlags(cfg *Config, args []string) ([]string, string, error) {
	fs := flag.NewFlagSet("authctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var file string
	fs.StringVar(&file, "c", "", "config file")
	fs.StringVar(&file, "config", "", "config file")
	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.SessionPath, "s", cfg.SessionPath, "session database path")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		return nil, "", err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return fs.Args(), file, nil
}
