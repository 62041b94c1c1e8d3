// Package config loads runtime configuration for the authctl CLI.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file given with -c or -config.
//  3. Global command-line flags placed before the subcommand.
//
// Supported flags
//
//	-a string   address:port of the AuthService endpoint
//	-s string   path of the local session database
//	-t int      per-request timeout (seconds)
//
// JSON schema (durations as "10s" or integer nanoseconds):
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "session_path": "authctl.db",
//	  "request_timeout": "10s"
//	}
package config

import "time"

type Config struct {
	ServerEndpointAddr string
	SessionPath        string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.SessionPath = "authctl.db"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig builds a Config from args (without the program name) and
// returns the arguments left after the global flags: the subcommand and
// its own flags.
func LoadConfig(args []string) (*Config, []string, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	rest, file, err := parseFlags(cfg, args)
	if err != nil {
		return nil, nil, err
	}
	if file == "" {
		return cfg, rest, nil
	}

	// The file sits under the flags, so it is applied first and the flags
	// are parsed again on top of it.
	fileCfg := &Config{}
	fileCfg.LoadDefaults()
	if err := parseJSON(fileCfg, file); err != nil {
		return nil, nil, err
	}
	if rest, _, err = parseFlags(fileCfg, args); err != nil {
		return nil, nil, err
	}
	return fileCfg, rest, nil
}
