package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/solarauth/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Empty
// fields leave the current value alone.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	SessionPath        string         `json:"session_path"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
}

func parseJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.SessionPath != "" {
		cfg.SessionPath = jc.SessionPath
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}
