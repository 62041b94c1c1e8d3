package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/solarauth/internal/flagx"
	"github.com/dmitrijs2005/solarauth/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the config file. Durations accept
// both "168h" strings and integer nanoseconds. Zero values leave the
// current setting untouched.
type FileConfig struct {
	EndpointAddrGRPC      string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	DatabaseDSN           string         `json:"database_dsn" yaml:"database_dsn"`
	PasswordSalt          string         `json:"password_salt" yaml:"password_salt"`
	TokenSecret           string         `json:"token_secret" yaml:"token_secret"`
	TokenIssuer           string         `json:"token_issuer" yaml:"token_issuer"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration" yaml:"token_validity_duration"`
	LogLevel              string         `json:"log_level" yaml:"log_level"`
}

// parseFile loads the file named by -c/-config, if any. Files ending in
// .yaml or .yml are decoded as YAML, everything else as JSON.
func parseFile(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return err
	}

	fc.apply(config)
	return nil
}

func (fc *FileConfig) apply(config *Config) {
	setString(&config.EndpointAddrGRPC, fc.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, fc.DatabaseDSN)
	setString(&config.PasswordSalt, fc.PasswordSalt)
	setString(&config.TokenSecret, fc.TokenSecret)
	setString(&config.TokenIssuer, fc.TokenIssuer)
	setString(&config.LogLevel, fc.LogLevel)
	if fc.TokenValidityDuration.Duration != 0 {
		config.TokenValidityDuration = fc.TokenValidityDuration.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
