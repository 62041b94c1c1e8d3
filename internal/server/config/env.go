package config

// Environment variables read at startup.
const (
	EnvPasswordSalt = "SOLAR_SALT"
	EnvTokenSecret  = "SOLAR_TOKEN_SECRET"
	EnvDatabaseDSN  = "SOLAR_DATABASE_DSN"
)

// parseEnv overlays secrets from the environment. getenv is usually
// os.Getenv; a nil getenv skips the step.
func parseEnv(config *Config, getenv func(string) string) {
	if getenv == nil {
		return
	}
	setString(&config.PasswordSalt, getenv(EnvPasswordSalt))
	setString(&config.TokenSecret, getenv(EnvTokenSecret))
	setString(&config.DatabaseDSN, getenv(EnvDatabaseDSN))
}
