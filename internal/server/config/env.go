package config

import (
	"fmt"
	"strconv"
)

// parseEnv applies the environment variables understood by the server:
//
//	PORT          HTTP port (listens on all interfaces)
//	FOLDER_PATH   local content store root
//	DB_DSN        PostgreSQL DSN
//	REDIS_ADDR    Redis host:port
//	REDIS_DB      Redis logical database
//	LOG_LEVEL     debug | info | warn | error
func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.HTTPAddr = ":" + v
	}
	if v, ok := lookup("FOLDER_PATH"); ok && v != "" {
		cfg.FolderPath = v
	}
	if v, ok := lookup("DB_DSN"); ok && v != "" {
		cfg.DatabaseDSN = v
	}
	if v, ok := lookup("REDIS_ADDR"); ok && v != "" {
		cfg.RedisAddr = v
	}
	if v, ok := lookup("REDIS_DB"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		cfg.RedisDB = n
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
	return nil
}
