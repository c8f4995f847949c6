package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/flagx"
	"github.com/dmitrijs2005/filesmanager/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations are
// written as Go duration strings ("24h") or integer nanoseconds. Fields left
// out of the file keep the values already present in Config.
type JsonConfig struct {
	HTTPAddr          *string         `json:"http_addr"`
	GRPCAddr          *string         `json:"grpc_addr"`
	DatabaseDSN       *string         `json:"database_dsn"`
	RedisAddr         *string         `json:"redis_addr"`
	RedisPassword     *string         `json:"redis_password"`
	RedisDB           *int            `json:"redis_db"`
	SessionTTL        *timex.Duration `json:"session_ttl"`
	StorageBackend    *string         `json:"storage_backend"`
	FolderPath        *string         `json:"folder_path"`
	S3RootUser        *string         `json:"s3_root_user"`
	S3RootPassword    *string         `json:"s3_root_password"`
	S3Bucket          *string         `json:"s3_bucket"`
	S3Region          *string         `json:"s3_region"`
	S3BaseEndpoint    *string         `json:"s3_base_endpoint"`
	RunWorkers        *bool           `json:"run_workers"`
	WorkerConcurrency *int            `json:"worker_concurrency"`
	JobMaxAttempts    *int            `json:"job_max_attempts"`
	UserCacheSize     *int            `json:"user_cache_size"`
	UserCacheTTL      *timex.Duration `json:"user_cache_ttl"`
	HTTPReadTimeout   *timex.Duration `json:"http_read_timeout"`
	HTTPWriteTimeout  *timex.Duration `json:"http_write_timeout"`
	HTTPIdleTimeout   *timex.Duration `json:"http_idle_timeout"`
	ShutdownTimeout   *timex.Duration `json:"shutdown_timeout"`
	LogLevel          *string         `json:"log_level"`
}

// parseJSON overlays values from the file named by -c / -config, if any.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.HTTPAddr, c.HTTPAddr)
	setString(&cfg.GRPCAddr, c.GRPCAddr)
	setString(&cfg.DatabaseDSN, c.DatabaseDSN)
	setString(&cfg.RedisAddr, c.RedisAddr)
	setString(&cfg.RedisPassword, c.RedisPassword)
	setInt(&cfg.RedisDB, c.RedisDB)
	setDuration(&cfg.SessionTTL, c.SessionTTL)
	setString(&cfg.StorageBackend, c.StorageBackend)
	setString(&cfg.FolderPath, c.FolderPath)
	setString(&cfg.S3RootUser, c.S3RootUser)
	setString(&cfg.S3RootPassword, c.S3RootPassword)
	setString(&cfg.S3Bucket, c.S3Bucket)
	setString(&cfg.S3Region, c.S3Region)
	setString(&cfg.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.RunWorkers != nil {
		cfg.RunWorkers = *c.RunWorkers
	}
	setInt(&cfg.WorkerConcurrency, c.WorkerConcurrency)
	setInt(&cfg.JobMaxAttempts, c.JobMaxAttempts)
	setInt(&cfg.UserCacheSize, c.UserCacheSize)
	setDuration(&cfg.UserCacheTTL, c.UserCacheTTL)
	setDuration(&cfg.HTTPReadTimeout, c.HTTPReadTimeout)
	setDuration(&cfg.HTTPWriteTimeout, c.HTTPWriteTimeout)
	setDuration(&cfg.HTTPIdleTimeout, c.HTTPIdleTimeout)
	setDuration(&cfg.ShutdownTimeout, c.ShutdownTimeout)
	setString(&cfg.LogLevel, c.LogLevel)

	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
