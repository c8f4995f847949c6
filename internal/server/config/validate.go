package config

import (
	"errors"
	"fmt"
)

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http address is empty"))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database dsn is empty"))
	}
	if c.RedisAddr == "" {
		errs = append(errs, errors.New("redis address is empty"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL))
	}

	switch c.StorageBackend {
	case StorageLocal:
		if c.FolderPath == "" {
			errs = append(errs, errors.New("folder path is empty"))
		}
	case StorageS3:
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("s3 bucket is empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.StorageBackend))
	}

	if c.WorkerConcurrency < 1 {
		errs = append(errs, fmt.Errorf("worker concurrency must be at least 1, got %d", c.WorkerConcurrency))
	}
	if c.JobMaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("job max attempts must be at least 1, got %d", c.JobMaxAttempts))
	}
	if c.UserCacheSize < 1 {
		errs = append(errs, fmt.Errorf("user cache size must be at least 1, got %d", c.UserCacheSize))
	}

	return errors.Join(errs...)
}
