package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/filesmanager/internal/flagx"
)

var knownFlags = []string{
	"-a", "-grpc", "-d", "-r", "-storage", "-f",
	"-u", "-p", "-b", "-region", "-e",
	"-w", "-workers", "-l",
}

// parseFlags populates Config fields from command-line flags.
//
//	-a string        HTTP bind address (e.g. ":5000")
//	-grpc string     gRPC health bind address
//	-d string        PostgreSQL DSN
//	-r string        Redis address
//	-storage string  content backend: local | s3
//	-f string        local content root
//	-u / -p string   S3 access key / secret
//	-b string        S3 bucket
//	-region string   S3 region
//	-e string        S3 base endpoint
//	-w bool          run job workers in-process
//	-workers int     consumers per queue
//	-l string        log level
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "HTTP address")
	fs.StringVar(&cfg.GRPCAddr, "grpc", cfg.GRPCAddr, "gRPC health address")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "redis address")
	fs.StringVar(&cfg.StorageBackend, "storage", cfg.StorageBackend, "content backend (local|s3)")
	fs.StringVar(&cfg.FolderPath, "f", cfg.FolderPath, "local content root")
	fs.StringVar(&cfg.S3RootUser, "u", cfg.S3RootUser, "S3 root user")
	fs.StringVar(&cfg.S3RootPassword, "p", cfg.S3RootPassword, "S3 root password")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3Region, "region", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.BoolVar(&cfg.RunWorkers, "w", cfg.RunWorkers, "run job workers in-process")
	fs.IntVar(&cfg.WorkerConcurrency, "workers", cfg.WorkerConcurrency, "consumers per queue")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	return fs.Parse(flagx.FilterArgs(args, knownFlags))
}
