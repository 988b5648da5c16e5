// Package config loads the bucketfs configuration file.
//
// The file is YAML or TOML, chosen by extension. Values are layered:
// defaults, then the file, then BUCKETFS_* environment variables, then
// command line flags (applied by the caller).
package config

import (
	"time"

	"github.com/koustreak/bucketfs/internal/filestore"
	"github.com/koustreak/bucketfs/internal/logger"
	"github.com/koustreak/bucketfs/internal/objectstore"
)

// Default values.
const (
	DefaultPath            = "bucketfs.yaml"
	DefaultBucket          = "bucketfs"
	DefaultAddr            = ":8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 5 * time.Minute
	DefaultShutdownTimeout = 10 * time.Second
	DefaultUploadWorkers   = 4
)

// Config is the whole configuration file.
type Config struct {
	Store objectstore.Config `yaml:"store" toml:"store"`

	// Bucket the adapter works in.
	Bucket string `yaml:"bucket" toml:"bucket"`

	// Prefix roots every path under a key prefix.
	Prefix string `yaml:"prefix" toml:"prefix"`

	// PageSize is the MaxKeys of listing requests. 0 uses the store default.
	PageSize int `yaml:"page_size" toml:"page_size"`

	// Options are adapter-wide request options: the S3 option keys plus
	// "visibility" and "mimetype".
	Options map[string]any `yaml:"options" toml:"options"`

	Log    LogConfig    `yaml:"log" toml:"log"`
	Server ServerConfig `yaml:"server" toml:"server"`
	CLI    CLIConfig    `yaml:"cli" toml:"cli"`
}

// LogConfig mirrors logger.Config for the file.
type LogConfig struct {
	Level      string `yaml:"level" toml:"level"`
	Format     string `yaml:"format" toml:"format"`
	TimeFormat string `yaml:"time_format" toml:"time_format"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string        `yaml:"addr" toml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" toml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// CLIConfig configures the command line client.
type CLIConfig struct {
	// UploadWorkers bounds parallel uploads of "bucketfs put".
	UploadWorkers int `yaml:"upload_workers" toml:"upload_workers"`
}

// DefaultConfig returns a configuration that works without a file: an
// in-memory store with one bucket.
func DefaultConfig() *Config {
	return &Config{
		Store: objectstore.Config{
			Provider: objectstore.ProviderMemory,
		},
		Bucket: DefaultBucket,
		Log: LogConfig{
			Level:      "info",
			Format:     "auto",
			TimeFormat: "rfc3339",
		},
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		CLI: CLIConfig{
			UploadWorkers: DefaultUploadWorkers,
		},
	}
}

// StoreConfig returns the store section with DefaultBucket falling back
// to Bucket, so that local providers create it on open.
func (c *Config) StoreConfig() *objectstore.Config {
	sc := c.Store
	if sc.DefaultBucket == "" {
		sc.DefaultBucket = c.Bucket
	}
	return &sc
}

// DefaultOptions returns Options as adapter default options.
func (c *Config) DefaultOptions() filestore.Config {
	return filestore.Config(c.Options).Clone()
}

// LoggerConfig returns the logger settings of the file.
func (c *Config) LoggerConfig() *logger.Config {
	lc := logger.DefaultConfig()
	if c.Log.Level != "" {
		lc.Level = c.Log.Level
	}
	if c.Log.Format != "" {
		lc.Format = c.Log.Format
	}
	if c.Log.TimeFormat != "" {
		lc.TimeFormat = c.Log.TimeFormat
	}
	return lc
}
