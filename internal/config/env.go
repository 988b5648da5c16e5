package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfig    = "BUCKETFS_CONFIG"
	EnvAccessKey = "BUCKETFS_ACCESS_KEY"
	EnvSecretKey = "BUCKETFS_SECRET_KEY"
	EnvBucket    = "BUCKETFS_BUCKET"
	EnvPrefix    = "BUCKETFS_PREFIX"
)

// EnvOverrides holds values read from the environment.
type EnvOverrides struct {
	ConfigPath string // BUCKETFS_CONFIG
	AccessKey  string // BUCKETFS_ACCESS_KEY
	SecretKey  string // BUCKETFS_SECRET_KEY
	Bucket     string // BUCKETFS_BUCKET
	Prefix     string // BUCKETFS_PREFIX
}

// ReadEnvOverrides reads the BUCKETFS_* variables. It does not touch any
// Config; see Apply.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath: os.Getenv(EnvConfig),
		AccessKey:  os.Getenv(EnvAccessKey),
		SecretKey:  os.Getenv(EnvSecretKey),
		Bucket:     os.Getenv(EnvBucket),
		Prefix:     os.Getenv(EnvPrefix),
	}
}

// Apply copies every non-empty override into cfg.
func (e EnvOverrides) Apply(cfg *Config) {
	if e.AccessKey != "" {
		cfg.Store.AccessKey = e.AccessKey
	}
	if e.SecretKey != "" {
		cfg.Store.SecretKey = e.SecretKey
	}
	if e.Bucket != "" {
		cfg.Bucket = e.Bucket
	}
	if e.Prefix != "" {
		cfg.Prefix = e.Prefix
	}
}
