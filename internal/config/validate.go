package config

import (
	"errors"
	"fmt"

	"github.com/koustreak/bucketfs/internal/errs"
	"github.com/koustreak/bucketfs/internal/filestore"
	"github.com/koustreak/bucketfs/internal/objectstore"
)

const maxUploadWorkers = 64

// Validate checks cfg and reports every problem at once.
func Validate(cfg *Config) error {
	var problems []error

	problems = append(problems, validateStore(&cfg.Store)...)
	problems = append(problems, validateAdapter(cfg)...)
	problems = append(problems, validateLog(&cfg.Log)...)
	problems = append(problems, validateServer(&cfg.Server)...)

	if cfg.CLI.UploadWorkers < 1 || cfg.CLI.UploadWorkers > maxUploadWorkers {
		problems = append(problems, fmt.Errorf("cli.upload_workers: must be between 1 and %d, got %d",
			maxUploadWorkers, cfg.CLI.UploadWorkers))
	}

	if err := errors.Join(problems...); err != nil {
		return errs.Wrap(errs.ErrKindInvalidInput, "invalid configuration", err)
	}
	return nil
}

func validateStore(sc *objectstore.Config) []error {
	var problems []error

	switch sc.Provider {
	case objectstore.ProviderMinIO, "":
		if sc.Endpoint == "" {
			problems = append(problems, errors.New("store.endpoint: required for the minio provider"))
		}
	case objectstore.ProviderS3, objectstore.ProviderMemory:
	case objectstore.ProviderBolt:
		if sc.Path == "" {
			problems = append(problems, errors.New("store.path: required for the bolt provider"))
		}
	case objectstore.ProviderSQLite:
		if sc.DSN == "" && sc.Path == "" {
			problems = append(problems, errors.New("store.dsn or store.path: required for the sqlite provider"))
		}
	case objectstore.ProviderPostgres, objectstore.ProviderMySQL:
		if sc.DSN == "" {
			problems = append(problems, fmt.Errorf("store.dsn: required for the %s provider", sc.Provider))
		}
	default:
		problems = append(problems, fmt.Errorf("store.provider: unknown provider %q", sc.Provider))
	}

	if (sc.AccessKey == "") != (sc.SecretKey == "") {
		problems = append(problems, errors.New("store.access_key and store.secret_key: set both or neither"))
	}
	return problems
}

func validateAdapter(cfg *Config) []error {
	var problems []error

	if cfg.Bucket == "" {
		problems = append(problems, errors.New("bucket: must not be empty"))
	}
	if cfg.PageSize < 0 || cfg.PageSize > objectstore.DefaultMaxKeys {
		problems = append(problems, fmt.Errorf("page_size: must be between 0 and %d, got %d",
			objectstore.DefaultMaxKeys, cfg.PageSize))
	}

	for k := range cfg.Options {
		if k == filestore.ConfigVisibility || k == filestore.ConfigMimetype || objectstore.IsOptionKey(k) {
			continue
		}
		problems = append(problems, fmt.Errorf("options.%s: unknown option", k))
	}
	if v, ok := cfg.Options[filestore.ConfigVisibility].(string); ok {
		if _, err := filestore.ParseVisibility(v); err != nil {
			problems = append(problems, fmt.Errorf("options.visibility: %w", err))
		}
	}
	if _, err := objectstore.DecodeOptions(cfg.Options); err != nil {
		problems = append(problems, fmt.Errorf("options: %w", err))
	}
	return problems
}

func validateLog(lc *LogConfig) []error {
	var problems []error

	switch lc.Level {
	case "debug", "info", "warn", "error", "fatal":
	default:
		problems = append(problems, fmt.Errorf("log.level: must be debug, info, warn, error or fatal, got %q", lc.Level))
	}
	switch lc.Format {
	case "json", "console", "auto":
	default:
		problems = append(problems, fmt.Errorf("log.format: must be json, console or auto, got %q", lc.Format))
	}
	return problems
}

func validateServer(sc *ServerConfig) []error {
	var problems []error

	if sc.Addr == "" {
		problems = append(problems, errors.New("server.addr: must not be empty"))
	}
	if sc.ReadTimeout < 0 || sc.WriteTimeout < 0 || sc.ShutdownTimeout < 0 {
		problems = append(problems, errors.New("server: timeouts must not be negative"))
	}
	return problems
}
