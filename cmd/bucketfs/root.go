package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/koustreak/bucketfs/internal/config"
	"github.com/koustreak/bucketfs/internal/errs"
	"github.com/koustreak/bucketfs/internal/filestore/objectfs"
	"github.com/koustreak/bucketfs/internal/logger"
	"github.com/koustreak/bucketfs/internal/objectstore"
	"github.com/koustreak/bucketfs/internal/objectstore/open"
)

// version is set at build time via ldflags.
var version = "dev"

// app is the state shared by all subcommands. Everything that touches the
// outside world is a field so tests can replace it.
type app struct {
	fs     afero.Fs
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// openStore opens the configured object store.
	openStore func(ctx context.Context, cfg *objectstore.Config) (objectstore.Client, error)

	flagConfig  string
	flagJSON    bool
	flagVerbose bool

	cfg     *config.Config
	log     *logger.Logger
	client  objectstore.Client
	adapter *objectfs.Adapter
}

func newApp() *app {
	return &app{
		fs:        afero.NewOsFs(),
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		openStore: open.Open,
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "bucketfs",
		Short:         "Path-based file operations on object stores",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	cmd.PersistentFlags().StringVar(&a.flagConfig, "config", "", "config file path (default $BUCKETFS_CONFIG or "+config.DefaultPath+")")
	cmd.PersistentFlags().BoolVar(&a.flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&a.flagVerbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newPutCmd(a),
		newGetCmd(a),
		newCatCmd(a),
		newLsCmd(a),
		newStatCmd(a),
		newCpCmd(a),
		newMvCmd(a),
		newRmCmd(a),
		newMkdirCmd(a),
		newRmdirCmd(a),
		newVisibilityCmd(a),
		newServeCmd(a),
	)
	return cmd
}

// setup resolves the configuration (defaults, file, environment, flags)
// and opens the adapter.
func (a *app) setup(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	env := config.ReadEnvOverrides()
	path := config.DefaultPath
	if env.ConfigPath != "" {
		path = env.ConfigPath
	}
	if a.flagConfig != "" {
		path = a.flagConfig
	}

	var (
		cfg *config.Config
		err error
	)
	if a.flagConfig != "" || env.ConfigPath != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadOrDefault(path)
	}
	if err != nil {
		return err
	}
	env.Apply(cfg)
	if err := config.Validate(cfg); err != nil {
		return err
	}

	lc := cfg.LoggerConfig()
	lc.Output = a.stderr
	if a.flagVerbose {
		lc.Level = "debug"
	}
	a.log = logger.New(lc)
	logger.SetGlobal(a.log)
	a.cfg = cfg

	client, err := a.openStore(a.log.WithContext(ctx), cfg.StoreConfig())
	if err != nil {
		return errs.Wrap(errs.KindOf(err), "failed to open object store", err)
	}
	a.client = client

	a.adapter = objectfs.New(client, cfg.Bucket,
		objectfs.WithPrefix(cfg.Prefix),
		objectfs.WithDefaultOptions(cfg.DefaultOptions()),
		objectfs.WithPageSize(cfg.PageSize),
		objectfs.WithLogger(a.log),
	)
	return nil
}

func (a *app) close() error {
	if a.client == nil {
		return nil
	}
	err := a.client.Close()
	a.client = nil
	return err
}
