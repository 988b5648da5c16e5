package main

import (
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/koustreak/bucketfs/internal/filestore"
)

// writeConfig turns the --visibility and --mimetype flags into a per-call
// config.
func writeConfig(cmd *cobra.Command) (filestore.Config, error) {
	cfg := filestore.Config{}
	if v, _ := cmd.Flags().GetString("visibility"); v != "" {
		vis, err := filestore.ParseVisibility(v)
		if err != nil {
			return nil, err
		}
		cfg[filestore.ConfigVisibility] = vis
	}
	if mt, _ := cmd.Flags().GetString("mimetype"); mt != "" {
		cfg[filestore.ConfigMimetype] = mt
	}
	return cfg, nil
}

func addWriteFlags(cmd *cobra.Command) {
	cmd.Flags().String("visibility", "", "public or private")
	cmd.Flags().String("mimetype", "", "content type of the stored file")
}

func newPutCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put <local-path>... <remote-path>",
		Short: "Upload files",
		Long: `Upload one or more local files.

With a single file, remote-path is the destination path unless it ends in
"/". With several files, remote-path is a directory.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := writeConfig(cmd)
			if err != nil {
				return err
			}
			locals, remote := args[:len(args)-1], args[len(args)-1]
			return a.put(cmd, locals, remote, cfg)
		},
	}
	addWriteFlags(cmd)
	return cmd
}

// remoteTarget returns where local is uploaded to.
func remoteTarget(local, remote string, many bool) string {
	if many || remote == "" || strings.HasSuffix(remote, "/") {
		return path.Join(remote, filepath.Base(local))
	}
	return remote
}

func (a *app) put(cmd *cobra.Command, locals []string, remote string, cfg filestore.Config) error {
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(a.cfg.CLI.UploadWorkers)

	many := len(locals) > 1
	for _, local := range locals {
		local := local
		target := remoteTarget(local, remote, many)
		g.Go(func() error {
			f, err := a.fs.Open(local)
			if err != nil {
				return fmt.Errorf("open %s: %w", local, err)
			}
			defer f.Close()

			e, err := a.adapter.WriteStream(ctx, target, f, cfg.Clone())
			if err != nil {
				return err
			}
			a.log.InfoWith("uploaded", map[string]interface{}{"local": local, "path": e.Path, "size": e.Size})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if !a.flagJSON {
		fmt.Fprintf(a.stdout, "uploaded %d file(s)\n", len(locals))
	}
	return nil
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <remote-path> [local-path]",
		Short: "Download a file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			remote := args[0]
			local := path.Base(remote)
			if len(args) == 2 {
				local = args[1]
			}

			e, err := a.adapter.ReadStream(cmd.Context(), remote)
			if err != nil {
				return err
			}
			defer e.Stream.Close()

			f, err := a.fs.Create(local)
			if err != nil {
				return fmt.Errorf("create %s: %w", local, err)
			}
			n, err := io.Copy(f, e.Stream)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				_ = a.fs.Remove(local)
				return fmt.Errorf("write %s: %w", local, err)
			}

			if !a.flagJSON {
				fmt.Fprintf(a.stdout, "%s -> %s (%d bytes)\n", remote, local, n)
			}
			return nil
		},
	}
}

func newCatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <remote-path>",
		Short: "Print a file to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.adapter.ReadStream(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer e.Stream.Close()
			_, err = io.Copy(a.stdout, e.Stream)
			return err
		},
	}
}

func newCpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cp <src> <dst>",
		Short: "Copy a file, keeping its visibility",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.adapter.Copy(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.printResult("copied", ok)
		},
	}
}

func newMvCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <src> <dst>",
		Short: "Rename a file (copy, then delete the source)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.adapter.Rename(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.printResult("renamed", ok)
		},
	}
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <path>...",
		Short: "Delete files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range args {
				ok, err := a.adapter.Delete(cmd.Context(), p)
				if err != nil {
					return err
				}
				if err := a.printResult("deleted "+p, ok); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

