package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koustreak/bucketfs/internal/filestore"
)

func newLsCmd(a *app) *cobra.Command {
	var recursive, long bool

	cmd := &cobra.Command{
		Use:   "ls [directory]",
		Short: "List a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}

			entries, err := a.adapter.ListEntries(cmd.Context(), dir, recursive)
			if err != nil {
				return err
			}

			if a.flagJSON {
				if entries == nil {
					entries = []*filestore.Entry{}
				}
				return printJSON(a.stdout, entries)
			}

			if !long {
				for _, e := range entries {
					name := e.Path
					if e.IsDir() {
						name += "/"
					}
					fmt.Fprintln(a.stdout, name)
				}
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{string(e.Type), formatSize(e), formatTime(e.Timestamp), e.Path})
			}
			printTable(a.stdout, []string{"TYPE", "SIZE", "MODIFIED", "PATH"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "list all descendants")
	cmd.Flags().BoolVarP(&long, "long", "l", false, "show type, size and modification time")
	return cmd
}

func newStatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stat <path>",
		Short: "Show file metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.adapter.GetMetadata(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a.flagJSON {
				return printJSON(a.stdout, e)
			}

			rows := [][]string{
				{"path", e.Path},
				{"key", e.Name},
				{"type", string(e.Type)},
				{"size", fmt.Sprintf("%d (%s)", e.Size, formatSize(e))},
				{"mimetype", e.Mimetype},
				{"modified", formatTime(e.Timestamp)},
				{"etag", e.ETag},
			}
			if e.StorageClass != "" {
				rows = append(rows, []string{"storage class", e.StorageClass})
			}
			if e.VersionID != "" {
				rows = append(rows, []string{"version", e.VersionID})
			}
			for k, v := range e.Metadata {
				rows = append(rows, []string{"meta:" + k, v})
			}
			printTable(a.stdout, []string{"FIELD", "VALUE"}, rows)
			return nil
		},
	}
}

func newMkdirCmd(a *app) *cobra.Command {
	var visibility string

	cmd := &cobra.Command{
		Use:   "mkdir <directory>",
		Short: "Create a directory marker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := filestore.Config{}
			if visibility != "" {
				vis, err := filestore.ParseVisibility(visibility)
				if err != nil {
					return err
				}
				cfg[filestore.ConfigVisibility] = vis
			}

			e, err := a.adapter.CreateDir(cmd.Context(), args[0], cfg)
			if err != nil {
				return err
			}
			if a.flagJSON {
				return printJSON(a.stdout, e)
			}
			fmt.Fprintf(a.stdout, "created %s/\n", e.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&visibility, "visibility", "", "public or private")
	return cmd
}

func newRmdirCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rmdir <directory>",
		Short: "Remove a directory marker",
		Long: `Remove the marker object of a directory.

Files below the directory are left in place; the directory keeps existing
while any of them remain.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.adapter.DeleteDir(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printResult("removed "+args[0], ok)
		},
	}
}
