package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koustreak/bucketfs/internal/filestore"
)

func newVisibilityCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visibility",
		Short: "Read or change whether files are public",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <path>",
		Short: "Print the visibility of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.adapter.GetVisibility(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a.flagJSON {
				return printJSON(a.stdout, map[string]filestore.Visibility{"visibility": v})
			}
			fmt.Fprintln(a.stdout, v)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "set <path> <public|private>",
		Short:     "Change the visibility of a file",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(filestore.VisibilityPublic), string(filestore.VisibilityPrivate)},
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := filestore.ParseVisibility(args[1])
			if err != nil {
				return err
			}
			if err := a.adapter.SetVisibility(cmd.Context(), args[0], v); err != nil {
				return err
			}
			return a.printResult(fmt.Sprintf("%s is now %s", args[0], v), true)
		},
	})

	return cmd
}
