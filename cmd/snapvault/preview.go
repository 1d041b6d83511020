package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newPreviewCmd(stdout io.Writer) *cobra.Command {
	var showContent bool
	cmd := &cobra.Command{
		Use:   "preview <file> <snapshot>",
		Short: "Show what reverting a file to a snapshot would change",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := buildService(cmd)
			if err != nil {
				return err
			}

			original, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			snap, err := filepath.Abs(args[1])
			if err != nil {
				return err
			}

			pv, err := svc.Preview(cmd.Context(), original, snap)
			if err != nil {
				return err
			}

			fmt.Fprintf(stdout, "Reverting %s\n", original)
			fmt.Fprintf(stdout, "       to %s\n\n", snap)
			fmt.Fprintf(stdout, "%s %d lines\n", color.GreenString("would remove"), pv.Stats.Added)
			fmt.Fprintf(stdout, "%s %d lines\n", color.RedString("would restore"), pv.Stats.Removed)
			fmt.Fprintf(stdout, "%s %d lines\n", color.YellowString("would change"), pv.Stats.Modified)

			if showContent {
				fmt.Fprintf(stdout, "\n--- snapshot content ---\n%s\n", pv.SnapshotContent)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showContent, "show-content", false, "Print the snapshot's full content")
	return cmd
}
