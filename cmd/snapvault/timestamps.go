package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/egdesk/snapvault/internal/snapname"
)

func newTimestampsCmd(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timestamps <project-root>",
		Short: "List the points in time the project can be reverted to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := buildService(cmd)
			if err != nil {
				return err
			}

			root, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			stamps, err := svc.AvailableTimestamps(cmd.Context(), root)
			if err != nil {
				return err
			}
			if len(stamps) == 0 {
				fmt.Fprintln(stdout, "No snapshots found.")
				return nil
			}
			for _, t := range stamps {
				fmt.Fprintln(stdout, snapname.FormatTimestamp(t))
			}
			return nil
		},
	}
	return cmd
}
