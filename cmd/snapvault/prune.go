package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/egdesk/snapvault/internal/retention"
)

func newPruneCmd(stdout io.Writer) *cobra.Command {
	var apply bool
	var maxAgeDays, maxCount int
	cmd := &cobra.Command{
		Use:   "prune <project-root>",
		Short: "Delete snapshots that are too old or beyond the per-file cap",
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

			var res retention.PruneResult
			if cmd.Flags().Changed("max-age-days") || cmd.Flags().Changed("max-count") {
				policy := retention.Policy{MaxAgeDays: maxAgeDays, MaxCountPerFile: maxCount}
				res, err = svc.PruneWithPolicy(cmd.Context(), root, policy, !apply)
			} else {
				res, err = svc.Prune(cmd.Context(), root, !apply)
			}
			if err != nil {
				return err
			}

			for _, p := range res.Deleted {
				fmt.Fprintln(stdout, p)
			}
			if len(res.Errors) > 0 {
				fmt.Fprintf(stdout, "%s\n%s\n", color.RedString("errors:"), strings.Join(res.Errors, "\n"))
			}
			if res.DryRun {
				fmt.Fprintf(stdout, "\nDry run: %d snapshots would be deleted. Pass --apply to execute.\n", len(res.Deleted))
			} else {
				fmt.Fprintf(stdout, "\nDeleted %d snapshots.\n", len(res.Deleted))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "Execute the prune instead of previewing it")
	cmd.Flags().IntVar(&maxAgeDays, "max-age-days", 30, "Delete snapshots older than this many days (0 disables)")
	cmd.Flags().IntVar(&maxCount, "max-count", 10, "Keep at most this many snapshots per file (0 disables)")
	return cmd
}
