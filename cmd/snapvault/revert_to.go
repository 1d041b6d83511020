package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/egdesk/snapvault/internal/snapname"
)

func newRevertToCmd(stdout io.Writer) *cobra.Command {
	var apply bool
	cmd := &cobra.Command{
		Use:   "revert-to <project-root> <timestamp>",
		Short: "Revert every file in a project to its state at a point in time",
		Long: "Selects, for each file with snapshots, the closest snapshot at or before\n" +
			"the given instant. Dry-run by default; pass --apply to execute.\n" +
			"Timestamps are accepted in RFC 3339 (2025-09-06T09:30:22.151Z) or\n" +
			"snapshot-name form (2025-09-06T09-30-22-151Z).",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := buildService(cmd)
			if err != nil {
				return err
			}

			root, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			target, err := parseTargetTimestamp(args[1])
			if err != nil {
				return err
			}

			res, err := svc.RevertToTimestamp(cmd.Context(), root, target, !apply)
			if err != nil {
				return err
			}

			for _, sel := range res.Plan.Selections {
				fmt.Fprintf(stdout, "%s <- %s\n", sel.OriginalPath, filepath.Base(sel.SnapshotPath))
			}
			for _, sk := range res.Plan.Skipped {
				fmt.Fprintf(stdout, "%s %s (%s)\n", color.YellowString("skip"), sk.Path, sk.Reason)
			}

			if res.DryRun {
				fmt.Fprintf(stdout, "\nDry run: %d files would be reverted, %d skipped. Pass --apply to execute.\n",
					len(res.Plan.Selections), len(res.Plan.Skipped))
				return nil
			}

			fmt.Fprintln(stdout, res.Revert.Summary)
			if len(res.Revert.Errors) > 0 {
				fmt.Fprintln(stdout, strings.Join(res.Revert.Errors, "\n"))
			}
			if !res.Revert.Success {
				return errors.New("time-based revert finished with failures")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "Execute the revert instead of previewing it")
	return cmd
}

func parseTargetTimestamp(s string) (time.Time, error) {
	if t, err := snapname.ParseTimestamp(s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
