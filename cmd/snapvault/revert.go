package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/egdesk/snapvault/internal/revert"
)

func newRevertCmd(stdout io.Writer) *cobra.Command {
	var noBackup, deleteSnapshot, noValidate bool
	cmd := &cobra.Command{
		Use:   "revert <file> <snapshot>",
		Short: "Restore a file's content from a snapshot",
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

			op := revert.NewOperation(original, snap)
			op.BackupCurrentFirst = !noBackup
			op.DeleteSnapshotAfter = deleteSnapshot
			op.ValidateBeforeRevert = !noValidate

			res := svc.Revert(cmd.Context(), op)
			fmt.Fprintln(stdout, res.Summary)
			if len(res.Errors) > 0 {
				fmt.Fprintln(stdout, strings.Join(res.Errors, "\n"))
			}
			if !res.Success {
				return errors.New("revert failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "Skip the pre-revert safety copy of the current content")
	cmd.Flags().BoolVar(&deleteSnapshot, "delete-snapshot", false, "Delete the snapshot after a successful restore")
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "Skip the snapshot readability check")
	return cmd
}
