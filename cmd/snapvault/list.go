package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/egdesk/snapvault/internal/snapshot"
)

func newListCmd(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <file-or-project-root>",
		Short: "List snapshots for a file, or for a whole project tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := buildService(cmd)
			if err != nil {
				return err
			}

			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			groups := map[string]snapshot.Group{}
			if st, err := os.Stat(path); err == nil && st.IsDir() {
				groups, err = svc.FindAll(cmd.Context(), path)
				if err != nil {
					return err
				}
			} else {
				group, err := svc.FindForFile(cmd.Context(), path)
				if err != nil {
					return err
				}
				if len(group) > 0 {
					groups[path] = group
				}
			}

			if len(groups) == 0 {
				fmt.Fprintln(stdout, "No snapshots found.")
				return nil
			}
			renderGroups(stdout, groups)
			return nil
		},
	}
	return cmd
}

func renderGroups(stdout io.Writer, groups map[string]snapshot.Group) {
	paths := make([]string, 0, len(groups))
	for p := range groups {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tSNAPSHOT\tTIMESTAMP\tSIZE\tBY\tSTATE")
	for _, p := range paths {
		for _, rec := range groups[p] {
			state := color.GreenString("ok")
			if !rec.Valid {
				state = color.RedString("unreadable")
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
				p, filepath.Base(rec.SnapshotPath), rec.Timestamp.UTC().Format("2006-01-02 15:04:05.000"),
				rec.SizeBytes, rec.CreatedBy, state)
		}
	}
	_ = tw.Flush()
}
