package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

const version = "0.3.1"

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show snapvault version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "snapvault v%s\n", version)
		},
	}
}
