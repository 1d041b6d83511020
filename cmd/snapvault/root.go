package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/egdesk/snapvault/internal/config"
	"github.com/egdesk/snapvault/internal/logging"
	"github.com/egdesk/snapvault/internal/service"
)

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "snapvault",
		Short:         "Inspect and revert AI-edit snapshots in a project tree",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String("config", "", "Path to a snapvault config file (YAML)")
	cmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	cmd.AddCommand(newListCmd(stdout))
	cmd.AddCommand(newPreviewCmd(stdout))
	cmd.AddCommand(newRevertCmd(stdout))
	cmd.AddCommand(newRevertToCmd(stdout))
	cmd.AddCommand(newTimestampsCmd(stdout))
	cmd.AddCommand(newPruneCmd(stdout))
	cmd.AddCommand(newVersionCmd(stdout))
	return cmd
}

// buildService constructs the service from --config, falling back to
// defaults when no file is given.
func buildService(cmd *cobra.Command) (*service.Service, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	log := logging.StdLogger{Verbose: verbose || cfg.Logging.Level == "debug"}
	return service.New(cfg, log, nil), nil
}
