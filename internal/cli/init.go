package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/pkg/sqlite"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize shelf storage",
		Long:  "Create the configuration and data directories, write a default config.yaml\nif missing, and create the database file with the configured pragmas.",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	conn, r, err := openConn(cmd)
	if err != nil {
		return err
	}
	path := conn.Path()
	if err := conn.Close(); err != nil {
		return sysError("finalize storage: %w", err)
	}

	if flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), map[string]string{
			"config_dir": r.configDir,
			"data_dir":   r.dataDir,
			"db":         path,
			"driver":     sqlite.GetInfo().DriverName,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Shelf initialized at %s\n", path)
	return nil
}
