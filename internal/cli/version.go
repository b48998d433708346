package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/pkg/sqlite"
)

// Version is the shelf release version.
const Version = "0.1.0"

const modulePath = "github.com/mesh-intelligence/shelf"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the shelf version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := sqlite.GetInfo()
			if flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), struct {
					Version string      `json:"version"`
					Module  string      `json:"module"`
					Driver  sqlite.Info `json:"driver"`
				}{Version, modulePath, info})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "shelf v%s\nmodule: %s\ndriver: %s (%s, %s)\n",
				Version, modulePath, info.DriverName, info.DriverType, info.Package)
			return nil
		},
	}
}
