package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/heissler3/getnzbs/internal/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Report version and exit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("getnzbs version %s\n", config.Version)
	},
}
