package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/heissler3/getnzbs/internal/config"
	"github.com/heissler3/getnzbs/internal/newznab"
)

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "List configured servers",
	Long: `List the servers declared in the config file. The first one is
used when no -s flag is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Validate(); err != nil {
			return err
		}

		cfg := config.Get()
		fmt.Printf("Configured servers (%d):\n\n", len(cfg.Servers))

		for i, s := range cfg.Servers {
			marker := " "
			if i == 0 {
				marker = "*"
			}

			pageSize := s.PageSize
			if pageSize == 0 {
				pageSize = newznab.DefaultPageSize
			}

			key := "no api key"
			if s.APIKey != "" {
				key = "api key set"
			}

			fmt.Printf("  %s %-16s %s\n", marker, s.Name, s.URL)
			fmt.Printf("    %s, page size %d\n", key, pageSize)
		}

		fmt.Println()
		fmt.Println("* default server")
		return nil
	},
}
