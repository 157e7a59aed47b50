package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/heissler3/getnzbs/internal/config"
	"github.com/heissler3/getnzbs/internal/db"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "getnzbs",
	Short: "Query Newznab and compatible servers",
	Long: `getnzbs is a CLI tool for searching Newznab-compatible NZB indexers
and saving selected results as .nzb files.

In the result list, space queues an item and enter retrieves the queue.

Examples:
  getnzbs search ubuntu server iso          Search the default server
  getnzbs search -s geek -l 50 linux        Search server 'geek', 50 results
  getnzbs search -t -S 2 -E 5 "some show"   TV search, season 2 episode 5
  getnzbs browse                            Pick a category, then search it
  getnzbs servers                           List configured servers`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(cfgFile); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		if err := db.Init(); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		db.Close()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.config/getnzbs/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(serversCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Verbose returns whether verbose mode is enabled
func Verbose() bool {
	return verbose
}

// Printf prints if verbose mode is enabled
func Printf(format string, args ...interface{}) {
	if verbose {
		fmt.Printf(format, args...)
	}
}

// Errorf prints an error message to stderr
func Errorf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// Successf prints a success message
func Successf(format string, args ...interface{}) {
	fmt.Printf("✓ "+format+"\n", args...)
}
