package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/heissler3/getnzbs/internal/config"
	"github.com/heissler3/getnzbs/internal/db"
	"github.com/heissler3/getnzbs/internal/downloader"
)

var downloadCmd = &cobra.Command{
	Use:   "download [guid]",
	Short: "Fetch a previously seen release again",
	Long: `Re-fetch a release by its GUID, using the record kept from an
earlier search. Useful to retry a failed fetch or restore a deleted file.

Run 'getnzbs history fetches' to see known GUIDs.

Examples:
  getnzbs download 9b3f0a...
  getnzbs download -d ~/nzbs 9b3f0a...`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringP("dest", "d", "", "destination directory (default from config)")
}

func runDownload(cmd *cobra.Command, args []string) error {
	guid := args[0]

	record, err := db.GetFetchByGUID(guid)
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}
	if record == nil {
		return fmt.Errorf("no known release with GUID %s", guid)
	}

	destDir, _ := cmd.Flags().GetString("dest")
	if destDir == "" {
		destDir = config.Get().Defaults.DestinationDirectory
	}

	fmt.Printf("Fetching: %s\n", record.Title)

	mgr := downloader.NewManager()
	path, err := mgr.Fetch(cmd.Context(), record.Title, record.DownloadURL, destDir)

	applyFetchOutcome(record, path, err)
	if dbErr := db.RecordFetch(record); dbErr != nil {
		Printf("Could not record fetch: %v\n", dbErr)
	}

	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	Successf("Saved: %s", path)
	return nil
}

// applyFetchOutcome updates a fetch record with the result of an
// attempt. A failed re-fetch keeps the previously recorded file path.
func applyFetchOutcome(record *db.Fetch, path string, err error) {
	if err != nil {
		record.Status = db.FetchFailed
		record.ErrorMessage = err.Error()
		return
	}
	record.FilePath = path
	record.Status = db.FetchOK
	record.ErrorMessage = ""
}
