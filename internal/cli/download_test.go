package cli

import (
	"fmt"
	"testing"

	"github.com/heissler3/getnzbs/internal/db"
)

func TestApplyFetchOutcome(t *testing.T) {
	t.Run("failure keeps the recorded path", func(t *testing.T) {
		record := &db.Fetch{FilePath: "/tmp/old.nzb", Status: db.FetchOK}
		applyFetchOutcome(record, "", fmt.Errorf("server returned 503"))

		if record.FilePath != "/tmp/old.nzb" {
			t.Fatalf("FilePath = %q, want earlier path preserved", record.FilePath)
		}
		if record.Status != db.FetchFailed {
			t.Fatalf("Status = %q, want failed", record.Status)
		}
		if record.ErrorMessage == "" {
			t.Fatal("ErrorMessage empty, want the fetch error")
		}
	})

	t.Run("success replaces path and clears the error", func(t *testing.T) {
		record := &db.Fetch{FilePath: "/tmp/old.nzb", Status: db.FetchFailed, ErrorMessage: "boom"}
		applyFetchOutcome(record, "/tmp/new.nzb", nil)

		if record.FilePath != "/tmp/new.nzb" {
			t.Fatalf("FilePath = %q, want new path", record.FilePath)
		}
		if record.Status != db.FetchOK {
			t.Fatalf("Status = %q, want ok", record.Status)
		}
		if record.ErrorMessage != "" {
			t.Fatalf("ErrorMessage = %q, want cleared", record.ErrorMessage)
		}
	})
}
