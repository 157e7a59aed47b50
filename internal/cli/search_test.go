package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/heissler3/getnzbs/internal/db"
)

func TestPickFromHistorySurfacesDBError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	if err := db.InitAt(path); err != nil {
		t.Fatalf("InitAt() error = %v", err)
	}
	db.Close()

	_, err := pickFromHistory()
	if err == nil {
		t.Fatal("pickFromHistory() error = nil, want error for closed database")
	}
	// A database failure must not masquerade as empty history
	if strings.Contains(err.Error(), "search terms required") {
		t.Fatalf("pickFromHistory() error = %v, want the database error surfaced", err)
	}
}
