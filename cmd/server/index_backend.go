package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"prospector.ai/internal/persistence/indexdb"
)

// openRuntimeIndex opens the optional read-model index. It never affects
// simulation results.
func openRuntimeIndex(worldDir string, disableDB bool) (*indexdb.SQLiteIndex, error) {
	if disableDB {
		return nil, nil
	}
	backend := strings.ToLower(strings.TrimSpace(os.Getenv("PROSPECTOR_INDEX_BACKEND")))
	switch backend {
	case "", "sqlite":
		return indexdb.OpenSQLite(filepath.Join(worldDir, "index", "world.sqlite"))
	case "none", "off", "disabled":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported PROSPECTOR_INDEX_BACKEND: %s", backend)
	}
}
