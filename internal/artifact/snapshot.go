package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SnapshotFileName is the queue snapshot written next to the artifacts.
const SnapshotFileName = "remaining_urls.json"

// Snapshot rewrites the remaining-work export. It is refreshed after every
// processed item, so the file always mirrors the durable queue.
func (e *Emitter) Snapshot(remaining []string) error {
	if remaining == nil {
		remaining = []string{}
	}

	data, err := json.MarshalIndent(remaining, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal queue snapshot: %w", err)
	}

	path := filepath.Join(e.dir, SnapshotFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write queue snapshot %s: %w", path, err)
	}
	return nil
}
