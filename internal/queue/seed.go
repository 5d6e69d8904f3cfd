package queue

import (
	"encoding/json"
	"fmt"
	"os"
)

// SeedFromFile reads an initial URL list from a JSON array file and persists
// it as the queue. It is only called when the persisted queue is empty; a
// missing, malformed or empty source is a fatal initialization error, never
// a partially seeded queue.
func SeedFromFile(store Store, path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var urls []string
	if err := json.Unmarshal(data, &urls); err != nil {
		return nil, fmt.Errorf("seed file %s is not a JSON array of URLs: %w", path, err)
	}

	if len(urls) == 0 {
		return nil, fmt.Errorf("seed file %s contains no URLs", path)
	}

	if err := store.Save(urls); err != nil {
		return nil, fmt.Errorf("failed to persist seeded queue: %w", err)
	}

	return urls, nil
}
