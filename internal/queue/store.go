package queue

import (
	"fmt"

	"github.com/pocketbase/dbx"

	_ "modernc.org/sqlite"
)

// Store is the durable work queue. It is the single source of truth for
// what remains: callers reload it before every iteration instead of
// trusting an in-memory copy.
type Store interface {
	Load() ([]string, error)
	Save(items []string) error
	RemoveOne(item string) error
	Count() (int, error)
	Close() error
}

// SQLiteStore persists the queue in a local SQLite database so a crashed
// or interrupted run resumes with the remaining items intact.
type SQLiteStore struct {
	db *dbx.DB
}

type workItem struct {
	ID  int64  `db:"id"`
	URL string `db:"url"`
}

func (workItem) TableName() string {
	return "work_items"
}

// Open opens (and if needed initializes) the queue database at path.
func Open(path string) (*SQLiteStore, error) {
	db, err := dbx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open queue database: %w", err)
	}

	_, err = db.NewQuery(`
		CREATE TABLE IF NOT EXISTS work_items (
			id  INTEGER PRIMARY KEY AUTOINCREMENT,
			url TEXT NOT NULL
		)
	`).Execute()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize queue schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load returns the persisted queue in insertion order, empty if none exists yet
func (s *SQLiteStore) Load() ([]string, error) {
	var items []workItem
	if err := s.db.Select().From("work_items").OrderBy("id ASC").All(&items); err != nil {
		return nil, fmt.Errorf("failed to load queue: %w", err)
	}

	urls := make([]string, 0, len(items))
	for _, item := range items {
		urls = append(urls, item.URL)
	}
	return urls, nil
}

// Save atomically replaces the persisted queue with items
func (s *SQLiteStore) Save(items []string) error {
	return s.db.Transactional(func(tx *dbx.Tx) error {
		if _, err := tx.Delete("work_items", nil).Execute(); err != nil {
			return fmt.Errorf("failed to clear queue: %w", err)
		}
		for _, url := range items {
			_, err := tx.Insert("work_items", dbx.Params{"url": url}).Execute()
			if err != nil {
				return fmt.Errorf("failed to insert work item: %w", err)
			}
		}
		return nil
	})
}

// RemoveOne deletes every entry equal to item. Calling it for an item that
// is no longer present is a no-op, so a retried removal cannot corrupt the
// queue.
func (s *SQLiteStore) RemoveOne(item string) error {
	_, err := s.db.Delete("work_items", dbx.HashExp{"url": item}).Execute()
	if err != nil {
		return fmt.Errorf("failed to remove work item: %w", err)
	}
	return nil
}

// Count returns the number of remaining work items
func (s *SQLiteStore) Count() (int, error) {
	var count int
	err := s.db.Select("COUNT(*)").From("work_items").Row(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count work items: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
