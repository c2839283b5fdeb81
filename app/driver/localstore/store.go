package localstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aisandler/marketing-calendar-saas-sub001/app/domain"
)

// recordFile is the fixed key the cached record lives under.
const recordFile = "mc-cached-profile.json"

// Store is a durable best-effort session cache backed by a single JSON file.
// Writes go through a temp file and rename so a crash never leaves a torn
// record; reads treat any failure as a cache miss.
type Store struct {
	path   string
	logger *slog.Logger
	now    func() time.Time

	mu sync.Mutex
}

// New creates a store rooted at dir, creating the directory if needed
func New(dir string, logger *slog.Logger) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache directory is required")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &Store{
		path:   filepath.Join(dir, recordFile),
		logger: logger.With("component", "session_cache"),
		now:    time.Now,
	}, nil
}

// Put persists the record under the fixed key, replacing any previous one
func (s *Store) Put(record *domain.CachedRecord) error {
	if record == nil || record.Identity == nil {
		return fmt.Errorf("record identity is required")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode cached record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Unique temp name so two processes sharing the directory never
	// interleave partial writes before the rename.
	tmp := fmt.Sprintf("%s.%s.tmp", s.path, uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write cached record: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace cached record: %w", err)
	}

	s.logger.Debug("cached record written", "subject_id", record.Identity.ID)
	return nil
}

// Get returns the stored record, or nil on miss. A record older than
// domain.MaxCacheAge is treated as absent, and so is anything unreadable.
func (s *Store) Get() *domain.CachedRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("cache read failed, treating as miss", "error", err)
		}
		return nil
	}

	var record domain.CachedRecord
	if err := json.Unmarshal(data, &record); err != nil {
		s.logger.Warn("cached record corrupt, treating as miss", "error", err)
		return nil
	}

	if !record.FreshAt(s.now()) {
		s.logger.Debug("cached record stale, treating as miss",
			"timestamp", record.Timestamp)
		return nil
	}

	return &record
}

// Clear removes the stored record. Missing files are not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cached record: %w", err)
	}
	return nil
}
