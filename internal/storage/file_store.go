package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/deusflow/thainews/internal/logger"
	"github.com/deusflow/thainews/internal/news"
)

// FileStore keeps the news records in a single JSON document.
type FileStore struct {
	filePath string
}

// NewFileStore creates a store backed by filePath. The file is not touched until Load or Save.
func NewFileStore(filePath string) *FileStore {
	return &FileStore{filePath: filePath}
}

func (fs *FileStore) Path() string {
	return fs.filePath
}

// Load reads the stored records. A missing file is an empty store; an
// unreadable or malformed file is logged and also treated as empty.
func (fs *FileStore) Load() []news.Record {
	data, err := os.ReadFile(fs.filePath)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug("store file not found, starting empty", "path", fs.filePath)
		return []news.Record{}
	}
	if err != nil {
		logger.Warn("failed to read store file, starting empty", "path", fs.filePath, "error", err)
		return []news.Record{}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []news.Record{}
	}

	var records []news.Record
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Warn("store file is corrupt, starting empty", "path", fs.filePath, "error", err)
		return []news.Record{}
	}
	if records == nil {
		records = []news.Record{}
	}

	return records
}

// Save replaces the store file with records. The document is written to a
// temp file in the same directory and renamed over the target.
func (fs *FileStore) Save(records []news.Record) error {
	if records == nil {
		records = []news.Record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}

	dir := filepath.Dir(fs.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fs.filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp store file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp store file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to chmod temp store file: %w", err)
	}
	if err := os.Rename(tmpName, fs.filePath); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}

	return nil
}

// ExistingKeys returns the set of links present in records.
func ExistingKeys(records []news.Record) map[string]struct{} {
	keys := make(map[string]struct{}, len(records))
	for _, r := range records {
		keys[r.Link] = struct{}{}
	}
	return keys
}

// Merge prepends fresh to existing and truncates the result to limit records,
// dropping the oldest entries at the tail.
func Merge(fresh, existing []news.Record, limit int) []news.Record {
	merged := make([]news.Record, 0, len(fresh)+len(existing))
	merged = append(merged, fresh...)
	merged = append(merged, existing...)
	if limit >= 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
