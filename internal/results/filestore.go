package results

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileStore keeps one {task_id}.json blob per record in a flat directory,
// written atomically via temp file + rename.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (fs *FileStore) path(taskID string) (string, error) {
	// Task ids are caller supplied; refuse anything that would escape dir.
	if taskID == "" || taskID != filepath.Base(taskID) || strings.HasPrefix(taskID, ".") {
		return "", fmt.Errorf("invalid task id %q", taskID)
	}
	return filepath.Join(fs.dir, taskID+".json"), nil
}

// Put atomically writes the record blob.
func (fs *FileStore) Put(_ context.Context, rec *Record) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path, err := fs.path(rec.TaskID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(fs.dir, 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write result tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename result: %w", err)
	}
	return nil
}

// Get reads the record for a task id. A missing blob is not an error.
func (fs *FileStore) Get(_ context.Context, taskID string) (*Record, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	path, err := fs.path(taskID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read result: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal result %s: %w", taskID, err)
	}
	return &rec, nil
}

// Purge drops records processed before the cutoff.
func (fs *FileStore) Purge(_ context.Context, olderThan time.Time) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := os.ReadDir(fs.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("list results dir: %w", err)
	}

	cutoff := UnixSeconds(olderThan)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(fs.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			continue // leave unreadable blobs alone
		}

		if rec.ProcessedAt < cutoff {
			if err := os.Remove(path); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
