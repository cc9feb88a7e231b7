package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/aretw0/sceneflow/pkg/domain"
)

// Journal implements ports.TransitionJournal using the local filesystem.
// It stores one JSON file per transition in a configured directory.
type Journal struct {
	BasePath string
}

// New creates a new Journal with the given base path.
// If basePath is empty, it defaults to ".sceneflow/history".
func New(basePath string) *Journal {
	if basePath == "" {
		basePath = filepath.Join(".sceneflow", "history")
	}
	return &Journal{BasePath: basePath}
}

// Record persists the record to a JSON file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (j *Journal) Record(ctx context.Context, rec domain.TransitionRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("record ID cannot be empty")
	}

	if err := os.MkdirAll(j.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure history directory: %w", err)
	}

	destPath := filepath.Join(j.BasePath, rec.ID+".json")

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	// Same directory keeps the rename on one filesystem
	tmpFile, err := os.CreateTemp(j.BasePath, "tmp-"+rec.ID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing record file for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to record: %w", err)
	}
	return nil
}

// Get retrieves a record from its JSON file.
func (j *Journal) Get(ctx context.Context, id string) (domain.TransitionRecord, error) {
	if id == "" {
		return domain.TransitionRecord{}, fmt.Errorf("record ID cannot be empty")
	}
	return j.read(filepath.Join(j.BasePath, id+".json"))
}

func (j *Journal) read(path string) (domain.TransitionRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.TransitionRecord{}, domain.ErrRecordNotFound
		}
		return domain.TransitionRecord{}, fmt.Errorf("failed to read record file: %w", err)
	}

	var rec domain.TransitionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.TransitionRecord{}, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return rec, nil
}

// List reads every record file and returns them newest first.
func (j *Journal) List(ctx context.Context, limit int) ([]domain.TransitionRecord, error) {
	entries, err := os.ReadDir(j.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.TransitionRecord{}, nil
		}
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	var records []domain.TransitionRecord
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || len(name) > 4 && name[:4] == "tmp-" {
			continue
		}
		rec, err := j.read(filepath.Join(j.BasePath, name))
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(a, b int) bool {
		return records[a].FinishedAt.After(records[b].FinishedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
