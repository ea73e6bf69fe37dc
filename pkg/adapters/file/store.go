package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/yannickbattail/scadwrap/pkg/domain"
)

// Store implements ports.ResultStore using the local filesystem.
// It stores records as JSON files in a configured directory.
type Store struct {
	BasePath string
}

// NewStore creates a new Store with the given base path.
// If basePath is empty, it defaults to ".scadwrap/results".
func NewStore(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".scadwrap", "results")
	}
	return &Store{BasePath: basePath}
}

func (f *Store) path(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%w: record id cannot be empty", domain.ErrInvalidInput)
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("%w: invalid record id %q", domain.ErrInvalidInput, id)
	}
	return filepath.Join(f.BasePath, id+".json"), nil
}

// Save writes the record to <base>/<id>.json through a temporary file.
func (f *Store) Save(ctx context.Context, rec *domain.Record) error {
	filePath, err := f.path(rec.ID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(f.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure result directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write record file: %w", err)
	}
	if err := os.Rename(tmp, filePath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write record file: %w", err)
	}
	return nil
}

// Load reads a record file.
func (f *Store) Load(ctx context.Context, id string) (*domain.Record, error) {
	filePath, err := f.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}

	var rec domain.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &rec, nil
}

// Delete removes the record file.
func (f *Store) Delete(ctx context.Context, id string) error {
	filePath, err := f.path(id)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete record file: %w", err)
	}
	return nil
}

// List returns record IDs, newest first. Every file is read to get its
// creation time, which is fine for the volumes a CLI produces.
func (f *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	var recs []*domain.Record
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		rec, err := f.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	slices.SortFunc(recs, func(a, b *domain.Record) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	return ids, nil
}
