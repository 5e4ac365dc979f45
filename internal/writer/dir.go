package writer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirStore keeps objects as files under a local root directory.
type DirStore struct {
	root string
}

func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

func (d *DirStore) Put(ctx context.Context, key string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(d.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", key, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return os.Rename(tmp, path)
}

// Locate returns the local file path for key.
func (d *DirStore) Locate(key string) string {
	return filepath.Join(d.root, filepath.FromSlash(key))
}
