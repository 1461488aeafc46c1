// Package backup moves ledger snapshots to durable storage. Snapshots are
// produced by the persistence layer; this package only decides where the
// bytes land.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Transport stores one named snapshot payload
type Transport interface {
	Store(ctx context.Context, name string, data []byte) error
}

// LocalTransport writes snapshots into a directory on disk. Files land via a
// temp file and rename so a crash mid-write never leaves a truncated backup.
type LocalTransport struct {
	dir string
}

// NewLocalTransport creates a LocalTransport rooted at dir
func NewLocalTransport(dir string) (*LocalTransport, error) {
	if dir == "" {
		return nil, fmt.Errorf("backup directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}
	return &LocalTransport{dir: dir}, nil
}

// Store writes the snapshot under dir/name
func (t *LocalTransport) Store(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := filepath.Join(t.dir, name)
	tmp, err := os.CreateTemp(t.dir, ".backup-*")
	if err != nil {
		return fmt.Errorf("create temp backup file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write backup: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close backup: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("finalize backup: %w", err)
	}
	return nil
}
