package recent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 10 * time.Millisecond

// FileSlot stores each key as a JSON file in dir. A sibling .lock file serializes
// readers and writers across processes.
type FileSlot struct {
	dir string
}

// NewFileSlot creates dir if needed
func NewFileSlot(dir string) (*FileSlot, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create recent dir: %w", err)
	}
	return &FileSlot{dir: dir}, nil
}

func (f *FileSlot) Read(ctx context.Context, key string) ([]byte, error) {
	path := f.path(key)
	lock := flock.New(path + ".lock")
	locked, err := lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("failed to lock %s", path)
	}
	defer lock.Unlock()

	return readIfExists(path)
}

func (f *FileSlot) Write(ctx context.Context, key string, payload []byte) error {
	return f.Update(ctx, key, func([]byte) ([]byte, error) { return payload, nil })
}

func (f *FileSlot) Update(ctx context.Context, key string, fn func([]byte) ([]byte, error)) error {
	path := f.path(key)
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("failed to lock %s", path)
	}
	defer lock.Unlock()

	current, err := readIfExists(path)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return writeAtomic(f.dir, path, next)
}

func (f *FileSlot) path(key string) string {
	return filepath.Join(f.dir, sanitizeKey(key)+".json")
}

func readIfExists(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".slot-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// sanitizeKey maps a slot key to a safe file name
func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, key)
}
