package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"

	"github.com/mgpai22/captioner/internal/logging"
)

// errCorrupt marks a storage file that exists but does not decode.
var errCorrupt = errors.New("storage file is corrupt")

// FileKV stores all entries as one JSON object in a file. A sibling lock
// file serializes writers across processes, and every write replaces the
// file atomically.
type FileKV struct {
	mu     sync.Mutex // flock does not exclude goroutines sharing one handle
	path   string
	lock   *flock.Flock
	logger *logging.Logger
}

func NewFileKV(path string) (*FileKV, error) {
	if path == "" {
		return nil, errors.New("file storage requires a path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &FileKV{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logging.Nop(),
	}, nil
}

// SetLogger sets where recovery from a corrupt file is reported.
func (f *FileKV) SetLogger(logger *logging.Logger) {
	if logger != nil {
		f.logger = logger
	}
}

// Path is the JSON file backing the store.
func (f *FileKV) Path() string {
	return f.path
}

func (f *FileKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.lock.RLock(); err != nil {
		return "", fmt.Errorf("acquire read lock: %w", err)
	}
	defer f.lock.Unlock()

	entries, err := f.read()
	if err != nil {
		return "", err
	}
	v, ok := entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *FileKV) Set(ctx context.Context, key, value string) error {
	return f.update(func(entries map[string]string) {
		entries[key] = value
	})
}

func (f *FileKV) Delete(ctx context.Context, keys ...string) error {
	return f.update(func(entries map[string]string) {
		for _, k := range keys {
			delete(entries, k)
		}
	})
}

func (f *FileKV) Close() error {
	return f.lock.Close()
}

func (f *FileKV) update(mutate func(map[string]string)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.lock.Lock(); err != nil {
		return fmt.Errorf("acquire write lock: %w", err)
	}
	defer f.lock.Unlock()

	entries, err := f.read()
	if errors.Is(err, errCorrupt) {
		// a write replaces the whole state, so start over and keep the bad file
		aside := f.path + ".corrupt"
		if rerr := os.Rename(f.path, aside); rerr != nil {
			return fmt.Errorf("move corrupt storage file: %w", rerr)
		}
		f.logger.Warnw("Storage file was corrupt, starting fresh", "path", f.path, "moved_to", aside, "error", err)
		entries, err = make(map[string]string), nil
	}
	if err != nil {
		return err
	}
	mutate(entries)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage file: %w", err)
	}
	if err := renameio.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("write storage file: %w", err)
	}
	return nil
}

// reads the entry map; a missing file is an empty store
func (f *FileKV) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("read storage file: %w", err)
	}

	entries := make(map[string]string)
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errCorrupt, f.path, err)
	}
	return entries, nil
}
