// Package storage persists the editing session as string keyed entries,
// the way a browser keeps it in local storage: one key holds the captions
// as a JSON array, the other the raw video URL.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/mgpai22/captioner/internal/config"
	"github.com/mgpai22/captioner/internal/logging"
)

const (
	KeyCaptions = "captions"
	KeyVideoURL = "videoUrl"
)

// ErrNotFound is returned by Get for a key that was never set or was deleted.
var ErrNotFound = errors.New("key not found")

// KV is a string keyed store.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Open builds the backend selected in the config.
func Open(ctx context.Context, cfg config.Storage, logger *logging.Logger) (KV, error) {
	switch cfg.Backend {
	case config.BackendFile:
		kv, err := NewFileKV(cfg.Path)
		if err != nil {
			return nil, err
		}
		kv.SetLogger(logger)
		return kv, nil
	case config.BackendSQLite:
		return OpenSQLite(ctx, cfg.Path)
	case config.BackendBadger:
		return OpenBadger(cfg.Path)
	case config.BackendRedis:
		return OpenRedis(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
	case config.BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}
