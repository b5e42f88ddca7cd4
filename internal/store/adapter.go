package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// BoardKey is the key the board state is persisted under.
const BoardKey = "board-state"

// Adapter is the persistence contract the relay writes through. Load returns
// nil, nil when nothing is stored under key.
type Adapter interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
}

// KeyStore is an Adapter that can also enumerate and remove keys.
type KeyStore interface {
	Adapter
	Has(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// Watchable backends report the files that hold key, so external edits
// (a synced folder updated by another machine) can be noticed.
type Watchable interface {
	WatchPaths(key string) []string
}

const (
	BackendFiles  = "files"
	BackendSQLite = "sqlite"
)

var keyRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

func validateKey(key string) error {
	if !keyRe.MatchString(key) || strings.Contains(key, "..") {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}

// Open builds the backend selected by cfg.
func Open(cfg *Config) (KeyStore, error) {
	if cfg == nil {
		return nil, errors.New("store: nil config")
	}
	dir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendFiles:
		return NewFiles(dir, cfg.CloudDir, cfg.CloudSync), nil
	case BackendSQLite:
		return &SQLite{Path: filepath.Join(dir, "kanban.sqlite")}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want files or sqlite)", cfg.Backend)
	}
}
