package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Files stores each key as <key>.json in Dir. With cloud sync on, every save
// is mirrored into CloudDir and loads prefer the mirrored copy.
type Files struct {
	Dir      string
	CloudDir string

	mu    sync.RWMutex
	cloud bool
}

func NewFiles(dir, cloudDir string, cloud bool) *Files {
	f := &Files{Dir: dir, CloudDir: strings.TrimSpace(cloudDir)}
	f.cloud = cloud && f.CloudDir != ""
	return f
}

// SetCloud toggles the mirror. It fails when no cloud directory is
// configured or the directory cannot be created.
func (f *Files) SetCloud(enable bool) error {
	if enable {
		if f.CloudDir == "" {
			return errors.New("cloud sync: no cloud directory configured")
		}
		if err := os.MkdirAll(f.CloudDir, 0o755); err != nil {
			return err
		}
	}
	f.mu.Lock()
	f.cloud = enable
	f.mu.Unlock()
	return nil
}

func (f *Files) CloudEnabled() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.cloud
}

func (f *Files) localPath(key string) string { return filepath.Join(f.Dir, key+".json") }
func (f *Files) cloudPath(key string) string { return filepath.Join(f.CloudDir, key+".json") }

func (f *Files) Save(_ context.Context, key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return err
	}
	if err := atomicWriteFile(f.Dir, key+".json.*.tmp", f.localPath(key), data, 0o644); err != nil {
		return err
	}
	if !f.CloudEnabled() {
		return nil
	}
	if err := os.MkdirAll(f.CloudDir, 0o755); err != nil {
		return err
	}
	return atomicWriteFile(f.CloudDir, key+".json.*.tmp", f.cloudPath(key), data, 0o644)
}

func (f *Files) Load(_ context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	paths := []string{f.localPath(key)}
	if f.CloudEnabled() {
		paths = []string{f.cloudPath(key), f.localPath(key)}
	}
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return nil, nil
}

func (f *Files) Has(_ context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	for _, p := range f.WatchPaths(key) {
		if _, err := os.Stat(p); err == nil {
			return true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return false, err
		}
	}
	return false, nil
}

func (f *Files) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	for _, p := range f.WatchPaths(key) {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Keys lists the union of keys in the local and (when enabled) cloud dirs.
func (f *Files) Keys(_ context.Context) ([]string, error) {
	dirs := []string{f.Dir}
	if f.CloudEnabled() {
		dirs = append(dirs, f.CloudDir)
	}
	set := map[string]struct{}{}
	for _, d := range dirs {
		ents, err := os.ReadDir(d)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}
		for _, e := range ents {
			name := e.Name()
			if e.IsDir() || !strings.HasSuffix(name, ".json") {
				continue
			}
			key := strings.TrimSuffix(name, ".json")
			if validateKey(key) != nil {
				continue
			}
			set[key] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

// WatchPaths returns the cloud copy first (when enabled), then the local one.
func (f *Files) WatchPaths(key string) []string {
	if f.CloudEnabled() {
		return []string{f.cloudPath(key), f.localPath(key)}
	}
	return []string{f.localPath(key)}
}
