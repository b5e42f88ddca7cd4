package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestSaveConfig_ConcurrentWriters_DoesNotCorruptConfig(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("KANBAN_CONFIG_DIR", cfgDir)

	if err := SaveConfig(&Config{Backend: BackendFiles}); err != nil {
		t.Fatalf("SaveConfig(seed): %v", err)
	}

	const n = 32
	errCh := make(chan error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			cfg, err := LoadConfig()
			if err != nil {
				errCh <- err
				return
			}
			cfg.DefaultGroup = fmt.Sprintf("group-%d", i)
			cfg.CloudDir = fmt.Sprintf("/tmp/cloud-%d", i)
			if err := SaveConfig(cfg); err != nil {
				errCh <- err
			}
		}(i)
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Errorf("concurrent SaveConfig: %v", err)
	}
	if t.Failed() {
		return
	}

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config.json: %v", err)
	}
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		t.Fatalf("config.json corrupted/unparseable: %v\nraw:\n%s", err, string(raw))
	}

	ents, err := os.ReadDir(cfgDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, "config.json.") && strings.HasSuffix(name, ".tmp") {
			t.Fatalf("leftover temp file: %s", name)
		}
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("KANBAN_CONFIG_DIR", cfgDir)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	dir, err := cfg.ResolveDataDir()
	if err != nil {
		t.Fatalf("ResolveDataDir: %v", err)
	}
	if dir != filepath.Join(cfgDir, "data") {
		t.Fatalf("data dir = %q", dir)
	}
	if cfg.Relay() != DefaultRelayAddr || cfg.SaveDebounce() != 1000 || cfg.History() != 20 || cfg.SearchDistance() != 2 {
		t.Fatalf("unexpected defaults: %s %d %d %d", cfg.Relay(), cfg.SaveDebounce(), cfg.History(), cfg.SearchDistance())
	}

	zero := 0
	cfg.SearchMaxDistance = &zero
	if cfg.SearchDistance() != 0 {
		t.Fatalf("explicit zero distance ignored")
	}
}
