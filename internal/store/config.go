package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultRelayAddr      = "127.0.0.1:7465"
	DefaultSaveDebounceMs = 1000
	DefaultHistoryLimit   = 20
	DefaultSearchDistance = 2
)

// Config is the user's global configuration (~/.kanban/config.json).
type Config struct {
	// DataDir holds the persisted board, tags, groups and UI state.
	// Defaults to <config dir>/data.
	DataDir string `json:"dataDir,omitempty"`

	// Backend is "files" (default) or "sqlite".
	Backend string `json:"backend,omitempty"`

	// CloudSync mirrors file-backend writes into CloudDir (e.g. a folder
	// synced by a cloud drive client).
	CloudSync bool   `json:"cloudSync,omitempty"`
	CloudDir  string `json:"cloudDir,omitempty"`

	RelayAddr         string `json:"relayAddr,omitempty"`
	SaveDebounceMs    int    `json:"saveDebounceMs,omitempty"`
	HistoryLimit      int    `json:"historyLimit,omitempty"`
	SearchMaxDistance *int   `json:"searchMaxDistance,omitempty"`

	// DefaultGroup numbers tickets created from the TUI.
	DefaultGroup string `json:"defaultGroup,omitempty"`
}

func (c *Config) ResolveDataDir() (string, error) {
	if v := strings.TrimSpace(c.DataDir); v != "" {
		return expandHome(v)
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

func (c *Config) Relay() string {
	if v := strings.TrimSpace(c.RelayAddr); v != "" {
		return v
	}
	return DefaultRelayAddr
}

func (c *Config) SaveDebounce() int {
	if c.SaveDebounceMs > 0 {
		return c.SaveDebounceMs
	}
	return DefaultSaveDebounceMs
}

func (c *Config) History() int {
	if c.HistoryLimit > 0 {
		return c.HistoryLimit
	}
	return DefaultHistoryLimit
}

func (c *Config) SearchDistance() int {
	if c.SearchMaxDistance != nil && *c.SearchMaxDistance >= 0 {
		return *c.SearchMaxDistance
	}
	return DefaultSearchDistance
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.kanban).
	if v := strings.TrimSpace(os.Getenv("KANBAN_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".kanban"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func LoadConfig() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	// Unique temp name: the CLI and both surfaces may write config concurrently.
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}
