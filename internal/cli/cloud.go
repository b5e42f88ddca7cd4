package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tray-kanban/internal/store"
)

func newCloudCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cloud",
		Short: "Mirror the data directory into a synced folder",
	}
	cmd.AddCommand(newCloudEnableCmd(app))
	cmd.AddCommand(newCloudDisableCmd(app))
	cmd.AddCommand(newCloudStatusCmd(app))
	return cmd
}

func cloudStatus(cfg *store.Config) (map[string]any, error) {
	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, err
	}
	backend := cfg.Backend
	if backend == "" {
		backend = store.BackendFiles
	}
	return map[string]any{
		"enabled":  cfg.CloudSync && cfg.CloudDir != "",
		"cloudDir": cfg.CloudDir,
		"dataDir":  dataDir,
		"backend":  backend,
	}, nil
}

// updateConfig edits config.json as stored, without the flag overrides
// applied by App.config.
func updateConfig(fn func(*store.Config)) error {
	cfg, err := store.LoadConfig()
	if err != nil {
		return err
	}
	fn(cfg)
	return store.SaveConfig(cfg)
}

func newCloudEnableCmd(app *App) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "enable",
		Short: "Turn on cloud mirroring and copy existing data into it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.config()
			if err != nil {
				return writeErr(cmd, err)
			}
			if b := strings.ToLower(strings.TrimSpace(cfg.Backend)); b != "" && b != store.BackendFiles {
				return writeErr(cmd, fmt.Errorf("cloud sync needs the files backend (configured: %s)", cfg.Backend))
			}
			if v := strings.TrimSpace(dir); v != "" {
				abs, err := filepath.Abs(v)
				if err != nil {
					return writeErr(cmd, err)
				}
				cfg.CloudDir = abs
			}
			if cfg.CloudDir == "" {
				return writeErr(cmd, errors.New("no cloud directory; pass --dir"))
			}
			dataDir, err := cfg.ResolveDataDir()
			if err != nil {
				return writeErr(cmd, err)
			}

			local := store.NewFiles(dataDir, "", false)
			mirror := store.NewFiles(dataDir, cfg.CloudDir, false)
			if err := mirror.SetCloud(true); err != nil {
				return writeErr(cmd, err)
			}
			keys, err := local.Keys(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			for _, k := range keys {
				b, err := local.Load(cmd.Context(), k)
				if err != nil {
					return writeErr(cmd, fmt.Errorf("read %s: %w", k, err))
				}
				if err := mirror.Save(cmd.Context(), k, b); err != nil {
					return writeErr(cmd, fmt.Errorf("mirror %s: %w", k, err))
				}
			}

			cfg.CloudSync = true
			if err := updateConfig(func(c *store.Config) { c.CloudSync, c.CloudDir = true, cfg.CloudDir }); err != nil {
				return writeErr(cmd, err)
			}
			st, err := cloudStatus(cfg)
			if err != nil {
				return writeErr(cmd, err)
			}
			st["mirrored"] = keys
			return writeOut(cmd, app, map[string]any{
				"data":   st,
				"_hints": []string{"restart open surfaces to pick up the mirror"},
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Synced folder to mirror into (defaults to cloudDir in config.json)")
	return cmd
}

func newCloudDisableCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "disable",
		Short: "Stop mirroring; the local data directory stays authoritative",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.config()
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg.CloudSync = false
			if err := updateConfig(func(c *store.Config) { c.CloudSync = false }); err != nil {
				return writeErr(cmd, err)
			}
			st, err := cloudStatus(cfg)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": st})
		},
	}
}

func newCloudStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether cloud mirroring is on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.config()
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := cloudStatus(cfg)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": st})
		},
	}
}
