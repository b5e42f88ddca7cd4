package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tray-kanban/internal/model"
	"tray-kanban/internal/store"
)

func newTagsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage the tag catalog used when adding cards",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, _, err := app.openStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			tags, err := store.LoadTags(cmd.Context(), ks)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": tags})
		},
	})
	cmd.AddCommand(newTagsAddCmd(app))
	return cmd
}

func parseTagColor(s string) (model.TagColor, error) {
	switch c := model.TagColor(strings.ToLower(strings.TrimSpace(s))); c {
	case model.TagGreen, model.TagPurple, model.TagBlue:
		return c, nil
	default:
		return "", fmt.Errorf("invalid color %q (want green|purple|blue)", s)
	}
}

func newTagsAddCmd(app *App) *cobra.Command {
	var color string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return writeErr(cmd, fmt.Errorf("tag name is required"))
			}
			c, err := parseTagColor(color)
			if err != nil {
				return writeErr(cmd, err)
			}
			ks, _, err := app.openStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			tags, err := store.LoadTags(cmd.Context(), ks)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.ToLower(strings.Join(strings.Fields(name), "-"))
			for _, t := range tags {
				if t.ID == id || strings.EqualFold(t.Name, name) {
					return writeErr(cmd, fmt.Errorf("tag %q already exists", name))
				}
			}
			tag := model.Tag{ID: id, Name: name, Color: c}
			if err := store.SaveTags(cmd.Context(), ks, append(tags, tag)); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   tag,
				"_hints": []string{"type #" + id + " in a card title to apply it"},
			})
		},
	}
	cmd.Flags().StringVar(&color, "color", string(model.TagBlue), "Tag color (green|purple|blue)")
	return cmd
}

func newGroupsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Manage ticket numbering groups",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List groups and their next ticket number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, _, err := app.openStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			groups, err := store.LoadGroups(cmd.Context(), ks)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": groups})
		},
	})
	cmd.AddCommand(newGroupsAddCmd(app))
	return cmd
}

func newGroupsAddCmd(app *App) *cobra.Command {
	var prefix, id string
	var makeDefault bool
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a numbering group",
		Example: strings.TrimSpace(`
  kanban groups add Engineering --prefix ENG --default
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, _, err := app.openStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			g, err := store.AddGroup(cmd.Context(), ks, model.Group{ID: id, Name: args[0], Prefix: prefix})
			if err != nil {
				return writeErr(cmd, err)
			}
			if makeDefault {
				if err := updateConfig(func(c *store.Config) { c.DefaultGroup = g.ID }); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{
				"data":    g,
				"default": makeDefault,
			})
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "Ticket number prefix, e.g. ENG")
	cmd.Flags().StringVar(&id, "id", "", "Group id (defaults to the lowercased prefix)")
	cmd.Flags().BoolVar(&makeDefault, "default", false, "Number new cards from this group")
	return cmd
}
