package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"tray-kanban/internal/model"
)

const (
	TagsKey   = "tags"
	GroupsKey = "groups"
)

func loadList[T any](ctx context.Context, a Adapter, key string) ([]T, error) {
	b, err := a.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if len(b) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}

func saveList[T any](ctx context.Context, a Adapter, key string, v []T) error {
	if v == nil {
		v = []T{}
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return a.Save(ctx, key, b)
}

func LoadTags(ctx context.Context, a Adapter) ([]model.Tag, error) {
	return loadList[model.Tag](ctx, a, TagsKey)
}

func SaveTags(ctx context.Context, a Adapter, tags []model.Tag) error {
	return saveList(ctx, a, TagsKey, tags)
}

func LoadGroups(ctx context.Context, a Adapter) ([]model.Group, error) {
	return loadList[model.Group](ctx, a, GroupsKey)
}

func SaveGroups(ctx context.Context, a Adapter, groups []model.Group) error {
	return saveList(ctx, a, GroupsKey, groups)
}

// AddGroup registers a new numbering group. Ids and prefixes are unique
// (prefixes case-insensitively).
func AddGroup(ctx context.Context, a Adapter, g model.Group) (model.Group, error) {
	g.ID = strings.TrimSpace(g.ID)
	g.Name = strings.TrimSpace(g.Name)
	g.Prefix = strings.ToUpper(strings.TrimSpace(g.Prefix))
	if g.ID == "" {
		g.ID = strings.ToLower(g.Prefix)
	}
	if g.ID == "" {
		return model.Group{}, errors.New("group needs an id or prefix")
	}
	if g.Name == "" {
		g.Name = g.ID
	}
	if g.NextTicketNumber <= 0 {
		g.NextTicketNumber = 1
	}

	groups, err := LoadGroups(ctx, a)
	if err != nil {
		return model.Group{}, err
	}
	for _, ex := range groups {
		if ex.ID == g.ID {
			return model.Group{}, fmt.Errorf("group %q already exists", g.ID)
		}
		if g.Prefix != "" && strings.EqualFold(ex.Prefix, g.Prefix) {
			return model.Group{}, fmt.Errorf("prefix %q already used by group %q", g.Prefix, ex.ID)
		}
	}
	groups = append(groups, g)
	if err := SaveGroups(ctx, a, groups); err != nil {
		return model.Group{}, err
	}
	return g, nil
}

// NextTicketNumber returns the group's next number and advances the
// counter. Unknown groups yield 1 without persisting anything.
func NextTicketNumber(ctx context.Context, a Adapter, groupID string) (model.Group, int, error) {
	groups, err := LoadGroups(ctx, a)
	if err != nil {
		return model.Group{}, 0, err
	}
	for i := range groups {
		if groups[i].ID != groupID {
			continue
		}
		n := groups[i].NextTicketNumber
		if n <= 0 {
			n = 1
		}
		groups[i].NextTicketNumber = n + 1
		if err := SaveGroups(ctx, a, groups); err != nil {
			return model.Group{}, 0, err
		}
		return groups[i], n, nil
	}
	return model.Group{ID: groupID}, 1, nil
}
