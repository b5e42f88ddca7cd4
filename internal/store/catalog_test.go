package store

import (
	"context"
	"testing"

	"tray-kanban/internal/model"
)

func TestNextTicketNumber(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := NewFiles(t.TempDir(), "", false)

	if _, err := AddGroup(ctx, f, model.Group{Name: "Engineering", Prefix: "eng"}); err != nil {
		t.Fatalf("AddGroup: %v", err)
	}
	if _, err := AddGroup(ctx, f, model.Group{ID: "other", Prefix: "ENG"}); err == nil {
		t.Fatalf("duplicate prefix accepted")
	}

	for want := 1; want <= 3; want++ {
		g, n, err := NextTicketNumber(ctx, f, "eng")
		if err != nil {
			t.Fatalf("NextTicketNumber: %v", err)
		}
		if n != want || g.Prefix != "ENG" {
			t.Fatalf("got %d (%s); want %d", n, g.Prefix, want)
		}
	}
	groups, err := LoadGroups(ctx, f)
	if err != nil || len(groups) != 1 || groups[0].NextTicketNumber != 4 {
		t.Fatalf("groups = %#v, %v", groups, err)
	}

	if _, n, err := NextTicketNumber(ctx, f, "missing"); err != nil || n != 1 {
		t.Fatalf("unknown group = %d, %v; want 1", n, err)
	}
}

func TestTags_DefaultEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := NewFiles(t.TempDir(), "", false)
	tags, err := LoadTags(ctx, f)
	if err != nil || tags == nil || len(tags) != 0 {
		t.Fatalf("LoadTags = %#v, %v", tags, err)
	}
	want := []model.Tag{{ID: "bug", Name: "Bug", Color: model.TagPurple}}
	if err := SaveTags(ctx, f, want); err != nil {
		t.Fatalf("SaveTags: %v", err)
	}
	got, _ := LoadTags(ctx, f)
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("LoadTags = %#v", got)
	}
}
