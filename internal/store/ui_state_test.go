package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestUIState_SaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := Store{Dir: dir}

	// Missing file => default state.
	st0, err := s.LoadUIState()
	if err != nil {
		t.Fatalf("LoadUIState: %v", err)
	}
	if st0 == nil || st0.Version != 1 {
		t.Fatalf("expected default Version=1; got %#v", st0)
	}

	mainState := SurfaceUIState{SelectedColumnID: "todo", SelectedTicketID: "t-1", Query: "cache", ShowDetail: true}
	trayState := SurfaceUIState{SelectedColumnID: "done"}
	if err := s.SaveSurfaceUIState("main", mainState); err != nil {
		t.Fatalf("SaveSurfaceUIState(main): %v", err)
	}
	if err := s.SaveSurfaceUIState("tray", trayState); err != nil {
		t.Fatalf("SaveSurfaceUIState(tray): %v", err)
	}

	got, err := s.LoadUIState()
	if err != nil {
		t.Fatalf("LoadUIState (after save): %v", err)
	}
	if !reflect.DeepEqual(got.Surface("main"), mainState) || !reflect.DeepEqual(got.Surface("tray"), trayState) {
		t.Fatalf("roundtrip mismatch: %#v", got)
	}
}

func TestUIState_CorruptedFileIsIgnored(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, uiStateFileName), []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	st, err := (Store{Dir: dir}).LoadUIState()
	if err != nil {
		t.Fatalf("LoadUIState: %v", err)
	}
	if st.Version != 1 || len(st.Surfaces) != 0 {
		t.Fatalf("expected default state; got %#v", st)
	}
}
