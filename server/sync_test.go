package server

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestSyncEvents_DiscoveryAndRemoval(t *testing.T) {
	dir := t.TempDir()
	store := NewEventStore(dir)
	lib := NewLibrary(dir)
	gen := NewThumbGenerator("")

	// Known event whose folder exists, one whose folder is gone, and the
	// global Thumbnail dir which must never become an event.
	mustMkdir(t, filepath.Join(dir, "kept"))
	mustMkdir(t, filepath.Join(dir, "Thumbnail"))
	mustWrite(t, filepath.Join(dir, "events.json"), []byte(`{
		"kept": {"name": "Kept", "folder": "kept", "password": "pw"},
		"gone": {"name": "Gone", "folder": "vanished"}
	}`))

	// An unregistered folder to discover.
	mustMkdir(t, filepath.Join(dir, "Summer Trip", "Media"))

	if err := SyncEvents(store, lib, gen); err != nil {
		t.Fatal(err)
	}

	events := store.Load()
	if len(events) != 2 {
		t.Fatalf("got %d events: %v", len(events), events)
	}

	// 1. The existing entry survives untouched, password included.
	kept, ok := events["kept"]
	if !ok || kept.Password != "pw" || kept.Hidden {
		t.Errorf("kept event mangled: %+v", kept)
	}

	// 2. The vanished folder's event is gone.
	if _, ok := events["gone"]; ok {
		t.Error("event with missing folder survived sync")
	}

	// 3. The new folder is registered under a normalized key, hidden until
	// reviewed, with a date filled in.
	disc, ok := events["summer-trip"]
	if !ok {
		t.Fatalf("discovered event missing: %v", events)
	}
	if disc.Folder != "Summer Trip" || disc.Name != "Summer Trip" || !disc.Hidden {
		t.Errorf("discovered event: %+v", disc)
	}
	if disc.Date == "" {
		t.Error("discovered event has no date")
	}

	// 4. The result was persisted.
	raw, err := os.ReadFile(filepath.Join(dir, "events.json"))
	if err != nil {
		t.Fatal(err)
	}
	var onDisk map[string]Event
	if err := json.Unmarshal(raw, &onDisk); err != nil {
		t.Fatal(err)
	}
	if _, ok := onDisk["summer-trip"]; !ok {
		t.Error("discovery not written to events.json")
	}

	// 5. Re-running is a no-op: the discovered entry is not re-created or
	// un-hidden flipped back.
	if err := SyncEvents(store, lib, gen); err != nil {
		t.Fatal(err)
	}
	if again := store.Load(); len(again) != 2 || !again["summer-trip"].Hidden {
		t.Errorf("second sync changed state: %v", again)
	}
}

func TestSyncEvents_ThumbsAndOrphans(t *testing.T) {
	dir := t.TempDir()
	store := NewEventStore(dir)
	lib := NewLibrary(dir)
	gen := NewThumbGenerator("")

	media := filepath.Join(dir, "e", "Media")
	thumbs := filepath.Join(dir, "e", "Thumbnail")
	mustMkdir(t, media)
	mustMkdir(t, thumbs)
	mustWrite(t, filepath.Join(dir, "events.json"), []byte(`{"e": {"name": "E", "folder": "e"}}`))

	mustWrite(t, filepath.Join(media, "a.png"), testPNG(t, 600, 400))
	// Thumbs for media that no longer exists, in both generated and imported
	// forms, plus a non-thumbnail file that must be left alone.
	mustWrite(t, filepath.Join(thumbs, "deleted.webp"), []byte("orphan"))
	mustWrite(t, filepath.Join(thumbs, "deleted.jpg"), []byte("orphan"))
	mustWrite(t, filepath.Join(thumbs, "README.txt"), []byte("keep"))

	if err := SyncEvents(store, lib, gen); err != nil {
		t.Fatal(err)
	}

	// a.png gained a thumbnail; the orphans were removed.
	if _, err := os.Stat(filepath.Join(thumbs, "a.jpg")); err != nil {
		t.Errorf("missing generated thumb: %v", err)
	}
	for _, name := range []string{"deleted.webp", "deleted.jpg"} {
		if _, err := os.Stat(filepath.Join(thumbs, name)); err == nil {
			t.Errorf("orphan %s survived sync", name)
		}
	}
	if _, err := os.Stat(filepath.Join(thumbs, "README.txt")); err != nil {
		t.Error("non-thumbnail file was deleted")
	}
}

func TestEventList_HiddenExcluded(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "events.json"), []byte(`{
		"public": {"name": "Public", "folder": "p"},
		"pending": {"name": "Pending", "folder": "q", "hidden": true}
	}`))
	mustMkdir(t, filepath.Join(dir, "q", "Media"))

	ts := httptest.NewServer(New(dir))
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/e")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var list []eventSummary
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Path != "public" {
		t.Fatalf("listing = %+v, want only the public event", list)
	}

	// Hidden events still answer on direct links.
	page := getPage(t, ts, "/api/e/pending")
	if page.Media == nil {
		t.Error("hidden event not reachable directly")
	}
}

func TestEventKey(t *testing.T) {
	cases := map[string]string{
		"Summer Trip":  "summer-trip",
		"wedding2026":  "wedding2026",
		"NYE  Party":   "nye--party",
		"Already-Good": "already-good",
	}
	for folder, want := range cases {
		if got := eventKey(folder); got != want {
			t.Errorf("eventKey(%q) = %q, want %q", folder, got, want)
		}
	}
}
