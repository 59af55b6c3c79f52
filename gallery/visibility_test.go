package gallery

import "testing"

func TestVisibleIndices_Window(t *testing.T) {
	// Five entries stacked vertically, 100px tall each, no gap.
	entries := make([]LayoutEntry, 5)
	for i := range entries {
		entries[i] = LayoutEntry{X: 0, Y: float32(i * 100), W: 100, H: 100}
	}

	// Viewport covers 0-199 with no buffer: entries 0 and 1.
	vis := visibleIndices(entries, 0, 200, 0)
	assertSet(t, vis, 0, 1)

	// Scrolled to 150: entry 1 straddles the top, entries 2-3 inside.
	vis = visibleIndices(entries, 150, 200, 0)
	assertSet(t, vis, 1, 2, 3)

	// Buffer pre-mounts one extra row above and below.
	vis = visibleIndices(entries, 150, 200, 100)
	assertSet(t, vis, 0, 1, 2, 3, 4)

	// Far past the content: nothing.
	vis = visibleIndices(entries, 10000, 200, 50)
	assertSet(t, vis)
}

func TestVisibleIndices_EdgeTouching(t *testing.T) {
	entries := []LayoutEntry{{Y: 0, H: 100}, {Y: 100, H: 100}}

	// An entry ending exactly at the window top is not visible...
	vis := visibleIndices(entries, 100, 50, 0)
	if _, ok := vis[0]; ok {
		t.Error("entry ending at scroll offset should be excluded")
	}
	// ...while the one starting there is.
	if _, ok := vis[1]; !ok {
		t.Error("entry starting at scroll offset should be included")
	}
}

func TestVisibleIndices_Idempotent(t *testing.T) {
	entries := make([]LayoutEntry, 20)
	for i := range entries {
		entries[i] = LayoutEntry{Y: float32(i * 80), H: 80}
	}

	a := visibleIndices(entries, 320, 400, 120)
	b := visibleIndices(entries, 320, 400, 120)

	if len(a) != len(b) {
		t.Fatalf("repeated call changed size: %d vs %d", len(a), len(b))
	}
	for idx := range a {
		if _, ok := b[idx]; !ok {
			t.Errorf("index %d missing on repeat", idx)
		}
	}
}

func assertSet(t *testing.T, got map[int]struct{}, want ...int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("set size %d, want %d (%v)", len(got), len(want), got)
	}
	for _, idx := range want {
		if _, ok := got[idx]; !ok {
			t.Errorf("index %d missing from %v", idx, got)
		}
	}
}
