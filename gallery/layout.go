package gallery

// LayoutEntry is the computed rectangle for one Item under the current column
// count. Whole entry slices are replaced atomically on every relayout; an
// entry is never mutated in place.
type LayoutEntry struct {
	X, Y, W, H float32
	Item       Item
}

// ComputeLayout positions every item for the given column count and container
// width. It is pure and deterministic: identical inputs always produce
// identical entries, which is what makes anchor-preserving zoom exact.
//
// The returned total height is the bottom edge of the tallest column,
// excluding the trailing gap.
func ComputeLayout(items []Item, columns int, containerWidth, gap float32, mode PackMode) ([]LayoutEntry, float32) {
	if columns < 1 {
		columns = 1
	}
	if len(items) == 0 || containerWidth <= 0 {
		return nil, 0
	}

	colWidth := (containerWidth - float32(columns-1)*gap) / float32(columns)

	if mode == PackGrid {
		return layoutGrid(items, columns, colWidth, gap)
	}
	return layoutMasonry(items, columns, colWidth, gap)
}

func layoutMasonry(items []Item, columns int, colWidth, gap float32) ([]LayoutEntry, float32) {
	heights := make([]float32, columns)
	entries := make([]LayoutEntry, len(items))

	for i, item := range items {
		// Shortest column wins, lowest index on ties.
		col := 0
		for c := 1; c < columns; c++ {
			if heights[c] < heights[col] {
				col = c
			}
		}

		w, h := item.Width, item.Height
		if w <= 0 || h <= 0 {
			w, h = defaultAspectW, defaultAspectH
		}
		tileHeight := colWidth * float32(h) / float32(w)

		entries[i] = LayoutEntry{
			X:    float32(col) * (colWidth + gap),
			Y:    heights[col],
			W:    colWidth,
			H:    tileHeight,
			Item: item,
		}
		heights[col] += tileHeight + gap
	}

	var total float32
	for _, h := range heights {
		if h > total {
			total = h
		}
	}
	if total > 0 {
		total -= gap
	}
	return entries, total
}

func layoutGrid(items []Item, columns int, colWidth, gap float32) ([]LayoutEntry, float32) {
	entries := make([]LayoutEntry, len(items))
	for i, item := range items {
		row := i / columns
		col := i % columns
		entries[i] = LayoutEntry{
			X:    float32(col) * (colWidth + gap),
			Y:    float32(row) * (colWidth + gap),
			W:    colWidth,
			H:    colWidth,
			Item: item,
		}
	}
	rows := (len(items) + columns - 1) / columns
	total := float32(rows)*(colWidth+gap) - gap
	return entries, total
}
