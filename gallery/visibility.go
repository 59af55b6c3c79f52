package gallery

// visibleIndices returns the indices of every entry intersecting the render
// window: the viewport extended by buffer on both sides. The set is
// recomputed from scratch on every pass; reconciliation diffs it against the
// previous one.
func visibleIndices(entries []LayoutEntry, scrollOffset, viewportHeight, buffer float32) map[int]struct{} {
	visible := make(map[int]struct{})
	top := scrollOffset - buffer
	bottom := scrollOffset + viewportHeight + buffer
	for i, e := range entries {
		if e.Y+e.H > top && e.Y < bottom {
			visible[i] = struct{}{}
		}
	}
	return visible
}
