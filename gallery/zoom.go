package gallery

import (
	"math"

	"fyne.io/fyne/v2"
)

// anchorIndex locates the entry whose rectangle contains the content-space
// point. When the point sits over a gap it falls back to the entry with the
// nearest center, ties preferring the lower index, so the zoom anchor is
// deterministic. Returns false only for an empty entry sequence.
func anchorIndex(entries []LayoutEntry, x, y float32) (int, bool) {
	if len(entries) == 0 {
		return 0, false
	}

	for i, e := range entries {
		if x >= e.X && x < e.X+e.W && y >= e.Y && y < e.Y+e.H {
			return i, true
		}
	}

	best := 0
	bestDist := math.MaxFloat64
	for i, e := range entries {
		dx := float64(e.X+e.W/2) - float64(x)
		dy := float64(e.Y+e.H/2) - float64(y)
		if d := dx*dx + dy*dy; d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, true
}

// applyZoom performs the anchor-preserving column change: capture the entry
// under the focal point and the point's vertical ratio within it, rebuild the
// whole layout at the new column count, flush the pool (every rectangle is
// invalid under the new packing), then restore scroll so the same content
// point sits under the same screen point again.
func (g *Gallery) applyZoom(newColumns int, focal fyne.Position) {
	if !g.active {
		return
	}
	newColumns = clampColumns(newColumns, g.cfg.MinColumns, g.cfg.MaxColumns)
	if newColumns == g.columns {
		return
	}

	contentX := focal.X
	contentY := focal.Y + g.scroll.Offset.Y
	anchor, found := anchorIndex(g.entries, contentX, contentY)

	var ratio float32
	if found {
		e := g.entries[anchor]
		if e.H > 0 {
			ratio = (contentY - e.Y) / e.H
		}
		if ratio < 0 {
			ratio = 0
		}
		if ratio > 1 {
			ratio = 1
		}
	}

	g.columns = newColumns
	g.relayout()
	g.pool.clear()
	g.visible = nil

	if found {
		e := g.entries[anchor]
		offset := e.Y + ratio*e.H - focal.Y
		if offset < 0 {
			offset = 0
		}
		g.scroll.Offset = fyne.NewPos(g.scroll.Offset.X, offset)
		g.scroll.Refresh()
	}

	g.renderPass()

	if g.OnColumnsChanged != nil {
		g.OnColumnsChanged(newColumns)
	}
}

// ZoomBy steps the column count around the viewport center. Toolbar zoom
// buttons use it; gesture paths carry their own focal point instead.
func (g *Gallery) ZoomBy(step int) {
	focal := fyne.NewPos(g.Size().Width/2, g.viewportHeight()/2)
	g.applyZoom(g.columns+step, focal)
}
