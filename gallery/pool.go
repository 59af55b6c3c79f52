package gallery

import (
	"fyne.io/fyne/v2"
)

// tilePool maps visible entry indices to mounted tiles. reconcile is the only
// code that mutates the canvas object set, so outside an in-progress
// (synchronous) pass the mounted keys always equal the current visible set.
type tilePool struct {
	content *fyne.Container
	newTile func(Item) *mediaTile
	mounted map[int]*mediaTile
}

func newTilePool(content *fyne.Container, factory func(Item) *mediaTile) *tilePool {
	return &tilePool{
		content: content,
		newTile: factory,
		mounted: make(map[int]*mediaTile),
	}
}

// reconcile brings the mounted set in line with newVisible. Indices visible
// before and after keep their tile and are only repositioned; tile creation
// over a session is therefore bounded by the number of distinct indices ever
// shown, not by scroll events.
func (p *tilePool) reconcile(newVisible map[int]struct{}, entries []LayoutEntry) {
	for idx, tile := range p.mounted {
		if _, keep := newVisible[idx]; keep {
			continue
		}
		tile.release()
		p.content.Remove(tile)
		delete(p.mounted, idx)
	}

	for idx := range newVisible {
		if idx < 0 || idx >= len(entries) {
			continue
		}
		e := entries[idx]
		if tile, ok := p.mounted[idx]; ok {
			tile.Move(fyne.NewPos(e.X, e.Y))
			tile.Resize(fyne.NewSize(e.W, e.H))
			continue
		}
		tile := p.newTile(e.Item)
		p.mounted[idx] = tile
		p.content.Add(tile)
		tile.Resize(fyne.NewSize(e.W, e.H))
		tile.Move(fyne.NewPos(e.X, e.Y))
	}
}

// clear unmounts everything. Used when the whole geometry becomes invalid
// (column change, full item replacement) and on destroy.
func (p *tilePool) clear() {
	for idx, tile := range p.mounted {
		tile.release()
		p.content.Remove(tile)
		delete(p.mounted, idx)
	}
}

func (p *tilePool) size() int {
	return len(p.mounted)
}
