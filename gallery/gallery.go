// Package gallery implements a zoomable, virtualized tiled media view for
// Fyne. Item rectangles are computed for the current column count (masonry or
// uniform grid), only tiles intersecting the render window are mounted, and
// ctrl/cmd+wheel or two-finger pinches change column density while keeping
// the content under the focal point in place.
package gallery

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Gallery is an explicitly owned instance: construct with New, attach with
// Init, detach with Destroy. All methods must run on the Fyne UI thread.
type Gallery struct {
	widget.BaseWidget

	cfg     Config
	columns int

	items   []Item
	entries []LayoutEntry
	total   float32
	visible map[int]struct{}

	content *fyne.Container
	scroll  *container.Scroll
	overlay *zoomOverlay
	pool    *tilePool
	pinch   pinchTracker
	thumbs  *ThumbnailManager

	active        bool
	renderPending bool
	lastWidth     float32

	// runOnMain schedules the coalesced render callback. Tests replace it
	// with a direct call.
	runOnMain func(func())

	// OnOpen is invoked when a tile is tapped.
	OnOpen func(Item)
	// OnNearEnd fires when a render pass reaches the bottom of the laid-out
	// content, signalling that another page can be fetched.
	OnNearEnd func()
	// OnColumnsChanged reports column count changes made by zoom gestures.
	OnColumnsChanged func(int)
}

// New creates a gallery with the given configuration. thumbs may be nil, in
// which case tiles keep their placeholder tint.
func New(cfg Config, thumbs *ThumbnailManager) *Gallery {
	g := &Gallery{
		cfg:       cfg.withDefaults(),
		thumbs:    thumbs,
		runOnMain: fyne.Do,
	}
	g.columns = g.cfg.Columns

	g.content = container.New(tileCanvasLayout{g})
	g.scroll = container.NewVScroll(g.content)
	g.overlay = newZoomOverlay(func(step int, focal fyne.Position) {
		g.applyZoom(g.columns+step, focal)
	})
	g.pool = newTilePool(g.content, func(item Item) *mediaTile {
		return newMediaTile(item, g.thumbs, func(it Item) {
			if g.OnOpen != nil {
				g.OnOpen(it)
			}
		})
	})

	g.ExtendBaseWidget(g)
	return g
}

func (g *Gallery) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(g.scroll, g.overlay))
}

// Init begins observing scroll changes and performs the initial layout and
// render. Calling it while already active is a no-op.
func (g *Gallery) Init() {
	if g.active {
		return
	}
	g.active = true
	g.scroll.OnScrolled = func(fyne.Position) { g.scheduleRender() }
	g.relayout()
	g.scheduleRender()
}

// Destroy detaches listeners, cancels any pending render and releases every
// mounted tile. No callback observes the gallery afterwards. Idempotent.
func (g *Gallery) Destroy() {
	if !g.active {
		return
	}
	g.active = false
	g.scroll.OnScrolled = nil
	g.pinch.end()
	g.pool.clear()
	g.visible = nil
}

// SetItems replaces the backing sequence. Mounted tiles are released since
// the index-to-item bindings change wholesale.
func (g *Gallery) SetItems(items []Item) {
	g.items = append([]Item(nil), items...)
	g.pool.clear()
	g.visible = nil
	g.relayout()
	g.scheduleRender()
}

// AddItems appends a fetched page. Earlier entries keep their geometry under
// both packing modes, so tiles already on screen stay put.
func (g *Gallery) AddItems(items []Item) {
	if len(items) == 0 {
		return
	}
	g.items = append(g.items, items...)
	g.relayout()
	g.scheduleRender()
}

// Len returns the number of items in the backing sequence.
func (g *Gallery) Len() int {
	return len(g.items)
}

// Columns returns the current column count.
func (g *Gallery) Columns() int {
	return g.columns
}

// UpdateContacts feeds the current set of active touch points in gallery
// coordinates. Platform embedders with raw multi-touch access call this on
// every contact change; anything other than exactly two contacts leaves
// pinch tracking and resets all gesture state. The stock desktop build zooms
// through the modifier+wheel overlay instead.
func (g *Gallery) UpdateContacts(points ...fyne.Position) {
	if len(points) != 2 {
		g.pinch.end()
		return
	}
	if !g.pinch.tracking {
		g.pinch.begin(points[0], points[1])
		return
	}
	if step, focal := g.pinch.step(points[0], points[1]); step != 0 {
		g.applyZoom(g.columns+step, focal)
	}
}

func (g *Gallery) Resize(size fyne.Size) {
	g.BaseWidget.Resize(size)
	if size.Width == g.lastWidth {
		return
	}
	g.lastWidth = size.Width
	if !g.active {
		return
	}
	g.relayout()
	g.scheduleRender()
}

// relayout recomputes every entry synchronously. It always completes before
// any reconciliation reads entries, so a render pass never sees half-updated
// geometry.
func (g *Gallery) relayout() {
	width := g.lastWidth
	if width <= 0 {
		width = g.scroll.Size().Width
	}
	g.entries, g.total = ComputeLayout(g.items, g.columns, width, g.cfg.Gap, g.cfg.Mode)
	g.content.Refresh()
}

// scheduleRender coalesces any number of triggers into a single render pass:
// redundant calls while one is pending are no-ops.
func (g *Gallery) scheduleRender() {
	if g.renderPending || !g.active {
		return
	}
	g.renderPending = true
	g.runOnMain(func() {
		g.renderPending = false
		if !g.active {
			return
		}
		g.renderPass()
	})
}

func (g *Gallery) renderPass() {
	offset := g.scroll.Offset.Y
	viewport := g.viewportHeight()
	newVisible := visibleIndices(g.entries, offset, viewport, g.cfg.RenderBuffer)
	g.pool.reconcile(newVisible, g.entries)
	g.visible = newVisible

	if g.OnNearEnd != nil && offset+viewport+g.cfg.RenderBuffer >= g.total {
		g.OnNearEnd()
	}
}

func (g *Gallery) viewportHeight() float32 {
	if h := g.scroll.Size().Height; h > 0 {
		return h
	}
	return g.Size().Height
}

// tileCanvasLayout reports the laid-out content height to the scroll
// container; tile positioning itself is done by the pool, not the layout.
type tileCanvasLayout struct {
	g *Gallery
}

func (l tileCanvasLayout) Layout([]fyne.CanvasObject, fyne.Size) {}

func (l tileCanvasLayout) MinSize([]fyne.CanvasObject) fyne.Size {
	return fyne.NewSize(0, l.g.total)
}
