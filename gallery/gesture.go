package gallery

import (
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

func isZoomModifierActive() bool {
	d, ok := fyne.CurrentApp().Driver().(desktop.Driver)
	if !ok {
		return false
	}

	mods := d.CurrentKeyModifiers()
	if mods&fyne.KeyModifierControl != 0 {
		return true
	}
	// Support Command+scroll on macOS (and Control elsewhere) by honoring the platform shortcut modifier.
	return mods&fyne.KeyModifierShortcutDefault != 0
}

// zoomOverlay sits above the scroll container and intercepts modifier+wheel
// events. It reports itself hidden while no modifier is held so plain scroll
// events reach the scroller underneath.
type zoomOverlay struct {
	widget.BaseWidget
	onZoom func(step int, focal fyne.Position)

	// Swappable so tests can simulate a held modifier without a desktop driver.
	modifierActive func() bool
}

func newZoomOverlay(onZoom func(step int, focal fyne.Position)) *zoomOverlay {
	z := &zoomOverlay{onZoom: onZoom, modifierActive: isZoomModifierActive}
	z.ExtendBaseWidget(z)
	return z
}

func (z *zoomOverlay) Visible() bool {
	if !z.BaseWidget.Visible() {
		return false
	}
	return z.modifierActive()
}

// Scrolled maps one qualifying wheel event to exactly one column step. Only
// the delta sign matters, so notched wheels and fast trackpads behave the
// same: scroll up (positive DY) zooms in, one column fewer; scroll down, one
// column more.
func (z *zoomOverlay) Scrolled(e *fyne.ScrollEvent) {
	if z.onZoom == nil || !z.modifierActive() {
		return
	}

	dy := float64(e.Scrolled.DY)
	if dy == 0 || math.IsNaN(dy) || math.IsInf(dy, 0) {
		return
	}

	step := 1
	if dy > 0 {
		step = -1
	}
	z.onZoom(step, e.Position)
}

func (z *zoomOverlay) CreateRenderer() fyne.WidgetRenderer {
	return &zoomOverlayRenderer{}
}

var _ fyne.Scrollable = (*zoomOverlay)(nil)

type zoomOverlayRenderer struct{}

func (r *zoomOverlayRenderer) Layout(fyne.Size) {}
func (r *zoomOverlayRenderer) MinSize() fyne.Size {
	return fyne.NewSize(0, 0)
}
func (r *zoomOverlayRenderer) Refresh()                     {}
func (r *zoomOverlayRenderer) Objects() []fyne.CanvasObject { return nil }
func (r *zoomOverlayRenderer) Destroy()                     {}

// pinchStepThreshold is the accumulated inter-contact distance change
// required to emit one discrete column step during a pinch.
const pinchStepThreshold = float32(60)

// pinchTracker is the two-state touch gesture machine: idle until exactly two
// contacts exist, then tracking until one lifts. Distance deltas accumulate;
// each threshold crossing emits one step and zeroes the accumulator, so a
// single long pinch walks through column counts one at a time instead of
// jumping.
type pinchTracker struct {
	tracking bool
	lastDist float32
	acc      float32
}

func (p *pinchTracker) begin(a, b fyne.Position) {
	p.tracking = true
	p.lastDist = contactDistance(a, b)
	p.acc = 0
}

// step returns the column delta for the latest contact positions, or 0 while
// the threshold has not been crossed. Contacts moving together request more
// columns (smaller tiles), contacts spreading apart fewer. The focal point is
// the contact midpoint.
func (p *pinchTracker) step(a, b fyne.Position) (int, fyne.Position) {
	if !p.tracking {
		return 0, fyne.Position{}
	}

	d := contactDistance(a, b)
	p.acc += d - p.lastDist
	p.lastDist = d

	focal := fyne.NewPos((a.X+b.X)/2, (a.Y+b.Y)/2)
	switch {
	case p.acc <= -pinchStepThreshold:
		p.acc = 0
		return 1, focal
	case p.acc >= pinchStepThreshold:
		p.acc = 0
		return -1, focal
	}
	return 0, focal
}

func (p *pinchTracker) end() {
	*p = pinchTracker{}
}

func contactDistance(a, b fyne.Position) float32 {
	return float32(math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y)))
}
