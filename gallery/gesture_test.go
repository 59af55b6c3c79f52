package gallery

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
)

type zoomRecorder struct {
	steps  []int
	focals []fyne.Position
}

func (z *zoomRecorder) record(step int, focal fyne.Position) {
	z.steps = append(z.steps, step)
	z.focals = append(z.focals, focal)
}

func scrollEvent(x, y, dy float32) *fyne.ScrollEvent {
	e := &fyne.ScrollEvent{}
	e.Position = fyne.NewPos(x, y)
	e.Scrolled = fyne.NewDelta(0, dy)
	return e
}

func TestZoomOverlay_ModifierGate(t *testing.T) {
	test.NewApp()

	rec := &zoomRecorder{}
	z := newZoomOverlay(rec.record)

	// Without the modifier a wheel event is a plain scroll, never a zoom.
	z.modifierActive = func() bool { return false }
	z.Scrolled(scrollEvent(100, 50, -120))
	z.Scrolled(scrollEvent(100, 50, 120))
	if len(rec.steps) != 0 {
		t.Fatalf("unmodified wheel produced %d zoom requests", len(rec.steps))
	}

	// With the modifier each qualifying event yields exactly one step,
	// regardless of delta magnitude.
	z.modifierActive = func() bool { return true }
	z.Scrolled(scrollEvent(100, 50, -120))
	if len(rec.steps) != 1 || rec.steps[0] != 1 {
		t.Fatalf("scroll down: steps = %v, want [1]", rec.steps)
	}
	if rec.focals[0] != fyne.NewPos(100, 50) {
		t.Errorf("focal = %v, want (100,50)", rec.focals[0])
	}

	z.Scrolled(scrollEvent(10, 20, 3)) // tiny trackpad delta still one full step
	if len(rec.steps) != 2 || rec.steps[1] != -1 {
		t.Fatalf("scroll up: steps = %v, want [1 -1]", rec.steps)
	}

	// Zero and non-finite deltas are dropped.
	z.Scrolled(scrollEvent(0, 0, 0))
	z.Scrolled(scrollEvent(0, 0, float32(nan())))
	if len(rec.steps) != 2 {
		t.Errorf("degenerate deltas emitted steps: %v", rec.steps)
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func TestPinchTracker_BelowThreshold(t *testing.T) {
	var p pinchTracker
	p.begin(fyne.NewPos(100, 100), fyne.NewPos(300, 100))

	// Wiggle the contacts around without ever accumulating 60dp.
	positions := []float32{290, 295, 285, 290, 280, 290}
	for _, x := range positions {
		if step, _ := p.step(fyne.NewPos(100, 100), fyne.NewPos(x, 100)); step != 0 {
			t.Fatalf("sub-threshold pinch emitted step %d", step)
		}
	}
}

func TestPinchTracker_StepsAndReset(t *testing.T) {
	var p pinchTracker
	p.begin(fyne.NewPos(100, 100), fyne.NewPos(300, 100))

	// Contacts closing by 70dp total: one step toward more columns.
	step, focal := p.step(fyne.NewPos(100, 100), fyne.NewPos(260, 100))
	if step != 0 {
		t.Fatalf("40dp in: got step %d too early", step)
	}
	step, focal = p.step(fyne.NewPos(100, 100), fyne.NewPos(230, 100))
	if step != 1 {
		t.Fatalf("70dp in: step = %d, want 1", step)
	}
	if focal != fyne.NewPos(165, 100) {
		t.Errorf("focal = %v, want contact midpoint (165,100)", focal)
	}

	// Accumulator was reset: another 30dp does not emit again.
	if step, _ = p.step(fyne.NewPos(100, 100), fyne.NewPos(200, 100)); step != 0 {
		t.Fatalf("carry-over after emit: step = %d", step)
	}

	// Continuing the same pinch eventually emits the next step.
	if step, _ = p.step(fyne.NewPos(100, 100), fyne.NewPos(160, 100)); step != 1 {
		t.Fatalf("long pinch second step = %d, want 1", step)
	}

	// Spreading apart crosses the threshold the other way.
	if step, _ = p.step(fyne.NewPos(100, 100), fyne.NewPos(240, 100)); step != -1 {
		t.Fatalf("spread: step = %d, want -1", step)
	}
}

func TestPinchTracker_EndResetsState(t *testing.T) {
	var p pinchTracker
	p.begin(fyne.NewPos(0, 0), fyne.NewPos(200, 0))
	p.step(fyne.NewPos(0, 0), fyne.NewPos(150, 0))
	p.end()

	if p.tracking || p.acc != 0 || p.lastDist != 0 {
		t.Errorf("state survived end: %+v", p)
	}
	if step, _ := p.step(fyne.NewPos(0, 0), fyne.NewPos(50, 0)); step != 0 {
		t.Errorf("idle tracker emitted step %d", step)
	}
}
