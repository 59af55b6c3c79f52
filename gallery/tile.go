package gallery

import (
	"hash/fnv"
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// mediaTile is one mounted gallery cell: a tinted placeholder that is swapped
// for the item's thumbnail once loaded. A tile is bound to its item at
// creation and never rebound; the pool repositions it while the index stays
// visible and releases it when it leaves the render window.
type mediaTile struct {
	widget.BaseWidget

	item        Item
	placeholder *canvas.Rectangle
	thumbnail   *canvas.Image
	thumbs      *ThumbnailManager
	onTapped    func(Item)

	// Set on release so a thumbnail callback arriving afterwards doesn't
	// touch a dead tile. Only accessed on the UI thread.
	released bool
}

func newMediaTile(item Item, thumbs *ThumbnailManager, onTapped func(Item)) *mediaTile {
	t := &mediaTile{
		item:        item,
		thumbs:      thumbs,
		onTapped:    onTapped,
		placeholder: canvas.NewRectangle(placeholderColor(item.Filename)),
		thumbnail:   canvas.NewImageFromImage(nil),
	}
	t.thumbnail.FillMode = canvas.ImageFillContain
	t.thumbnail.Hide()
	t.ExtendBaseWidget(t)
	t.requestThumbnail()
	return t
}

func (t *mediaTile) requestThumbnail() {
	if t.thumbs == nil || t.item.ThumbURL == "" {
		return
	}

	// Try instant memory hit
	if img := t.thumbs.LoadMemoryOnly(t.item.ThumbURL); img != nil {
		t.showThumbnail(img)
		return
	}

	t.thumbs.Load(t.item.ThumbURL, func(img image.Image) {
		fyne.Do(func() {
			if t.released || img == nil {
				return
			}
			t.showThumbnail(img)
			t.Refresh()
		})
	})
}

func (t *mediaTile) showThumbnail(img image.Image) {
	t.thumbnail.Image = img
	t.thumbnail.Show()
	t.placeholder.Hide()
}

func (t *mediaTile) release() {
	t.released = true
}

func (t *mediaTile) Tapped(*fyne.PointEvent) {
	if t.onTapped != nil {
		t.onTapped(t.item)
	}
}

func (t *mediaTile) CreateRenderer() fyne.WidgetRenderer {
	return &mediaTileRenderer{tile: t}
}

type mediaTileRenderer struct {
	tile *mediaTile
}

func (r *mediaTileRenderer) Layout(size fyne.Size) {
	r.tile.placeholder.Resize(size)
	r.tile.thumbnail.Resize(size)
}

func (r *mediaTileRenderer) MinSize() fyne.Size {
	return fyne.NewSize(1, 1)
}

func (r *mediaTileRenderer) Refresh() {
	r.tile.placeholder.Refresh()
	r.tile.thumbnail.Refresh()
}

func (r *mediaTileRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.tile.placeholder, r.tile.thumbnail}
}

func (r *mediaTileRenderer) Destroy() {}

// placeholderColor derives a stable muted tint from the filename so the grid
// doesn't flash uniform grey while thumbnails stream in.
func placeholderColor(filename string) color.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(filename))
	hue := float64(h.Sum32() % 360)
	r, g, b := colorful.Hsv(hue, 0.25, 0.35).RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}
