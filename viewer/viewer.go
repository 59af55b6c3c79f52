// Package viewer is the desktop client for an Ameryd event: a window wrapping
// the gallery widget, paged loading from the event feed, a full-resolution
// lightbox and save-to-disk.
package viewer

import (
	"context"
	"log"
	"net/http"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/sh3ldr0id/Ameryd/gallery"
)

const galleryColumnsKey = "ameryd:galleryColumns"

// Options selects the event to browse.
type Options struct {
	BaseURL   string
	EventPath string
	Key       string
	// Grid switches the gallery from masonry to uniform square cells.
	Grid bool
}

type Viewer struct {
	app    fyne.App
	win    fyne.Window
	g      *gallery.Gallery
	feed   *gallery.FeedClient
	client *http.Client
}

// Run opens the viewer window and blocks until it is closed.
func Run(opts Options) {
	a := app.NewWithID("com.sh3ldr0id.ameryd")
	v := newViewer(a, opts)

	v.g.Init()
	go v.loadPage()
	v.win.ShowAndRun()
}

func newViewer(a fyne.App, opts Options) *Viewer {
	v := &Viewer{
		app:    a,
		client: &http.Client{Timeout: 60 * time.Second},
	}
	v.win = a.NewWindow("Ameryd — " + opts.EventPath)
	v.feed = gallery.NewFeedClient(opts.BaseURL, opts.EventPath, opts.Key, nil)

	cfg := gallery.Config{}
	if opts.Grid {
		cfg.Mode = gallery.PackGrid
	}
	// Column density is the one persisted viewer setting.
	if cols := a.Preferences().Int(galleryColumnsKey); cols > 0 {
		cfg.Columns = cols
	}

	thumbs := gallery.NewThumbnailManager(nil)
	v.g = gallery.New(cfg, thumbs)
	v.win.SetOnClosed(func() {
		v.g.Destroy()
		thumbs.Close()
	})
	v.g.OnColumnsChanged = func(cols int) {
		a.Preferences().SetInt(galleryColumnsKey, cols)
	}
	v.g.OnNearEnd = func() { go v.loadPage() }
	v.g.OnOpen = v.openItem

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.ZoomInIcon(), func() { v.g.ZoomBy(-1) }),
		widget.NewToolbarAction(theme.ZoomOutIcon(), func() { v.g.ZoomBy(1) }),
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), v.refresh),
	)

	v.win.SetContent(container.NewBorder(toolbar, nil, nil, nil, v.g))
	v.win.Resize(fyne.NewSize(1000, 700))
	return v
}

// loadPage fetches the next feed page and appends it. The feed client
// serializes calls itself, so firing this from every near-end notification is
// safe.
func (v *Viewer) loadPage() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	items, _, err := v.feed.LoadNext(ctx)
	if err != nil {
		log.Printf("viewer: load page: %v", err)
		return
	}
	if len(items) == 0 {
		return
	}
	fyne.Do(func() { v.g.AddItems(items) })
}

// refresh rewinds the feed and reloads from the first page.
func (v *Viewer) refresh() {
	v.feed.Reset()
	v.g.SetItems(nil)
	go v.loadPage()
}
