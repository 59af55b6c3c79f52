package viewer

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"net/http"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/sh3ldr0id/Ameryd/gallery"
)

// openItem downloads the full-resolution media and shows it in a lightbox
// with a save action. Videos (and anything else that does not decode as an
// image) go straight to the save dialog.
func (v *Viewer) openItem(item gallery.Item) {
	go func() {
		data, err := v.fetchBytes(item.FullURL)
		fyne.Do(func() {
			if err != nil {
				dialog.ShowError(err, v.win)
				return
			}
			v.showLightbox(item, data)
		})
	}()
}

func (v *Viewer) fetchBytes(url string) ([]byte, error) {
	resp, err := v.client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (v *Viewer) showLightbox(item gallery.Item, data []byte) {
	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// Not displayable in-window; offer the download instead.
		dialog.ShowConfirm(item.Filename, "Save this file to disk?", func(save bool) {
			if save {
				v.saveMedia(item.Filename, data)
			}
		}, v.win)
		return
	}

	img := canvas.NewImageFromImage(decoded)
	img.FillMode = canvas.ImageFillContain
	winSize := v.win.Canvas().Size()
	img.SetMinSize(fyne.NewSize(winSize.Width*0.8, winSize.Height*0.8))

	save := widget.NewButton("Save", func() {
		v.saveMedia(item.Filename, data)
	})

	content := container.NewBorder(nil, container.NewCenter(save), nil, nil, img)
	d := dialog.NewCustom(item.Filename, "Close", content, v.win)
	d.Resize(fyne.NewSize(winSize.Width*0.9, winSize.Height*0.9))
	d.Show()
}
