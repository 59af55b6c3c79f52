//go:build !flatpak

package viewer

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
)

// saveMedia prompts for a destination and writes the downloaded bytes.
func (v *Viewer) saveMedia(name string, data []byte) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, v.win)
			return
		}
		if writer == nil {
			return // cancelled
		}
		_, werr := writer.Write(data)
		if cerr := writer.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			dialog.ShowError(werr, v.win)
		}
	}, v.win)
	d.SetFileName(name)
	d.Show()
}
