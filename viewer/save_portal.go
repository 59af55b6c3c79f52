//go:build flatpak && !windows && !android && !ios && !wasm && !js

package viewer

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver"
	"fyne.io/fyne/v2/storage"

	"github.com/rymdport/portal"
	"github.com/rymdport/portal/filechooser"
)

// saveMedia goes through the xdg-desktop-portal file chooser: inside the
// flatpak sandbox the in-process dialog cannot see the host filesystem.
func (v *Viewer) saveMedia(name string, data []byte) {
	options := &filechooser.SaveFileOptions{
		AcceptLabel: "Save",
		CurrentName: name,
	}
	windowHandle := windowHandleForPortal(v.win)

	go func() {
		uris, err := filechooser.SaveFile(windowHandle, "Save File", options)
		if err != nil || len(uris) == 0 {
			v.reportSaveError(err)
			return
		}

		uri, err := storage.ParseURI(uris[0])
		if err != nil {
			v.reportSaveError(err)
			return
		}

		writer, err := storage.Writer(uri)
		if err != nil {
			v.reportSaveError(err)
			return
		}
		_, werr := writer.Write(data)
		if cerr := writer.Close(); werr == nil {
			werr = cerr
		}
		v.reportSaveError(werr)
	}()
}

func (v *Viewer) reportSaveError(err error) {
	if err == nil {
		return
	}
	fyne.Do(func() { dialog.ShowError(err, v.win) })
}

func windowHandleForPortal(window fyne.Window) string {
	native, ok := window.(driver.NativeWindow)
	if !ok {
		return ""
	}

	windowHandle := ""
	native.RunNative(func(context any) {
		if x11, ok := context.(driver.X11WindowContext); ok {
			windowHandle = portal.FormatX11WindowHandle(x11.WindowHandle)
		}
	})
	return windowHandle
}
