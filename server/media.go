package server

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/sh3ldr0id/Ameryd/gallery"
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true,
	".gif": true, ".bmp": true, ".webp": true,
}

var videoExts = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true,
	".webm": true, ".mkv": true,
}

func isImage(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

func isVideo(name string) bool {
	return videoExts[strings.ToLower(filepath.Ext(name))]
}

func isMedia(name string) bool {
	return isImage(name) || isVideo(name)
}

// Library lists event media and resolves thumbnails and intrinsic sizes. A
// layout engine packs by aspect ratio, so the API ships each image's decoded
// dimensions; probing opens only the header and the result is cached per
// (path, mtime).
type Library struct {
	dataDir string
	sizes   sync.Map // map[sizeKey]image.Point
}

type sizeKey struct {
	path  string
	mtime int64
}

func NewLibrary(dataDir string) *Library {
	return &Library{dataDir: dataDir}
}

func (l *Library) eventDir(ev Event) string {
	return filepath.Join(l.dataDir, ev.Folder)
}

func (l *Library) mediaDir(ev Event) string {
	return filepath.Join(l.eventDir(ev), "Media")
}

func (l *Library) thumbDir(ev Event) string {
	return filepath.Join(l.eventDir(ev), "Thumbnail")
}

func (l *Library) globalThumbDir() string {
	return filepath.Join(l.dataDir, "Thumbnail")
}

// List returns the event's media in sorted filename order so pagination is
// stable across requests. eventPath and key feed the per-item URLs.
func (l *Library) List(eventPath, key string, ev Event) []gallery.Item {
	entries, err := os.ReadDir(l.mediaDir(ev))
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && isMedia(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	keyQ := ""
	if key != "" {
		keyQ = "?key=" + url.QueryEscape(key)
	}

	items := make([]gallery.Item, 0, len(names))
	for _, name := range names {
		item := gallery.Item{
			Filename: name,
			FullURL:  "/e/" + url.PathEscape(eventPath) + "/m/" + url.PathEscape(name) + keyQ,
		}

		// Per-event thumb if generated, global type fallback otherwise.
		if thumb, ok := l.resolveThumb(ev, name); ok {
			item.ThumbURL = "/e/" + url.PathEscape(eventPath) + "/t/" + url.PathEscape(thumb) + keyQ
		} else if isImage(name) {
			item.ThumbURL = "/thumbs/image.webp"
		} else {
			item.ThumbURL = "/thumbs/video.webp"
		}

		if isImage(name) {
			if size, ok := l.probeSize(filepath.Join(l.mediaDir(ev), name)); ok {
				item.Width, item.Height = size.X, size.Y
			}
		}
		items = append(items, item)
	}
	return items
}

// resolveThumb finds the per-event thumbnail file for a media filename.
// Collections imported from elsewhere carry .webp thumbs; ThumbGenerator
// writes .jpg.
func (l *Library) resolveThumb(ev Event, name string) (string, bool) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	for _, ext := range []string{".webp", ".jpg"} {
		if _, err := os.Stat(filepath.Join(l.thumbDir(ev), stem+ext)); err == nil {
			return stem + ext, true
		}
	}
	return "", false
}

// probeSize decodes only the image header. Videos are skipped; the client
// falls back to its default aspect for items without dimensions.
func (l *Library) probeSize(path string) (image.Point, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return image.Point{}, false
	}
	key := sizeKey{path: path, mtime: info.ModTime().UnixNano()}

	if cached, ok := l.sizes.Load(key); ok {
		p := cached.(image.Point)
		return p, p != image.Point{}
	}

	f, err := os.Open(path)
	if err != nil {
		return image.Point{}, false
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		// Negative result is cached too; a broken file stays broken.
		l.sizes.Store(key, image.Point{})
		return image.Point{}, false
	}

	p := image.Point{X: cfg.Width, Y: cfg.Height}
	l.sizes.Store(key, p)
	return p, true
}
