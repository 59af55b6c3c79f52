package gallery

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

type thumbnailRequest struct {
	url      string
	callback func(image.Image)
}

// ThumbnailManager fetches and caches remote thumbnails: a memory cache for
// instant hits, a persistent disk cache under the user cache dir, and a
// bounded LIFO queue drained by worker goroutines so the most recently
// requested (i.e. currently visible) tiles resolve first. Callbacks run on a
// worker goroutine; callers hop to the UI thread themselves.
type ThumbnailManager struct {
	cache    sync.Map // map[string]image.Image keyed by URL
	requests []thumbnailRequest
	reqLock  sync.Mutex
	reqCond  *sync.Cond
	closed   bool // guarded by reqLock
	client   *http.Client
	cacheDir string
}

var (
	MaxCacheSize  int64 = 200 * 1024 * 1024 // 200MB
	MaxCacheFiles int   = 10000
)

const (
	maxQueuedRequests = 100
	thumbnailWorkers  = 4
	// Largest edge kept in memory. Server thumbs are 400px, but fallback
	// thumbs and foreign feeds can be arbitrarily large.
	maxThumbEdge = 512
)

// NewThumbnailManager starts the worker pool. A nil client gets a default
// with a 30s timeout.
func NewThumbnailManager(client *http.Client) *ThumbnailManager {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	m := &ThumbnailManager{
		requests: make([]thumbnailRequest, 0, maxQueuedRequests),
		client:   client,
	}
	m.reqCond = sync.NewCond(&m.reqLock)

	// Setup persistent cache
	if userCache, err := os.UserCacheDir(); err == nil {
		m.cacheDir = filepath.Join(userCache, "ameryd")
		_ = os.MkdirAll(m.cacheDir, 0755)
		go m.cleanupCache()
	}

	for range thumbnailWorkers {
		go m.worker()
	}
	return m
}

// LoadMemoryOnly retrieves a thumbnail from the memory cache only.
// Returns nil if not in memory.
func (m *ThumbnailManager) LoadMemoryOnly(url string) image.Image {
	if cached, ok := m.cache.Load(url); ok {
		return cached.(image.Image)
	}
	return nil
}

// Load resolves a thumbnail through memory cache, disk cache, then network.
// The callback is not invoked on failure; the tile keeps its placeholder.
func (m *ThumbnailManager) Load(url string, callback func(image.Image)) {
	if url == "" {
		return
	}

	if cached, ok := m.cache.Load(url); ok {
		callback(cached.(image.Image))
		return
	}

	if img := m.loadFromDisk(url); img != nil {
		m.cache.Store(url, img)
		callback(img)
		return
	}

	// LIFO queue: if full, drop the oldest request so the pending set stays
	// small and biased toward what is on screen now.
	m.reqLock.Lock()
	if m.closed {
		m.reqLock.Unlock()
		return
	}
	if len(m.requests) >= maxQueuedRequests {
		m.requests = m.requests[1:]
	}
	m.requests = append(m.requests, thumbnailRequest{url: url, callback: callback})
	m.reqCond.Signal()
	m.reqLock.Unlock()
}

// Close stops the worker pool. Queued requests are dropped and their
// callbacks never fire; memory and disk hits keep serving. Idempotent.
func (m *ThumbnailManager) Close() {
	m.reqLock.Lock()
	m.closed = true
	m.requests = nil
	m.reqCond.Broadcast()
	m.reqLock.Unlock()
}

func (m *ThumbnailManager) worker() {
	for {
		m.reqLock.Lock()
		for len(m.requests) == 0 && !m.closed {
			m.reqCond.Wait()
		}
		if m.closed {
			m.reqLock.Unlock()
			return
		}
		lastIdx := len(m.requests) - 1
		req := m.requests[lastIdx]
		m.requests = m.requests[:lastIdx]
		m.reqLock.Unlock()

		if cached, ok := m.cache.Load(req.url); ok {
			req.callback(cached.(image.Image))
			continue
		}

		img, err := m.fetch(req.url)
		if err != nil {
			log.Printf("thumbnail fetch failed: %v", err)
			continue
		}

		img = downscaleThumb(img)
		m.cache.Store(req.url, img)
		m.saveToDisk(req.url, img)
		req.callback(img)
	}
}

func (m *ThumbnailManager) fetch(url string) (image.Image, error) {
	resp, err := m.client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("thumbnail %s: %s", url, resp.Status)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return img, nil
}

// downscaleThumb bounds the image to maxThumbEdge on its longest side.
func downscaleThumb(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || (w <= maxThumbEdge && h <= maxThumbEdge) {
		return img
	}

	scale := float64(maxThumbEdge) / float64(w)
	if h > w {
		scale = float64(maxThumbEdge) / float64(h)
	}
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	// ApproxBiLinear for speed; these are preview tiles.
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

func (m *ThumbnailManager) loadFromDisk(url string) image.Image {
	if m.cacheDir == "" {
		return nil
	}
	path := filepath.Join(m.cacheDir, cacheKey(url)+".jpg")
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil
	}
	return img
}

func (m *ThumbnailManager) saveToDisk(url string, img image.Image) {
	if m.cacheDir == "" {
		return
	}
	path := filepath.Join(m.cacheDir, cacheKey(url)+".jpg")
	f, err := os.Create(path)
	if err != nil {
		return
	}
	_ = jpeg.Encode(f, img, &jpeg.Options{Quality: 85})
	f.Close()
}

// cleanupCache evicts oldest disk-cache entries until both limits sit under
// an 0.8 watermark, so cleanup doesn't retrigger on the very next store.
func (m *ThumbnailManager) cleanupCache() {
	if m.cacheDir == "" {
		return
	}

	entries, err := os.ReadDir(m.cacheDir)
	if err != nil {
		return
	}

	type cacheFile struct {
		name string
		size int64
		mod  time.Time
	}

	var files []cacheFile
	var total int64
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".jpg" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, cacheFile{name: e.Name(), size: info.Size(), mod: info.ModTime()})
		total += info.Size()
	}

	if total <= MaxCacheSize && len(files) <= MaxCacheFiles {
		return
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].mod.Before(files[j].mod)
	})

	sizeTarget := int64(float64(MaxCacheSize) * 0.8)
	countTarget := int(float64(MaxCacheFiles) * 0.8)

	remaining := len(files)
	for i := 0; i < len(files) && (total > sizeTarget || remaining > countTarget); i++ {
		if err := os.Remove(filepath.Join(m.cacheDir, files[i].name)); err != nil {
			continue
		}
		total -= files[i].size
		remaining--
	}
}
