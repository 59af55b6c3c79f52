package server

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/image/draw"
)

const thumbBound = 400

// Media containers ffmpeg can pull a frame from. Broader than the set the
// API serves: .3gp uploads get thumbs even though they are never listed.
var thumbVideoExts = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true,
	".webm": true, ".mkv": true, ".3gp": true,
}

// ThumbGenerator pre-renders per-event thumbnails into <event>/Thumbnail.
// Image thumbs are scaled in-process; video thumbs come from an ffmpeg frame
// grab at mid-duration.
type ThumbGenerator struct {
	ffmpegPath string
}

func NewThumbGenerator(ffmpegPath string) *ThumbGenerator {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &ThumbGenerator{ffmpegPath: ffmpegPath}
}

// GenerateEvent walks the event's Media dir and fills in missing thumbnails.
// Failures are logged and skipped; one broken file must not stop the batch.
func (t *ThumbGenerator) GenerateEvent(l *Library, ev Event) {
	entries, err := os.ReadDir(l.mediaDir(ev))
	if err != nil {
		return
	}
	if err := os.MkdirAll(l.thumbDir(ev), 0755); err != nil {
		log.Printf("thumbs: %v", err)
		return
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(isMedia(name) || thumbVideoExts[strings.ToLower(filepath.Ext(name))]) {
			continue
		}
		if _, ok := l.resolveThumb(ev, name); ok {
			continue
		}

		stem := strings.TrimSuffix(name, filepath.Ext(name))
		dst := filepath.Join(l.thumbDir(ev), stem+".jpg")
		if err := t.Generate(filepath.Join(l.mediaDir(ev), name), dst); err != nil {
			log.Printf("thumbs: %s: %v", name, err)
		}
	}
}

// Generate writes one thumbnail for an image or video file.
func (t *ThumbGenerator) Generate(mediaPath, thumbPath string) error {
	ext := strings.ToLower(filepath.Ext(mediaPath))

	var img image.Image
	var err error
	switch {
	case imageExts[ext]:
		img, err = decodeImageFile(mediaPath)
	case thumbVideoExts[ext]:
		img, err = t.extractVideoFrame(mediaPath)
	default:
		return fmt.Errorf("unsupported media type %s", ext)
	}
	if err != nil {
		return err
	}

	return writeThumb(thumbPath, scaleToBound(img, thumbBound))
}

func decodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// scaleToBound fits the image into a bound×bound box, preserving aspect.
// Already-small images pass through.
func scaleToBound(img image.Image, bound int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || (w <= bound && h <= bound) {
		return img
	}

	scale := float64(bound) / float64(w)
	if h > w {
		scale = float64(bound) / float64(h)
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
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func writeThumb(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 80}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (t *ThumbGenerator) extractVideoFrame(path string) (image.Image, error) {
	duration, err := t.videoDuration(path)
	if err != nil {
		// Fallback to 1 second if duration parsing fails
		duration = time.Second
	}

	seek := duration / 2
	seekStr := fmt.Sprintf("%02d:%02d:%02d.%03d",
		int(seek.Hours()),
		int(seek.Minutes())%60,
		int(seek.Seconds())%60,
		seek.Milliseconds()%1000)

	// -ss before -i is input seeking: less accurate, much faster, fine for
	// a thumbnail frame.
	cmd := exec.Command(t.ffmpegPath, "-ss", seekStr, "-i", path, "-vframes", "1", "-f", "image2", "-strict", "unofficial", "-")
	var buf bytes.Buffer
	cmd.Stdout = &buf
	if err := cmd.Run(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(&buf)
	return img, err
}

var durationRe = regexp.MustCompile(`Duration: (\d{2}):(\d{2}):(\d{2})\.(\d{2})`)

func (t *ThumbGenerator) videoDuration(path string) (time.Duration, error) {
	// ffmpeg errors out without an output file but still prints the stream
	// info to stderr.
	cmd := exec.Command(t.ffmpegPath, "-i", path)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	_ = cmd.Run()

	matches := durationRe.FindStringSubmatch(stderr.String())
	if len(matches) < 5 {
		return 0, fmt.Errorf("could not find duration in output")
	}

	var hours, minutes, seconds, centiseconds int
	fmt.Sscanf(matches[1], "%d", &hours)
	fmt.Sscanf(matches[2], "%d", &minutes)
	fmt.Sscanf(matches[3], "%d", &seconds)
	fmt.Sscanf(matches[4], "%d", &centiseconds)

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(centiseconds*10)*time.Millisecond, nil
}
