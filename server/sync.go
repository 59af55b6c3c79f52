package server

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SyncEvents reconciles events.json with the data directory, then brings
// every event's thumbnails up to date:
//  1. event folders not yet in events.json are registered, hidden by default
//     so an admin can review them before they appear on the listing;
//  2. events whose folder disappeared are removed;
//  3. missing thumbnails are generated and thumbnails whose media file is
//     gone are deleted.
func SyncEvents(store *EventStore, lib *Library, gen *ThumbGenerator) error {
	events := store.Load()

	knownFolders := make(map[string]bool, len(events))
	for _, ev := range events {
		knownFolders[ev.Folder] = true
	}

	entries, err := os.ReadDir(lib.dataDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() || e.Name() == "Thumbnail" || knownFolders[e.Name()] {
			continue
		}
		folder := e.Name()
		key := eventKey(folder)
		log.Printf("sync: discovered event folder %s (as /e/%s, hidden)", folder, key)
		events[key] = Event{
			Name:        folder,
			Description: "Auto-discovered event",
			Date:        folderDate(filepath.Join(lib.dataDir, folder)),
			Folder:      folder,
			Hidden:      true,
		}
		knownFolders[folder] = true
	}

	for key, ev := range events {
		if _, err := os.Stat(filepath.Join(lib.dataDir, ev.Folder)); err != nil {
			log.Printf("sync: event folder %s missing, removing /e/%s", ev.Folder, key)
			delete(events, key)
		}
	}

	if err := store.Save(events); err != nil {
		return err
	}

	for _, ev := range events {
		gen.GenerateEvent(lib, ev)
		cleanOrphanThumbs(lib, ev)
	}
	return nil
}

// eventKey derives the URL path segment for a discovered folder.
func eventKey(folder string) string {
	return strings.ToLower(strings.ReplaceAll(folder, " ", "-"))
}

func folderDate(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return time.Now().Format("2006-01-02")
	}
	return info.ModTime().Format("2006-01-02")
}

// cleanOrphanThumbs deletes generated thumbnails whose media file no longer
// exists. Only thumbnail extensions are touched; anything else in the
// directory is left alone.
func cleanOrphanThumbs(lib *Library, ev Event) {
	mediaStems := make(map[string]bool)
	if entries, err := os.ReadDir(lib.mediaDir(ev)); err == nil {
		for _, e := range entries {
			name := e.Name()
			if !e.IsDir() && (isMedia(name) || thumbVideoExts[strings.ToLower(filepath.Ext(name))]) {
				mediaStems[strings.TrimSuffix(name, filepath.Ext(name))] = true
			}
		}
	}

	thumbs, err := os.ReadDir(lib.thumbDir(ev))
	if err != nil {
		return
	}
	for _, e := range thumbs {
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".webp" && ext != ".jpg" {
			continue
		}
		if mediaStems[strings.TrimSuffix(name, filepath.Ext(name))] {
			continue
		}
		log.Printf("sync: removing orphaned thumbnail %s (%s)", name, ev.Folder)
		if err := os.Remove(filepath.Join(lib.thumbDir(ev), name)); err != nil {
			log.Printf("sync: %v", err)
		}
	}
}
