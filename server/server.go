package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sh3ldr0id/Ameryd/gallery"
)

const pageSize = 20

// Server exposes the event media API and file routes. All responses that are
// not file bodies are JSON.
type Server struct {
	events  *EventStore
	library *Library
	mux     *http.ServeMux
}

// New wires the routes against a data directory laid out as
// data/events.json, data/Thumbnail/ and data/<folder>/{Media,Thumbnail}/.
func New(dataDir string) *Server {
	s := &Server{
		events:  NewEventStore(dataDir),
		library: NewLibrary(dataDir),
		mux:     http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /e", s.handleEventList)
	s.mux.HandleFunc("GET /api/e/{event}", s.handleEventAPI)
	s.mux.HandleFunc("GET /e/{event}/m/{filename}", s.handleMediaFile)
	s.mux.HandleFunc("GET /e/{event}/t/{filename}", s.handleThumbFile)
	s.mux.HandleFunc("GET /e/{event}/thumbnail", s.handleEventCover)
	s.mux.HandleFunc("GET /thumbs/{filename}", s.handleGlobalThumb)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// lookupEvent resolves the {event} path segment (PathValue hands it over
// already percent-decoded).
func (s *Server) lookupEvent(r *http.Request) (string, Event, bool) {
	path := r.PathValue("event")
	ev, ok := s.events.Get(path)
	return path, ev, ok
}

// eventSummary is the public listing shape: passwords never leave the server.
type eventSummary struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Locked   bool   `json:"locked"`
	CoverURL string `json:"cover_url"`
}

func (s *Server) handleEventList(w http.ResponseWriter, r *http.Request) {
	events := s.events.Load()

	list := make([]eventSummary, 0, len(events))
	for path, ev := range events {
		// Hidden events await admin review; direct links still resolve.
		if ev.Hidden {
			continue
		}
		list = append(list, eventSummary{
			Path:     path,
			Name:     ev.Name,
			Locked:   ev.Locked(),
			CoverURL: "/e/" + url.PathEscape(path) + "/thumbnail",
		})
	}
	writeJSON(w, http.StatusOK, list)
}

type pageResponse struct {
	Media    []gallery.Item `json:"media"`
	HasMore  bool           `json:"has_more"`
	NextPage *int           `json:"next_page"`
}

func (s *Server) handleEventAPI(w http.ResponseWriter, r *http.Request) {
	path, ev, ok := s.lookupEvent(r)
	if !ok {
		jsonError(w, http.StatusNotFound, "Event not found")
		return
	}

	key := r.URL.Query().Get("key")
	if !ev.Authorized(key) {
		jsonError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	all := s.library.List(path, key, ev)

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(all) {
		start = len(all)
	}
	if end > len(all) {
		end = len(all)
	}

	resp := pageResponse{
		Media:   all[start:end],
		HasMore: end < len(all),
	}
	if resp.HasMore {
		next := page + 1
		resp.NextPage = &next
	}
	writeJSON(w, http.StatusOK, resp)
}

// safeName rejects anything that is not a bare filename.
func safeName(name string) (string, bool) {
	if name == "" || name == "." || name == ".." {
		return "", false
	}
	if filepath.Base(name) != name {
		return "", false
	}
	return name, true
}

func serveExistingFile(w http.ResponseWriter, r *http.Request, path string) bool {
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return false
	}
	http.ServeFile(w, r, path)
	return true
}

func (s *Server) handleMediaFile(w http.ResponseWriter, r *http.Request) {
	_, ev, ok := s.lookupEvent(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if !ev.Authorized(r.URL.Query().Get("key")) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	name, ok := safeName(r.PathValue("filename"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if !serveExistingFile(w, r, filepath.Join(s.library.mediaDir(ev), name)) {
		http.NotFound(w, r)
	}
}

func (s *Server) handleThumbFile(w http.ResponseWriter, r *http.Request) {
	_, ev, ok := s.lookupEvent(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if !ev.Authorized(r.URL.Query().Get("key")) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	name, ok := safeName(r.PathValue("filename"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if serveExistingFile(w, r, filepath.Join(s.library.thumbDir(ev), name)) {
		return
	}
	// Not generated for this event: fall through to the global set.
	if !serveExistingFile(w, r, filepath.Join(s.library.globalThumbDir(), name)) {
		http.NotFound(w, r)
	}
}

// handleEventCover serves the event's cover image. Unauthenticated: covers
// appear on the public event list.
func (s *Server) handleEventCover(w http.ResponseWriter, r *http.Request) {
	_, ev, ok := s.lookupEvent(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if serveExistingFile(w, r, filepath.Join(s.library.eventDir(ev), "thumbnail.webp")) {
		return
	}
	if !serveExistingFile(w, r, filepath.Join(s.library.globalThumbDir(), "event.webp")) {
		http.NotFound(w, r)
	}
}

func (s *Server) handleGlobalThumb(w http.ResponseWriter, r *http.Request) {
	name, ok := safeName(r.PathValue("filename"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if !serveExistingFile(w, r, filepath.Join(s.library.globalThumbDir(), name)) {
		http.NotFound(w, r)
	}
}
