package server

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
)

// Event is one entry of events.json, keyed by its URL path segment.
type Event struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date,omitempty"`
	Folder      string `json:"folder"`
	// Hidden keeps the event off the public listing until an admin reviews
	// it. Direct links still work.
	Hidden   bool   `json:"hidden,omitempty"`
	Password string `json:"password,omitempty"`
}

// Locked reports whether the event requires an access key.
func (e Event) Locked() bool {
	return e.Password != ""
}

// Authorized reports whether key grants access to this event.
func (e Event) Authorized(key string) bool {
	return !e.Locked() || key == e.Password
}

// EventStore reads events.json from the data directory. The file is re-read
// on every lookup so edits take effect without a restart.
type EventStore struct {
	path string
}

func NewEventStore(dataDir string) *EventStore {
	return &EventStore{path: filepath.Join(dataDir, "events.json")}
}

// Load returns the full event map. A missing or malformed file is an empty
// map, not an error: the server keeps running with no events.
func (s *EventStore) Load() map[string]Event {
	data, err := os.ReadFile(s.path)
	if err != nil {
		log.Printf("events: %v", err)
		return map[string]Event{}
	}

	var events map[string]Event
	if err := json.Unmarshal(data, &events); err != nil {
		log.Printf("events: parse %s: %v", s.path, err)
		return map[string]Event{}
	}
	return events
}

// Get looks up one event by its path segment.
func (s *EventStore) Get(path string) (Event, bool) {
	ev, ok := s.Load()[path]
	return ev, ok
}

// Save writes the event map back to events.json. Used by the sync pass;
// request handlers never write.
func (s *EventStore) Save(events map[string]Event) error {
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
