package gallery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func feedTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/e/wedding", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
			return
		}

		switch r.URL.Query().Get("page") {
		case "1":
			two := 2
			_ = json.NewEncoder(w).Encode(feedResponse{
				Media: []Item{
					{Filename: "a.jpg", ThumbURL: "/e/wedding/t/a.webp?key=s3cret", FullURL: "/e/wedding/m/a.jpg?key=s3cret", Width: 800, Height: 600},
					{Filename: "b.jpg", ThumbURL: "/e/wedding/t/b.webp?key=s3cret", FullURL: "/e/wedding/m/b.jpg?key=s3cret", Width: 600, Height: 800},
				},
				HasMore:  true,
				NextPage: &two,
			})
		case "2":
			_ = json.NewEncoder(w).Encode(feedResponse{
				Media:   []Item{{Filename: "c.mp4", ThumbURL: "/thumbs/video.webp", FullURL: "/e/wedding/m/c.mp4?key=s3cret"}},
				HasMore: false,
			})
		default:
			http.Error(w, "no such page", http.StatusInternalServerError)
		}
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestFeedClient_SequentialPages(t *testing.T) {
	ts := feedTestServer(t)
	c := NewFeedClient(ts.URL, "wedding", "s3cret", ts.Client())

	ctx := context.Background()

	// Page 1.
	items, more, err := c.LoadNext(ctx)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(items) != 2 || !more {
		t.Fatalf("page 1: %d items, more=%v", len(items), more)
	}
	// Relative URLs are resolved against the base.
	if items[0].ThumbURL != ts.URL+"/e/wedding/t/a.webp?key=s3cret" {
		t.Errorf("thumb URL not absolutized: %s", items[0].ThumbURL)
	}

	// Page 2 ends pagination.
	items, more, err = c.LoadNext(ctx)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(items) != 1 || more {
		t.Fatalf("page 2: %d items, more=%v", len(items), more)
	}

	// Past the end: nothing, no request issued.
	items, more, err = c.LoadNext(ctx)
	if err != nil || items != nil || more {
		t.Errorf("after end: items=%v more=%v err=%v", items, more, err)
	}

	// Reset rewinds to page 1.
	c.Reset()
	items, _, err = c.LoadNext(ctx)
	if err != nil || len(items) != 2 {
		t.Errorf("after reset: %d items, err=%v", len(items), err)
	}
}

func TestFeedClient_SingleOutstandingFetch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		_ = json.NewEncoder(w).Encode(feedResponse{Media: []Item{{Filename: "a.jpg"}}})
	}))
	defer ts.Close()

	c := NewFeedClient(ts.URL, "party", "", ts.Client())

	type result struct {
		items []Item
		err   error
	}
	first := make(chan result, 1)
	go func() {
		items, _, err := c.LoadNext(context.Background())
		first <- result{items, err}
	}()

	<-started

	// A second call while the first is in flight returns immediately with
	// nothing; the loading flag is the pagination mutex.
	items, more, err := c.LoadNext(context.Background())
	if items != nil || !more || err != nil {
		t.Errorf("concurrent call: items=%v more=%v err=%v", items, more, err)
	}

	close(release)
	select {
	case res := <-first:
		if res.err != nil || len(res.items) != 1 {
			t.Errorf("first fetch: %d items, err=%v", len(res.items), res.err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for first fetch")
	}
}

func TestFeedClient_ErrorSoftStops(t *testing.T) {
	ts := feedTestServer(t)

	// Wrong key: 401 is an error and pagination stops.
	c := NewFeedClient(ts.URL, "wedding", "wrong", ts.Client())
	if _, _, err := c.LoadNext(context.Background()); err == nil {
		t.Fatal("expected error for rejected key")
	}

	// Subsequent calls are no-ops rather than retries.
	items, more, err := c.LoadNext(context.Background())
	if items != nil || more || err != nil {
		t.Errorf("after soft stop: items=%v more=%v err=%v", items, more, err)
	}
}
