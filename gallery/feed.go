package gallery

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// feedResponse mirrors one page of the event media API.
type feedResponse struct {
	Media    []Item `json:"media"`
	HasMore  bool   `json:"has_more"`
	NextPage *int   `json:"next_page"`
}

// FeedClient pages through GET {base}/api/e/{event}?page=N&key=K. Pages are
// fetched strictly one at a time: while a fetch is outstanding LoadNext
// returns immediately, so scroll-triggered loads cannot stack. A failed fetch
// is a soft stop; content already delivered stays valid.
type FeedClient struct {
	base   string
	event  string
	key    string
	client *http.Client

	mu      sync.Mutex
	loading bool
	next    int
	done    bool
}

// NewFeedClient creates a client for one event feed. A nil http client gets a
// default with a 30s timeout.
func NewFeedClient(base, eventPath, key string, client *http.Client) *FeedClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &FeedClient{
		base:   base,
		event:  eventPath,
		key:    key,
		client: client,
		next:   1,
	}
}

// LoadNext fetches the next page. It returns (nil, false, nil) when a fetch
// is already in flight or pagination has finished; more reports whether
// further pages remain.
func (c *FeedClient) LoadNext(ctx context.Context) (items []Item, more bool, err error) {
	c.mu.Lock()
	if c.loading || c.done {
		c.mu.Unlock()
		return nil, !c.done, nil
	}
	c.loading = true
	page := c.next
	c.mu.Unlock()

	resp, err := c.fetchPage(ctx, page)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false

	if err != nil {
		// Soft stop: keep what is rendered, fetch no further.
		c.done = true
		log.Printf("feed: page %d failed, stopping pagination: %v", page, err)
		return nil, false, err
	}

	if resp.NextPage != nil {
		c.next = *resp.NextPage
	} else {
		c.done = true
	}

	// The server hands out site-relative media URLs; resolve them against the
	// base so tiles and the lightbox can fetch directly.
	for i := range resp.Media {
		resp.Media[i].ThumbURL = c.absolutize(resp.Media[i].ThumbURL)
		resp.Media[i].FullURL = c.absolutize(resp.Media[i].FullURL)
	}
	return resp.Media, !c.done, nil
}

func (c *FeedClient) absolutize(u string) string {
	if u == "" || !strings.HasPrefix(u, "/") {
		return u
	}
	return strings.TrimSuffix(c.base, "/") + u
}

// Reset rewinds pagination to the first page. An in-flight fetch is not
// cancelled; if its append races a fresh load, later appends win the final
// order (duplicates are not suppressed).
func (c *FeedClient) Reset() {
	c.mu.Lock()
	c.next = 1
	c.done = false
	c.mu.Unlock()
}

func (c *FeedClient) fetchPage(ctx context.Context, page int) (*feedResponse, error) {
	u := fmt.Sprintf("%s/api/e/%s?page=%d&key=%s",
		c.base, url.PathEscape(c.event), page, url.QueryEscape(c.key))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s page %d: %s", c.event, page, resp.Status)
	}

	var out feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("feed decode: %w", err)
	}
	return &out, nil
}
