// Package catalog is a read-only façade over the Listen Notes podcast API.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"
)

const defaultBaseURL = "https://listen-api.listennotes.com/api/v2"

// PodcastSummary is one search or best-podcasts result.
type PodcastSummary struct {
	ExternalID  string `json:"externalId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
}

// Episode is one playable episode of a podcast.
type Episode struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Audio       string `json:"audio,omitempty"` // Opaque stream URL, passed through untouched
	Image       string `json:"image,omitempty"`
	PubDateMS   int64  `json:"pubDateMs,omitempty"`
}

// PodcastDetail is a full catalog entry with its episodes, most recent first.
type PodcastDetail struct {
	ExternalID  string    `json:"externalId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	Publisher   string    `json:"publisher,omitempty"`
	Episodes    []Episode `json:"episodes"`
}

// Client fetches podcast metadata from the Listen Notes API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// NewClient creates a Listen Notes client with rate limiting. baseURL may be
// empty to use the production API; tests point it at a local server.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     baseURL,
		apiKey:      apiKey,
		rateLimiter: newRateLimiter(200 * time.Millisecond),
	}
}

// Wire shapes of the Listen Notes API.
type (
	lnSearchResponse struct {
		Results []lnSearchResult `json:"results"`
	}
	lnSearchResult struct {
		ID           string `json:"id"`
		TitleOrig    string `json:"title_original"`
		DescOrig     string `json:"description_original"`
		Image        string `json:"image"`
		PublisherOrg string `json:"publisher_original"`
	}
	lnBestResponse struct {
		Podcasts []lnPodcast `json:"podcasts"`
	}
	lnPodcast struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Image       string `json:"image"`
		Publisher   string `json:"publisher"`
	}
	lnPodcastDetail struct {
		lnPodcast
		Episodes []lnEpisode `json:"episodes"`
	}
	lnEpisode struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Audio       string `json:"audio"`
		Image       string `json:"image"`
		PubDateMS   int64  `json:"pub_date_ms"`
	}
)

// Search queries the catalog for podcasts matching the term. Ranking is the
// catalog's own; results are passed through verbatim.
func (c *Client) Search(ctx context.Context, term string) ([]PodcastSummary, error) {
	if term == "" {
		return nil, fmt.Errorf("search term is required")
	}

	endpoint := fmt.Sprintf("%s/search?q=%s&type=podcast", c.baseURL, url.QueryEscape(term))

	var decoded lnSearchResponse
	if err := c.get(ctx, endpoint, &decoded); err != nil {
		return nil, fmt.Errorf("search podcasts: %w", err)
	}

	results := make([]PodcastSummary, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		results = append(results, PodcastSummary{
			ExternalID:  r.ID,
			Title:       r.TitleOrig,
			Description: r.DescOrig,
			Image:       r.Image,
			Publisher:   r.PublisherOrg,
		})
	}
	return results, nil
}

// BestPodcasts fetches the catalog's curated best-podcasts list.
func (c *Client) BestPodcasts(ctx context.Context) ([]PodcastSummary, error) {
	endpoint := c.baseURL + "/best_podcasts"

	var decoded lnBestResponse
	if err := c.get(ctx, endpoint, &decoded); err != nil {
		return nil, fmt.Errorf("fetch best podcasts: %w", err)
	}

	results := make([]PodcastSummary, 0, len(decoded.Podcasts))
	for _, p := range decoded.Podcasts {
		results = append(results, PodcastSummary{
			ExternalID:  p.ID,
			Title:       p.Title,
			Description: p.Description,
			Image:       p.Image,
			Publisher:   p.Publisher,
		})
	}
	return results, nil
}

// GetPodcast fetches a single catalog entry with its episodes, most recent
// first.
func (c *Client) GetPodcast(ctx context.Context, externalID string) (*PodcastDetail, error) {
	if externalID == "" {
		return nil, fmt.Errorf("podcast id is required")
	}

	endpoint := fmt.Sprintf("%s/podcasts/%s?sort=recent_first", c.baseURL, url.PathEscape(externalID))

	var decoded lnPodcastDetail
	if err := c.get(ctx, endpoint, &decoded); err != nil {
		return nil, fmt.Errorf("fetch podcast %s: %w", externalID, err)
	}

	detail := &PodcastDetail{
		ExternalID:  decoded.ID,
		Title:       decoded.Title,
		Description: decoded.Description,
		Image:       decoded.Image,
		Publisher:   decoded.Publisher,
		Episodes:    make([]Episode, 0, len(decoded.Episodes)),
	}
	for _, e := range decoded.Episodes {
		detail.Episodes = append(detail.Episodes, Episode{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			Audio:       e.Audio,
			Image:       e.Image,
			PubDateMS:   e.PubDateMS,
		})
	}
	// The API already sorts with sort=recent_first; keep the guarantee even
	// if a mirror or test server does not.
	sort.SliceStable(detail.Episodes, func(i, j int) bool {
		return detail.Episodes[i].PubDateMS > detail.Episodes[j].PubDateMS
	})

	return detail, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	c.rateLimiter.wait()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-ListenAPI-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch catalog data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("not found")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
