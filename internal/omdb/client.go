// Package omdb resolves movie metadata from the OMDb API.
package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/sync/singleflight"

	"github.com/mmcdole/cinelist/internal/domain"
)

const (
	// DefaultBaseURL is the public OMDb endpoint
	DefaultBaseURL = "https://www.omdbapi.com/"
	defaultTimeout = 15 * time.Second
)

// Client implements domain.DetailResolver against OMDb.
// Resolved metadata is memoized in memory for the life of the client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger

	group   singleflight.Group
	cacheMu sync.RWMutex
	cache   map[string]*domain.Metadata
}

// NewClient creates a new OMDb client. A zero timeout uses the default.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
		cache:  make(map[string]*domain.Metadata),
	}
}

// doRequest performs a GET against the provider and decodes the JSON body into dest
func (c *Client) doRequest(ctx context.Context, query url.Values, dest any) error {
	query.Set("apikey", c.apiKey)
	reqURL := c.baseURL + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	// Never log the key
	query.Del("apikey")
	c.logger.Debug("omdb request", "query", query.Encode())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("omdb request failed", "error", err)
		return &domain.RemoteError{Endpoint: "omdb", Message: err.Error(), Err: domain.ErrUnreachable}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.RemoteError{Endpoint: "omdb", Message: err.Error(), Err: domain.ErrUnreachable}
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("omdb request error", "status", resp.StatusCode, "body", string(body))
		return &domain.RemoteError{
			StatusCode: resp.StatusCode,
			Endpoint:   "omdb",
			Message:    strings.TrimSpace(string(body)),
			Err:        domain.ErrProvider,
		}
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return &domain.RemoteError{
			StatusCode: resp.StatusCode,
			Endpoint:   "omdb",
			Message:    "failed to parse response: " + err.Error(),
			Err:        domain.ErrProvider,
		}
	}
	return nil
}

// providerError classifies an in-band Response:"False" message
func providerError(message string) error {
	err := domain.ErrProvider
	if strings.Contains(strings.ToLower(message), "not found") {
		err = domain.ErrNotFound
	}
	return &domain.RemoteError{StatusCode: http.StatusOK, Endpoint: "omdb", Message: message, Err: err}
}

// Resolve returns full metadata for a title (t=<title>&plot=full).
// Concurrent lookups of the same title share one request.
func (c *Client) Resolve(ctx context.Context, title string) (*domain.Metadata, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.Validationf("title is required")
	}

	c.cacheMu.RLock()
	if meta, ok := c.cache[title]; ok {
		c.cacheMu.RUnlock()
		return meta, nil
	}
	c.cacheMu.RUnlock()

	// The shared fetch is not bound to the first caller, so one caller
	// giving up does not fail the others waiting on it.
	ch := c.group.DoChan(title, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.httpClient.Timeout)
		defer cancel()
		return c.fetch(fetchCtx, title)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Metadata), nil
	case <-ctx.Done():
		return nil, &domain.RemoteError{Endpoint: "omdb", Message: ctx.Err().Error(), Err: domain.ErrUnreachable}
	}
}

func (c *Client) fetch(ctx context.Context, title string) (*domain.Metadata, error) {
	query := url.Values{}
	query.Set("t", title)
	query.Set("plot", "full")

	var resp TitleResponse
	if err := c.doRequest(ctx, query, &resp); err != nil {
		return nil, err
	}
	if !ok(resp.Response) {
		c.logger.Debug("omdb lookup failed", "title", title, "error", resp.Error)
		return nil, providerError(resp.Error)
	}

	meta := MapMetadata(&resp)

	c.cacheMu.Lock()
	c.cache[title] = meta
	c.cacheMu.Unlock()

	return meta, nil
}

// Search returns movie hits for a free-text query (s=<query>&type=movie).
// Hits whose titles fuzzy-match the query come first, closest match leading;
// the remaining hits keep the provider's order.
func (c *Client) Search(ctx context.Context, query string) ([]domain.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.Validationf("search query is required")
	}

	params := url.Values{}
	params.Set("s", query)
	params.Set("type", "movie")

	var resp SearchResponse
	if err := c.doRequest(ctx, params, &resp); err != nil {
		return nil, err
	}
	if !ok(resp.Response) {
		return nil, providerError(resp.Error)
	}

	hits := MapSearchHits(resp.Search)
	c.logger.Debug("omdb search complete", "query", query, "results", len(hits))
	return rankHits(query, hits), nil
}

// rankHits orders hits by fuzzy distance to the query
func rankHits(query string, hits []domain.SearchHit) []domain.SearchHit {
	if len(hits) < 2 {
		return hits
	}

	titles := make([]string, len(hits))
	for i, h := range hits {
		titles[i] = h.Title
	}

	matches := fuzzy.RankFindFold(query, titles)
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].OriginalIndex < matches[j].OriginalIndex
	})

	ranked := make([]domain.SearchHit, 0, len(hits))
	used := make(map[int]bool, len(matches))
	for _, m := range matches {
		ranked = append(ranked, hits[m.OriginalIndex])
		used[m.OriginalIndex] = true
	}
	for i, h := range hits {
		if !used[i] {
			ranked = append(ranked, h)
		}
	}
	return ranked
}

// Forget drops a memoized title so the next Resolve refetches it
func (c *Client) Forget(title string) {
	c.cacheMu.Lock()
	delete(c.cache, title)
	c.cacheMu.Unlock()
}
