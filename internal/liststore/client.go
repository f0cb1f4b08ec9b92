// Package liststore talks to the remote watchlist backend and normalizes
// its two endpoint sets and heterogeneous response shapes into one contract.
package liststore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/cinelist/internal/domain"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultMaxRetries = 2
	baseRetryDelay    = 500 * time.Millisecond
	defaultTopK       = 5
)

// Config contains the settings needed to reach the backend
type Config struct {
	BaseURL    string
	Timeout    time.Duration // Zero uses the default
	MaxRetries int           // Retries on retryable 5xx; negative disables
}

// Client implements domain.ListStore over the backend's HTTP API
type Client struct {
	baseURL    string
	httpClient *http.Client
	resolver   domain.DetailResolver
	maxRetries int
	logger     *slog.Logger

	// sleepFunc waits between retries; replaced in tests
	sleepFunc func(ctx context.Context, d time.Duration) error
}

// NewClient creates a new backend client. Adds resolve metadata through resolver.
func NewClient(cfg Config, resolver domain.DetailResolver, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := cfg.MaxRetries
	if retries == 0 {
		retries = defaultMaxRetries
	}
	if retries < 0 {
		retries = 0
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		resolver:   resolver,
		maxRetries: retries,
		logger:     logger,
		sleepFunc:  sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// doRequest performs a request against the endpoint set selected by target.
// Retryable 5xx responses are retried with exponential backoff; every backend
// operation is idempotent by title so a retried write is safe.
func (c *Client) doRequest(ctx context.Context, method string, target domain.Target, path string, query url.Values) ([]byte, error) {
	if target.Mode == domain.ModeAuthenticated && target.Token == "" {
		return nil, &domain.RemoteError{Endpoint: path, Message: "no credential for authenticated call", Err: domain.ErrUnauthorized}
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL = reqURL + "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseRetryDelay * time.Duration(1<<(attempt-1)) // 500ms, 1s, 2s
			c.logger.Debug("retrying request", "attempt", attempt, "delay", delay, "path", path)
			if err := c.sleepFunc(ctx, delay); err != nil {
				return nil, &domain.RemoteError{Endpoint: path, Message: err.Error(), Err: domain.ErrUnreachable}
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if target.Mode == domain.ModeAuthenticated {
			req.Header.Set("Authorization", "Bearer "+target.Token)
		}

		c.logger.Debug("backend request", "method", method, "path", path, "mode", target.Mode, "attempt", attempt)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error("backend request failed", "path", path, "error", err)
			return nil, &domain.RemoteError{Endpoint: path, Message: err.Error(), Err: domain.ErrUnreachable}
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, &domain.RemoteError{Endpoint: path, Message: "failed to read response: " + err.Error(), Err: domain.ErrUnreachable}
		}

		if sentinel := classifyStatus(resp.StatusCode); sentinel != nil {
			lastErr = &domain.RemoteError{
				StatusCode: resp.StatusCode,
				Endpoint:   path,
				Message:    errorText(body),
				Err:        sentinel,
			}
			if isRetryable(resp.StatusCode) {
				c.logger.Warn("backend server error, will retry",
					"status", resp.StatusCode,
					"attempt", attempt,
					"maxRetries", c.maxRetries,
					"path", path,
				)
				continue
			}
			c.logger.Error("backend request error", "status", resp.StatusCode, "path", path, "body", string(body))
			return nil, lastErr
		}

		// The backend reports most failures in-band with a 200
		if env, ok := decodeEnvelope(body); ok && env.Error != "" {
			c.logger.Debug("backend in-band error", "path", path, "error", env.Error)
			return nil, &domain.RemoteError{
				StatusCode: resp.StatusCode,
				Endpoint:   path,
				Message:    env.Error,
				Err:        classifyMessage(env.Error),
			}
		}

		return body, nil
	}

	c.logger.Error("backend request failed after retries", "error", lastErr, "path", path)
	return nil, lastErr
}

// decodeEnvelope parses body as an object response; arrays return false
func decodeEnvelope(body []byte) (*envelope, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, false
	}
	return &env, true
}

// errorText extracts the most useful message from an error body
func errorText(body []byte) string {
	if env, ok := decodeEnvelope(body); ok {
		if env.Error != "" {
			return env.Error
		}
		if d := env.detailText(); d != "" {
			return d
		}
	}
	return strings.TrimSpace(string(body))
}

func titleQuery(title string) url.Values {
	query := url.Values{}
	query.Set("movie_name", title)
	return query
}

func requireTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", domain.Validationf("title is required")
	}
	return title, nil
}

// List returns every stored title for the target.
// A non-2xx answer is a hard failure; an empty list is a valid result.
func (c *Client) List(ctx context.Context, target domain.Target) ([]domain.MovieEntry, error) {
	path := endpointsFor(target.Mode).list
	body, err := c.doRequest(ctx, http.MethodGet, target, path, nil)
	if err != nil {
		return nil, err
	}

	var movies []MovieDTO
	if err := json.Unmarshal(body, &movies); err != nil {
		return nil, &domain.RemoteError{
			StatusCode: http.StatusOK,
			Endpoint:   path,
			Message:    "unexpected list response: " + err.Error(),
			Err:        domain.ErrServerError,
		}
	}

	c.logger.Debug("listed movies", "mode", target.Mode, "count", len(movies))
	return MapEntries(movies), nil
}

// Add resolves metadata for title from the provider, then asks the store to
// keep it. Provider failures, an invalid credential and an unreachable
// store propagate. Any other store rejection, duplicates included, is a soft
// success: the resolved entry is returned with the outcome recorded.
func (c *Client) Add(ctx context.Context, target domain.Target, title string) (domain.AddResult, error) {
	title, err := requireTitle(title)
	if err != nil {
		return domain.AddResult{}, err
	}

	meta, err := c.resolver.Resolve(ctx, title)
	if err != nil {
		return domain.AddResult{}, fmt.Errorf("resolve %q: %w", title, err)
	}

	result := domain.AddResult{Entry: domain.EntryFromMetadata(meta), Outcome: domain.AddStored}

	path := endpointsFor(target.Mode).add
	body, err := c.doRequest(ctx, http.MethodPost, target, path, titleQuery(title))
	switch {
	case err == nil:
		if env, ok := decodeEnvelope(body); ok && env.Movie != nil {
			result.Entry = mergeStored(result.Entry, *env.Movie)
		}
		return result, nil

	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrUnreachable):
		return domain.AddResult{}, err

	case errors.Is(err, domain.ErrAlreadyExists):
		result.Outcome = domain.AddDuplicate
	default:
		result.Outcome = domain.AddRejected
	}

	result.Cause = err
	c.logger.Warn("store rejected add, returning resolved metadata",
		"title", title, "mode", target.Mode, "error", err)
	return result, nil
}

// mergeStored overlays fields only the store knows onto a resolved entry
func mergeStored(entry domain.MovieEntry, stored MovieDTO) domain.MovieEntry {
	if stored.Title != "" {
		entry.Title = stored.Title
	}
	if stored.Genre != "" {
		entry.Genre = stored.Genre
	}
	entry.Notes = stored.Notes
	entry.Watched = stored.Watched
	entry.Rating = stored.Rating
	return entry
}

// Remove deletes title from the store. Failures always propagate.
func (c *Client) Remove(ctx context.Context, target domain.Target, title string) error {
	title, err := requireTitle(title)
	if err != nil {
		return err
	}
	_, err = c.doRequest(ctx, http.MethodDelete, target, endpointsFor(target.Mode).remove, titleQuery(title))
	return err
}

// UpdateNotes replaces the stored notes for title
func (c *Client) UpdateNotes(ctx context.Context, target domain.Target, title, notes string) error {
	title, err := requireTitle(title)
	if err != nil {
		return err
	}
	query := titleQuery(title)
	query.Set("notes", notes)
	_, err = c.doRequest(ctx, http.MethodPut, target, endpointsFor(target.Mode).updateNotes, query)
	return err
}

// MarkWatched flags title as watched in the store
func (c *Client) MarkWatched(ctx context.Context, target domain.Target, title string) error {
	title, err := requireTitle(title)
	if err != nil {
		return err
	}
	_, err = c.doRequest(ctx, http.MethodPut, target, endpointsFor(target.Mode).markWatched, titleQuery(title))
	return err
}

// Recommend asks the backend for titles matching a free-text description.
// A topK of zero or less uses the backend's default of five.
func (c *Client) Recommend(ctx context.Context, query string, topK int) ([]domain.Recommendation, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.Validationf("a description is required")
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("top_k", strconv.Itoa(topK))

	// Recommendations are not scoped to a collection
	body, err := c.doRequest(ctx, http.MethodGet, domain.Target{Mode: domain.ModeGuest}, recommendPath, params)
	if err != nil {
		return nil, err
	}

	var resp recommendResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &domain.RemoteError{
			StatusCode: http.StatusOK,
			Endpoint:   recommendPath,
			Message:    "unexpected recommend response: " + err.Error(),
			Err:        domain.ErrServerError,
		}
	}

	recs := MapRecommendations(resp.Recommendations)
	c.logger.Debug("fetched recommendations", "query", query, "count", len(recs), "message", resp.Message)
	return recs, nil
}
