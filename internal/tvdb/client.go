package tvdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"mediatasks/internal/services"
)

// Series is the subset of TheTVDB series record used by mediatasks.
type Series struct {
	ID   int64  `json:"id"`
	Name string `json:"seriesName"`
}

// Credentials identify a TheTVDB user. The zero value authenticates with the
// API key alone, which is enough for series lookups.
type Credentials struct {
	Username  string
	AccountID string
}

func (c Credentials) anonymous() bool {
	return c.Username == "" && c.AccountID == ""
}

// API is the set of TheTVDB calls used by the favorites list and the series
// lookup cache.
type API interface {
	Favorites(ctx context.Context, creds Credentials) ([]string, error)
	AddFavorite(ctx context.Context, creds Credentials, seriesID string) error
	RemoveFavorite(ctx context.Context, creds Credentials, seriesID string) error
	Series(ctx context.Context, seriesID int64) (*Series, error)
}

// Client provides access to TheTVDB v2 API.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
	limiter    *rate.Limiter

	mu     sync.Mutex
	tokens map[Credentials]string
}

var _ API = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero or negative disables
// the limit.
func WithRateLimit(requestsPerSecond int) Option {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// New creates a TheTVDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tvdb", "new client", "tvdb api key required", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tvdb", "new client", "tvdb base url required", nil)
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Inf, 0),
		tokens:     make(map[Credentials]string),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Login exchanges the credentials for a bearer token, reusing a cached token
// when one exists.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	c.mu.Lock()
	token, ok := c.tokens[creds]
	c.mu.Unlock()
	if ok {
		return token, nil
	}

	body := map[string]string{"apikey": c.apiKey}
	if !creds.anonymous() {
		body["username"] = creds.Username
		body["userkey"] = creds.AccountID
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode login: %w", err)
	}

	resp, latency, err := c.send(ctx, http.MethodPost, "/login", "", payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError("login", resp, latency)
	}
	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", services.Wrap(services.ErrRemoteService, "tvdb", "login", "decode response", err)
	}
	if result.Token == "" {
		return "", services.Wrap(services.ErrRemoteService, "tvdb", "login", "empty token", nil)
	}

	c.mu.Lock()
	c.tokens[creds] = result.Token
	c.mu.Unlock()
	return result.Token, nil
}

func (c *Client) forget(creds Credentials) {
	c.mu.Lock()
	delete(c.tokens, creds)
	c.mu.Unlock()
}

// Favorites returns the user's favorite series ids as reported by the API.
// Ids are returned verbatim, including any empty strings.
func (c *Client) Favorites(ctx context.Context, creds Credentials) ([]string, error) {
	var data struct {
		Favorites []string `json:"favorites"`
	}
	if err := c.call(ctx, creds, http.MethodGet, "/user/favorites", "favorites", &data); err != nil {
		return nil, err
	}
	return data.Favorites, nil
}

// AddFavorite adds the series to the user's favorites.
func (c *Client) AddFavorite(ctx context.Context, creds Credentials, seriesID string) error {
	seriesID = strings.TrimSpace(seriesID)
	if seriesID == "" {
		return errors.New("series id must not be empty")
	}
	return c.call(ctx, creds, http.MethodPut, "/user/favorites/"+seriesID, "add favorite", nil)
}

// RemoveFavorite removes the series from the user's favorites.
func (c *Client) RemoveFavorite(ctx context.Context, creds Credentials, seriesID string) error {
	seriesID = strings.TrimSpace(seriesID)
	if seriesID == "" {
		return errors.New("series id must not be empty")
	}
	return c.call(ctx, creds, http.MethodDelete, "/user/favorites/"+seriesID, "remove favorite", nil)
}

// Series fetches a series record. A missing series yields an error marked
// services.ErrNotFound.
func (c *Client) Series(ctx context.Context, seriesID int64) (*Series, error) {
	if seriesID <= 0 {
		return nil, errors.New("series id must be positive")
	}
	var series Series
	path := "/series/" + strconv.FormatInt(seriesID, 10)
	if err := c.call(ctx, Credentials{}, http.MethodGet, path, "series", &series); err != nil {
		return nil, err
	}
	return &series, nil
}

// call performs an authenticated request and unwraps the "data" envelope into
// out when out is non-nil. A 401 drops the cached token and retries once.
func (c *Client) call(ctx context.Context, creds Credentials, method, path, operation string, out any) error {
	for attempt := 0; ; attempt++ {
		token, err := c.Login(ctx, creds)
		if err != nil {
			return err
		}
		resp, latency, err := c.send(ctx, method, path, token, nil)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			drain(resp)
			c.forget(creds)
			continue
		}
		return c.decode(resp, latency, operation, out)
	}
}

func (c *Client) decode(resp *http.Response, latency time.Duration, operation string, out any) error {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(operation, resp, latency)
	}
	if out == nil {
		return nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return services.Wrap(services.ErrRemoteService, "tvdb", operation, "decode response", err)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return services.Wrap(services.ErrRemoteService, "tvdb", operation, "response has no data", nil)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return services.Wrap(services.ErrRemoteService, "tvdb", operation, "decode data", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path, token string, body []byte) (*http.Response, time.Duration, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("wait for rate limit: %w", err)
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.language != "" {
		req.Header.Set("Accept-Language", c.language)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, latency, services.Wrap(services.ErrRemoteService, "tvdb", method+" "+path, fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	return resp, latency, nil
}

func statusError(operation string, resp *http.Response, latency time.Duration) error {
	var payload struct {
		Error string `json:"Error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(raw, &payload)
	message := fmt.Sprintf("tvdb returned %d (latency=%v)", resp.StatusCode, latency)
	if payload.Error != "" {
		message += ": " + payload.Error
	}
	marker := services.ErrRemoteService
	if resp.StatusCode == http.StatusNotFound {
		marker = services.ErrNotFound
	}
	return services.Wrap(marker, "tvdb", operation, message, nil)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
