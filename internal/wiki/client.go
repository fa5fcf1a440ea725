package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Default client settings.
const (
	// DefaultEndpoint is the MediaWiki Action API endpoint of the English
	// Wikipedia.
	DefaultEndpoint = "https://en.wikipedia.org/w/api.php"

	// DefaultUserAgent identifies the client. Wikimedia asks API clients to
	// send a descriptive User-Agent.
	DefaultUserAgent = "wikirace/1.0 (https://github.com/nao1215/wikirace)"

	// DefaultMaxBodySize bounds the size of a single API response.
	// Rendered markup of the longest articles stays well below this.
	DefaultMaxBodySize = 16 * 1024 * 1024

	// DefaultSearchLimit is the number of results returned by SearchArticles
	// when the caller passes a non-positive limit.
	DefaultSearchLimit = 10
)

// Client talks to the MediaWiki Action API.
//
// Design decision: The client has no timeout of its own. Each call takes a
// context and callers (the session controller) bound it with a deadline,
// so one slow request can be abandoned without tearing down the client.
type Client struct {
	// httpClient performs the requests.
	httpClient *http.Client

	// endpoint is the api.php URL.
	endpoint string

	// userAgent is the User-Agent header to use.
	userAgent string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	// logger receives debug output for each request.
	logger *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithEndpoint sets the api.php endpoint URL.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) ClientOption {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client with the given options.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:  http.DefaultClient,
		endpoint:    DefaultEndpoint,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// apiError is the error object of a MediaWiki response.
type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// redirect is a single redirect hop reported by the API.
type redirect struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// parseResponse is the formatversion=2 response of action=parse.
type parseResponse struct {
	Error *apiError `json:"error"`
	Parse *struct {
		Title     string     `json:"title"`
		PageID    int64      `json:"pageid"`
		Redirects []redirect `json:"redirects"`
		Text      string     `json:"text"`
		Links     []struct {
			NS     int    `json:"ns"`
			Title  string `json:"title"`
			Exists bool   `json:"exists"`
		} `json:"links"`
	} `json:"parse"`
}

// queryPagesResponse is the formatversion=2 response of action=query with
// titles and redirects.
type queryPagesResponse struct {
	Error *apiError `json:"error"`
	Query *struct {
		Normalized []redirect `json:"normalized"`
		Redirects  []redirect `json:"redirects"`
		Pages      []struct {
			PageID  int64  `json:"pageid"`
			NS      int    `json:"ns"`
			Title   string `json:"title"`
			Missing bool   `json:"missing"`
			Invalid bool   `json:"invalid"`
		} `json:"pages"`
	} `json:"query"`
}

// searchResponse is the formatversion=2 response of list=search.
type searchResponse struct {
	Error *apiError `json:"error"`
	Query *struct {
		Search []struct {
			NS    int    `json:"ns"`
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

// FetchArticle fetches the rendered markup and link list of an article.
// Redirects are followed; the canonical title is reported in Article.Title.
func (c *Client) FetchArticle(ctx context.Context, title string) (*Article, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: empty title", ErrNoResult)
	}

	params := url.Values{}
	params.Set("action", "parse")
	params.Set("page", title)
	params.Set("prop", "text|links")
	params.Set("redirects", "1")
	params.Set("disableeditsection", "1")
	params.Set("disabletoc", "1")

	var resp parseResponse
	if err := c.getJSON(ctx, params, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch article %q: %w", title, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("failed to fetch article %q: %w: %s (%s)", title, ErrNoResult, resp.Error.Info, resp.Error.Code)
	}
	if resp.Parse == nil || resp.Parse.Text == "" {
		return nil, fmt.Errorf("failed to fetch article %q: %w: empty page", title, ErrNoResult)
	}

	article := &Article{
		Title:          resp.Parse.Title,
		RequestedTitle: title,
		Markup:         resp.Parse.Text,
		Links:          make([]string, 0, len(resp.Parse.Links)),
		Redirects:      make([]string, 0, len(resp.Parse.Redirects)),
	}
	for _, l := range resp.Parse.Links {
		if l.NS == 0 {
			article.Links = append(article.Links, l.Title)
		}
	}
	for _, r := range resp.Parse.Redirects {
		article.Redirects = append(article.Redirects, r.From)
	}

	c.logger.Debug("fetched article",
		"requested", title,
		"title", article.Title,
		"links", len(article.Links),
		"markup_bytes", len(article.Markup),
	)

	return article, nil
}

// ResolveTitle follows redirects and returns the canonical title of a page.
func (c *Client) ResolveTitle(ctx context.Context, title string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", fmt.Errorf("%w: empty title", ErrNoResult)
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("titles", title)
	params.Set("redirects", "1")

	var resp queryPagesResponse
	if err := c.getJSON(ctx, params, &resp); err != nil {
		return "", fmt.Errorf("failed to resolve title %q: %w", title, err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("failed to resolve title %q: %w: %s (%s)", title, ErrNoResult, resp.Error.Info, resp.Error.Code)
	}
	if resp.Query == nil || len(resp.Query.Pages) == 0 {
		return "", fmt.Errorf("failed to resolve title %q: %w", title, ErrNoResult)
	}

	page := resp.Query.Pages[0]
	if page.Missing || page.Invalid || page.Title == "" {
		return "", fmt.Errorf("failed to resolve title %q: %w: page does not exist", title, ErrNoResult)
	}

	return page.Title, nil
}

// SearchArticles runs a full-text title search and returns matching
// main-namespace titles in relevance order.
func (c *Client) SearchArticles(ctx context.Context, query string, limit int) ([]string, error) {
	if strings.TrimSpace(query) == "" {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", strconv.Itoa(limit))
	params.Set("srnamespace", "0")

	var resp searchResponse
	if err := c.getJSON(ctx, params, &resp); err != nil {
		return nil, fmt.Errorf("failed to search %q: %w", query, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("failed to search %q: %w: %s (%s)", query, ErrNoResult, resp.Error.Info, resp.Error.Code)
	}

	titles := make([]string, 0)
	if resp.Query == nil {
		return titles, nil
	}
	for _, r := range resp.Query.Search {
		titles = append(titles, r.Title)
	}
	return titles, nil
}

// getJSON performs a GET against the API and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, params url.Values, out any) error {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	reqURL := c.endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("content API request",
		"action", params.Get("action"),
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return ErrNoResult
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode API response: %w", err)
	}
	return nil
}
