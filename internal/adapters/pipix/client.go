package pipix

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"sharegrab/internal/adapters/httpclient"
	"sharegrab/internal/core/domain"
)

const (
	// DefaultDetailEndpoint is the platform's internal cell detail API.
	DefaultDetailEndpoint = "https://is.snssdk.com/bds/cell/detail/"

	// DefaultUserAgent is a mobile Safari UA; the detail API rejects default clients.
	DefaultUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 11_0 like Mac OS X) AppleWebKit/604.1.38 (KHTML, like Gecko) Version/11.0 Mobile/15A372 Safari/604.1"

	// RequestTimeout applies to both the share link request and the detail call.
	RequestTimeout = 5 * time.Second

	msgCannotResolve = "cannot resolve video link"

	// maxDrain bounds how much of the share link response body is discarded.
	maxDrain = 64 << 10
)

var itemIDPattern = regexp.MustCompile(`/item/(\d+)\?`)

// Client implements ports.Resolver for Pipixia share links.
type Client struct {
	redirectClient *http.Client
	apiClient      *http.Client
	detailEndpoint string
	userAgent      string
	logger         *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithDetailEndpoint points the client at another detail API base URL.
func WithDetailEndpoint(endpoint string) Option {
	return func(c *Client) { c.detailEndpoint = endpoint }
}

// WithUserAgent overrides the User-Agent sent to the detail API.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient creates a new Client. Timeout and redirect handling in base are
// overridden; TLS and proxy settings are kept.
func NewClient(base httpclient.Options, logger *slog.Logger, opts ...Option) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	redirectOpts := base
	redirectOpts.Timeout = RequestTimeout
	redirectOpts.DisableRedirects = true
	redirectClient, err := httpclient.New(redirectOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create redirect client: %w", err)
	}

	apiOpts := base
	apiOpts.Timeout = RequestTimeout
	apiOpts.DisableRedirects = false
	apiClient, err := httpclient.New(apiOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}

	c := &Client{
		redirectClient: redirectClient,
		apiClient:      apiClient,
		detailEndpoint: DefaultDetailEndpoint,
		userAgent:      DefaultUserAgent,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Resolve follows the share link to its item id and reads the video details.
func (c *Client) Resolve(ctx context.Context, source domain.SourceType, shareURL string) (domain.Outcome[domain.ResolvedVideo], error) {
	location, err := c.location(ctx, shareURL)
	if err != nil {
		return domain.Outcome[domain.ResolvedVideo]{}, err
	}

	m := itemIDPattern.FindStringSubmatch(location)
	if m == nil {
		c.logger.Error("cannot resolve share link, no item id in Location",
			"type", source, "url", shareURL, "location", location)
		return domain.Failure[domain.ResolvedVideo](msgCannotResolve), nil
	}

	body, err := c.detail(ctx, m[1])
	if err != nil {
		return domain.Outcome[domain.ResolvedVideo]{}, err
	}
	if len(body) == 0 {
		c.logger.Error("cannot resolve share link, empty detail response",
			"type", source, "url", shareURL)
		return domain.Failure[domain.ResolvedVideo](msgCannotResolve), nil
	}

	outcome, err := parseDetail(body)
	if err != nil {
		c.logger.Error("failed to parse detail response",
			"type", source, "url", shareURL, "reason", err.Error(), "response", string(body))
		return domain.Outcome[domain.ResolvedVideo]{}, err
	}
	return outcome, nil
}

// location issues the share link request without following redirects and
// returns the Location header, empty when absent.
func (c *Client) location(ctx context.Context, shareURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, shareURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.redirectClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to request share link: %w", err)
	}
	defer resp.Body.Close()
	// Only the header matters; drain a bounded prefix so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))

	return resp.Header.Get("Location"), nil
}

func (c *Client) detail(ctx context.Context, itemID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.detailURL(itemID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.apiClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request video detail: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read video detail: %w", err)
	}
	return body, nil
}

func (c *Client) detailURL(itemID string) string {
	return fmt.Sprintf("%s?cell_type=1&aid=1319&app_name=super&cell_id=%s",
		c.detailEndpoint, url.QueryEscape(itemID))
}

func parseDetail(body []byte) (domain.Outcome[domain.ResolvedVideo], error) {
	var root map[string]interface{}
	if err := json.Unmarshal(body, &root); err != nil {
		return domain.Outcome[domain.ResolvedVideo]{}, &domain.MissingFieldError{Path: []string{"$"}, Err: err}
	}
	p := payload{root: root}

	code, err := p.intAt("status_code")
	if err != nil {
		return domain.Outcome[domain.ResolvedVideo]{}, err
	}
	if code != 0 {
		message, err := p.stringAt("message")
		if err != nil {
			return domain.Outcome[domain.ResolvedVideo]{}, err
		}
		return domain.Failure[domain.ResolvedVideo](
			fmt.Sprintf("parse failed, error code: %d, reason: %s", code, message)), nil
	}

	item := []string{"data", "data", "item"}
	videoPath := path(item, "origin_video_download", "url_list", "0", "url")
	videoURL, err := p.stringAt(videoPath...)
	if err != nil {
		return domain.Outcome[domain.ResolvedVideo]{}, err
	}
	if u, err := url.Parse(videoURL); err != nil || !u.IsAbs() || u.Host == "" {
		return domain.Outcome[domain.ResolvedVideo]{}, &domain.MissingFieldError{
			Path: videoPath,
			Err:  fmt.Errorf("%w: want absolute URL, got %q", errWrongType, videoURL),
		}
	}
	title, err := p.stringAt(path(item, "content")...)
	if err != nil {
		return domain.Outcome[domain.ResolvedVideo]{}, err
	}
	videoID, err := p.stringAt(path(item, "video", "video_id")...)
	if err != nil {
		return domain.Outcome[domain.ResolvedVideo]{}, err
	}
	author, err := p.stringAt(path(item, "author", "name")...)
	if err != nil {
		return domain.Outcome[domain.ResolvedVideo]{}, err
	}
	cover, err := p.stringAt(path(item, "cover", "url_list", "0", "url")...)
	if err != nil {
		return domain.Outcome[domain.ResolvedVideo]{}, err
	}

	if title == "" {
		title = videoID
	}
	return domain.Success(domain.ResolvedVideo{
		Title:    title,
		MediaURL: videoURL,
		CoverURL: cover,
		Author:   author,
	}), nil
}

func path(prefix []string, rest ...string) []string {
	out := make([]string, 0, len(prefix)+len(rest))
	out = append(out, prefix...)
	return append(out, rest...)
}
