package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iconidentify/ytgrab/internal/config"
	"github.com/iconidentify/ytgrab/internal/domain"
	"github.com/iconidentify/ytgrab/internal/linkcheck"
)

// maxBodySize bounds how much of a response is read. Metadata payloads are small.
const maxBodySize = 1 << 20

// Client implements Resolver against the HTTP resolution endpoint.
type Client struct {
	// client has no overall timeout; each call derives its own deadline.
	client     *http.Client
	endpoint   string
	timeout    time.Duration
	userAgent  string
	videoParam string
	logger     *slog.Logger
}

// NewClient creates a resolution client from configuration.
func NewClient(cfg config.ResolverConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultResolveTimeout
	}
	videoParam := cfg.VideoParam
	if videoParam == "" {
		videoParam = "mp4"
	}

	return &Client{
		client:     &http.Client{},
		endpoint:   cfg.Endpoint,
		timeout:    timeout,
		userAgent:  cfg.UserAgent,
		videoParam: videoParam,
		logger:     slog.Default(),
	}
}

// SetLogger sets the logger used for per-request reporting.
func (c *Client) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.client = hc
}

// errorPayload is the body the endpoint sends with non-2xx responses.
type errorPayload struct {
	Error string `json:"error"`
}

// Resolve fetches metadata for rawURL. The whole round trip, including
// reading the body, must finish within the configured timeout.
func (c *Client) Resolve(ctx context.Context, rawURL string, format domain.Format) (*domain.VideoInfo, error) {
	start := time.Now()
	videoID, _ := linkcheck.VideoID(rawURL)
	log := c.logger.With("video_id", videoID, "format", format.String())

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.RequestURL(rawURL, format), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %v: %w", err, domain.ErrUnreachable)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		err = c.classify(ctx, "send request", err)
		log.Warn("resolve failed", "error", err, "duration", time.Since(start))
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err == nil && ctx.Err() != nil {
		// Deadline fired after the body arrived; the response is stale.
		err = ctx.Err()
	}
	if err != nil {
		err = c.classify(ctx, "read response", err)
		log.Warn("resolve failed", "status", resp.StatusCode, "error", err, "duration", time.Since(start))
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var payload errorPayload
		_ = json.Unmarshal(body, &payload)
		log.Info("resolve rejected by backend",
			"status", resp.StatusCode,
			"message", payload.Error,
			"duration", time.Since(start),
		)
		return nil, &domain.BackendError{
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(payload.Error),
		}
	}

	var info domain.VideoInfo
	if err := json.Unmarshal(body, &info); err != nil {
		log.Warn("resolve returned undecodable body", "status", resp.StatusCode, "error", err)
		return nil, fmt.Errorf("decode response: %v: %w", err, domain.ErrUnreachable)
	}

	if !info.HasDownloadURL() {
		log.Info("resolve returned no download link", "status", resp.StatusCode, "duration", time.Since(start))
		return nil, domain.ErrNoDownloadLink
	}

	log.Info("resolve succeeded",
		"status", resp.StatusCode,
		"ext", info.Ext,
		"filesize", info.Size(),
		"duration", time.Since(start),
	)
	return &info, nil
}

// RequestURL builds the endpoint URL for a resolution request.
func (c *Client) RequestURL(rawURL string, format domain.Format) string {
	sep := "?"
	if strings.Contains(c.endpoint, "?") {
		sep = "&"
	}
	return c.endpoint + sep +
		"url=" + url.QueryEscape(strings.TrimSpace(rawURL)) +
		"&format=" + url.QueryEscape(c.wireFormat(format))
}

func (c *Client) wireFormat(format domain.Format) string {
	if format == domain.FormatAudio {
		return "audio"
	}
	return c.videoParam
}

// classify maps a transport-level failure to a timeout or unreachable error.
func (c *Client) classify(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: no response within %s: %w", op, c.timeout, domain.ErrTimeout)
	}
	return fmt.Errorf("%s: %v: %w", op, err, domain.ErrUnreachable)
}
