// Package preview looks up a channel's public profile for the add-channel dialog.
package preview

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coocood/freecache"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kapu/chzzk-recorder-panel/internal/constants"
	"github.com/kapu/chzzk-recorder-panel/internal/metrics"
	"github.com/kapu/chzzk-recorder-panel/internal/util"
	"github.com/kapu/chzzk-recorder-panel/pkg/errors"
)

const breakerName = "preview"

// ErrNotFound means the provider answered but had no profile for the id.
var ErrNotFound = stderrors.New("channel not found")

// ErrUnavailable means the circuit is open and no request was made.
var ErrUnavailable = stderrors.New("preview provider unavailable")

// ErrTooShort means the id is not long enough to be worth a lookup.
var ErrTooShort = stderrors.New("channel id too short for preview")

// Preview is what the dialog shows. ImageURL and Name fall back to
// placeholders when the provider omits them.
type Preview struct {
	ChannelID string `json:"channel_id"`
	Name      string `json:"name"`
	ImageURL  string `json:"image_url"`
	Known     bool   `json:"known"`
}

type channelResponse struct {
	Content *struct {
		ChannelImageURL string `json:"channelImageUrl"`
		ChannelName     string `json:"channelName"`
	} `json:"content"`
}

type Config struct {
	BaseURL     string
	Timeout     time.Duration
	CacheSizeMB int
	CacheTTL    time.Duration
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *freecache.Cache
	ttlSeconds int
	breaker    *util.CircuitBreaker
	metrics    metrics.Recorder
	logger     *zap.Logger
}

func NewClient(cfg Config, recorder metrics.Recorder, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.CacheSizeMB <= 0 {
		cfg.CacheSizeMB = 1
	}
	if recorder == nil {
		recorder = metrics.Noop()
	}

	breaker := util.NewCircuitBreaker(
		breakerName,
		constants.CircuitBreakerConfig.FailureThreshold,
		constants.CircuitBreakerConfig.ResetTimeout,
		logger,
	)
	breaker.OnTransition(func(_, to util.CircuitState) {
		recorder.SetBreakerOpen(breakerName, to == util.CircuitStateOpen)
	})

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      freecache.NewCache(cfg.CacheSizeMB * 1024 * 1024),
		ttlSeconds: max(int(cfg.CacheTTL.Seconds()), 1),
		breaker:    breaker,
		metrics:    recorder,
		logger:     logger,
	}
}

// Eligible reports whether a trimmed id is long enough to preview.
func Eligible(channelID string) bool {
	return len(strings.TrimSpace(channelID)) > constants.UIConfig.PreviewMinIDLength
}

// Lookup returns the provider's profile for channelID. Any error means the
// preview panel should be hidden.
func (c *Client) Lookup(ctx context.Context, channelID string) (*Preview, error) {
	channelID = strings.TrimSpace(channelID)
	if !Eligible(channelID) {
		return nil, ErrTooShort
	}

	if cached, ok := c.fromCache(channelID); ok {
		c.metrics.IncPreviewCache(true)
		return cached, nil
	}
	c.metrics.IncPreviewCache(false)

	if !c.breaker.Allow() {
		return nil, ErrUnavailable
	}

	start := time.Now()
	p, err := c.fetch(ctx, channelID)
	c.metrics.ObserveFetch(metrics.SlicePreview, time.Since(start), err)

	switch {
	case err == nil:
		c.breaker.RecordSuccess()
		c.store(p)
		return p, nil
	case stderrors.Is(err, ErrNotFound):
		// provider answered; not a health problem
		c.breaker.RecordSuccess()
		return nil, err
	default:
		c.breaker.RecordFailure()
		c.logger.Warn("Channel preview failed",
			zap.String("channel_id", channelID),
			zap.Error(err),
		)
		return nil, err
	}
}

func (c *Client) fetch(ctx context.Context, channelID string) (*Preview, error) {
	endpoint := fmt.Sprintf("%s/channels/%s", c.baseURL, url.PathEscape(channelID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.NewServiceError("failed to create request", "preview", "lookup", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewServiceError("request failed", "preview", "lookup", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.NewServiceError("failed to read response", "preview", "lookup", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewAPIError(
			fmt.Sprintf("preview API error: %s", resp.Status),
			resp.StatusCode,
			map[string]any{"channel_id": channelID},
		)
	}

	var decoded channelResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, errors.NewServiceError("failed to decode response", "preview", "lookup", err)
	}
	if decoded.Content == nil {
		return nil, ErrNotFound
	}

	p := &Preview{
		ChannelID: channelID,
		Name:      util.TruncateString(decoded.Content.ChannelName, constants.StringLimits.PreviewName),
		ImageURL:  decoded.Content.ChannelImageURL,
		Known:     decoded.Content.ChannelName != "",
	}
	if p.ImageURL == "" {
		p.ImageURL = constants.UIConfig.DefaultPreviewImage
	}
	return p, nil
}

func (c *Client) fromCache(channelID string) (*Preview, bool) {
	raw, err := c.cache.Get([]byte(channelID))
	if err != nil {
		return nil, false
	}
	var p Preview
	if err := json.Unmarshal(raw, &p); err != nil {
		c.cache.Del([]byte(channelID))
		return nil, false
	}
	return &p, true
}

func (c *Client) store(p *Preview) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.cache.Set([]byte(p.ChannelID), raw, c.ttlSeconds); err != nil {
		c.logger.Debug("Preview cache set failed", zap.Error(err))
	}
}

// BreakerState exposes the circuit state for diagnostics.
func (c *Client) BreakerState() util.CircuitState {
	return c.breaker.State()
}
