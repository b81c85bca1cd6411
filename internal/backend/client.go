package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kapu/chzzk-recorder-panel/internal/constants"
	"github.com/kapu/chzzk-recorder-panel/internal/domain"
	"github.com/kapu/chzzk-recorder-panel/internal/util"
	"github.com/kapu/chzzk-recorder-panel/pkg/errors"
)

// Client talks to the recorder backend REST surface under /api.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *Client) GetChannels(ctx context.Context) ([]domain.Channel, error) {
	var channels []domain.Channel
	if err := c.doRequest(ctx, http.MethodGet, "/api/channels", nil, &channels); err != nil {
		c.logger.Error("Failed to get channels", zap.Error(err))
		return nil, err
	}
	if channels == nil {
		channels = []domain.Channel{}
	}
	return channels, nil
}

// AddChannel registers a channel. A success:false reply becomes *errors.ServerError.
func (c *Client) AddChannel(ctx context.Context, channelID string) (*domain.CommandResult, error) {
	var result domain.CommandResult
	if err := c.doRequest(ctx, http.MethodPost, "/api/channels", addChannelRequest{ChannelID: channelID}, &result); err != nil {
		c.logger.Error("Failed to add channel",
			zap.Error(err),
			zap.String("channel_id", channelID),
		)
		return nil, err
	}
	if !result.Success {
		return &result, errors.NewServerError("add_channel", result.Error)
	}
	return &result, nil
}

func (c *Client) DeleteChannel(ctx context.Context, channelID string) error {
	var result domain.CommandResult
	path := "/api/channels/" + url.PathEscape(channelID)
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, &result); err != nil {
		c.logger.Error("Failed to delete channel",
			zap.Error(err),
			zap.String("channel_id", channelID),
		)
		return err
	}
	if !result.Success {
		return errors.NewServerError("delete_channel", result.Error)
	}
	return nil
}

func (c *Client) GetConfig(ctx context.Context) (domain.ConfigDocument, error) {
	var doc domain.ConfigDocument
	if err := c.doRequest(ctx, http.MethodGet, "/api/config", nil, &doc); err != nil {
		c.logger.Error("Failed to get config", zap.Error(err))
		return nil, err
	}
	if doc == nil {
		doc = domain.ConfigDocument{}
	}
	return doc, nil
}

// UpdateConfig sends exactly one section: {section: {...}}.
func (c *Client) UpdateConfig(ctx context.Context, section string, values domain.ConfigSection) error {
	body := map[string]domain.ConfigSection{section: values}

	var result domain.CommandResult
	if err := c.doRequest(ctx, http.MethodPut, "/api/config", body, &result); err != nil {
		c.logger.Error("Failed to update config",
			zap.Error(err),
			zap.String("section", section),
		)
		return err
	}
	if !result.Success {
		return errors.NewServerError("update_config", result.Error)
	}
	return nil
}

func (c *Client) GetStatus(ctx context.Context) (domain.StatusSnapshot, error) {
	var payload domain.StatusPayload
	if err := c.doRequest(ctx, http.MethodGet, "/api/status", nil, &payload); err != nil {
		c.logger.Error("Failed to get status", zap.Error(err))
		return domain.StatusSnapshot{}, err
	}
	return payload.Snapshot(), nil
}

func (c *Client) GetLogs(ctx context.Context) ([]domain.LogEntry, error) {
	var resp logsResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/logs", nil, &resp); err != nil {
		c.logger.Error("Failed to get logs", zap.Error(err))
		return nil, err
	}
	return domain.TailLogs(domain.NewLogEntries(resp.Logs), constants.UIConfig.LogTailLines), nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, reqBody, respBody any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return errors.NewAPIError("failed to marshal request", 400, map[string]any{
				"url": url,
			}).WithCause(err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return errors.NewAPIError("failed to create request", 500, map[string]any{
			"url": url,
		}).WithCause(err)
	}

	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewAPIError("request failed", 500, map[string]any{
			"url": url,
		}).WithCause(err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewAPIError("failed to read response", resp.StatusCode, map[string]any{
			"url": url,
		}).WithCause(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// command endpoints answer {success:false,error} with a 4xx/5xx status
		var result domain.CommandResult
		if json.Unmarshal(bodyBytes, &result) == nil && result.Error != "" {
			return errors.NewServerError(method+" "+path, result.Error)
		}
		return errors.NewAPIError(
			fmt.Sprintf("backend API error: %s", resp.Status),
			resp.StatusCode,
			map[string]any{
				"url":  url,
				"body": util.TruncateString(string(bodyBytes), 200),
			},
		)
	}

	if respBody != nil && len(bytes.TrimSpace(bodyBytes)) > 0 {
		if err := json.Unmarshal(bodyBytes, respBody); err != nil {
			return errors.NewAPIError("failed to decode response", 500, map[string]any{
				"url": url,
			}).WithCause(err)
		}
	}

	return nil
}
