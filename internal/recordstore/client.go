package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"roadwatch/internal/models"
)

// KeyedEntry pairs a record-store key with its stored entry.
type KeyedEntry struct {
	Key   string              `json:"key"`
	Entry models.HistoryEntry `json:"entry"`
}

type scanResponse struct {
	Records []KeyedEntry `json:"records"`
}

// Client talks to the remote record store: an authoritative,
// prefix-queryable key-value service. Every call carries the caller's
// bearer credential; the client holds no credential state of its own.
//
// Failure mapping: transport errors and 5xx map to models.ErrUnavailable,
// 401 maps to models.ErrUnauthorized. Put is at-most-once: no retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new record store client.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Put stores the entry under the given key, overwriting any previous value
// (last write survives).
func (c *Client) Put(ctx context.Context, credential, key string, entry models.HistoryEntry) error {
	jsonData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	endpoint := c.baseURL + "/kv/" + url.PathEscape(key)
	req, err := http.NewRequestWithContext(ctx, "PUT", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Record store unreachable on put", zap.Error(err))
		return fmt.Errorf("%w: %v", models.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	return c.checkStatus(resp)
}

// ScanByPrefix returns every entry whose key starts with prefix, ordered by
// key. A prefix with no matches yields an empty result, not an error.
func (c *Client) ScanByPrefix(ctx context.Context, credential, prefix string) ([]KeyedEntry, error) {
	endpoint := c.baseURL + "/kv?prefix=" + url.QueryEscape(prefix)
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Record store unreachable on scan", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var result scanResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode scan response: %v", models.ErrUnavailable, err)
	}
	return result.Records, nil
}

func (c *Client) checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return models.ErrUnauthorized
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: record store returned status %d: %s", models.ErrUnavailable, resp.StatusCode, string(body))
	}
}
