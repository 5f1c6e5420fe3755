// Package rest implements the chat REST collaborators: the room directory,
// the history loader and the read tracker. All calls are bearer-token
// authenticated against the API described by the server's /v1/chat routes.
package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/wonguwon/jwt-login/pkg/chaterr"
)

const requestTimeout = 10 * time.Second

// Client is the shared bearer-authenticated HTTP transport.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *zap.Logger
}

func NewClient(baseURL, token string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: requestTimeout},
		log:     logger,
	}
}

// do issues one API call and decodes the JSON response body into out when
// out is non-nil. Transport failures map to ErrNetwork, 404 to ErrNotFound
// and 400 to ErrValidation so callers can classify with errors.Is.
func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return chaterr.Network("build request %s %s: %v", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return chaterr.Network("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return chaterr.NotFound("%s %s: %s", method, path, resp.Status)
	case resp.StatusCode == http.StatusBadRequest:
		return chaterr.Validation("%s %s: %s", method, path, resp.Status)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Warn("api request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return chaterr.Network("%s %s: %s", method, path, resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return chaterr.Network("decode %s %s response: %v", method, path, err)
	}
	return nil
}
