package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/JustJay7/case-lookup/internal/apperr"
	"github.com/JustJay7/case-lookup/pkg/logger"
)

// RemoteClient queries an external lookup service over HTTP. The service
// accepts a JSON query and answers {"success": true, "data": {...}} or
// {"success": false, "error": "..."}.
type RemoteClient struct {
	url       string
	userAgent string
	client    *http.Client
	logger    *logger.Logger
}

type remoteResponse struct {
	Success bool    `json:"success"`
	Data    *Result `json:"data"`
	Error   string  `json:"error"`
}

// NewRemoteClient creates a client for the lookup service at url
func NewRemoteClient(url, userAgent string, timeout time.Duration, logger *logger.Logger) *RemoteClient {
	return &RemoteClient{
		url:       url,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

func (c *RemoteClient) Search(ctx context.Context, q Query) (*Result, error) {
	start := time.Now()

	body, err := json.Marshal(q)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to encode query", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("Lookup request failed", "url", c.url, "error", err)
		return nil, apperr.Unavailable(err).WithOp("remote.Search")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, apperr.Unavailable(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, apperr.Unavailable(fmt.Errorf("bad status: %s", resp.Status))
	}

	var decoded remoteResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, apperr.Unavailable(fmt.Errorf("failed to decode response: %w", err))
	}

	if !decoded.Success || decoded.Data == nil {
		msg := decoded.Error
		if msg == "" {
			msg = apperr.MsgNotFound
		}
		c.logger.Info("Lookup returned no case", "query", q.Display(), "status", resp.StatusCode, "reason", msg)
		return nil, apperr.NotFound(msg)
	}

	res := decoded.Data
	if res.SearchDuration == 0 {
		res.SearchDuration = math.Round(time.Since(start).Seconds()*100) / 100
	}
	return res, nil
}
