// Package analysis calls the hosted mood, risk and emotion model.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"

	"bounceBackAPI/internal/apperr"
	"bounceBackAPI/internal/types/sentiment"
)

type Client struct {
	url    string
	http   *http.Client
	logger *zap.Logger
}

// New returns a client that signs every request with a Google ID token whose
// audience is the model URL.
func New(ctx context.Context, url string, logger *zap.Logger, opts ...option.ClientOption) (*Client, error) {
	httpClient, err := idtoken.NewClient(ctx, url, opts...)
	if err != nil {
		return nil, fmt.Errorf("create id token client: %w", err)
	}
	httpClient.Timeout = 30 * time.Second
	return NewWithHTTPClient(url, httpClient, logger), nil
}

func NewWithHTTPClient(url string, httpClient *http.Client, logger *zap.Logger) *Client {
	return &Client{url: url, http: httpClient, logger: logger}
}

type request struct {
	Paragraph string `json:"paragraph"`
}

// Analyze scores a paragraph. Any transport or decoding failure is an
// upstream error.
func (c *Client) Analyze(ctx context.Context, paragraph string) (sentiment.Result, error) {
	body, err := json.Marshal(request{Paragraph: paragraph})
	if err != nil {
		return sentiment.Result{}, fmt.Errorf("encode analysis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return sentiment.Result{}, fmt.Errorf("build analysis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return sentiment.Result{}, apperr.Upstream(err, "Text analysis is unavailable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("analysis request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(snippet)))
		return sentiment.Result{}, apperr.Upstream(
			fmt.Errorf("model api returned %d", resp.StatusCode), "Text analysis is unavailable")
	}

	var result sentiment.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return sentiment.Result{}, apperr.Upstream(err, "Text analysis returned an invalid response")
	}

	c.logger.Debug("analysis complete",
		zap.Int("chars", len(paragraph)),
		zap.Duration("took", time.Since(start)))
	return result, nil
}
