// Package gemini implements the advisory collaborator on top of the Gemini
// generateContent REST API, asking for JSON constrained by a response
// schema.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"rafiqe/internal/advisory"
)

const (
	// DefaultBaseURL is the public Gemini API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel generates plans, advice and suggestions.
	DefaultModel = "gemini-2.5-flash"

	// DefaultImageModel renders goal images.
	DefaultImageModel = "gemini-2.5-flash-image"

	// DefaultTimeout bounds a single HTTP exchange.
	DefaultTimeout = 60 * time.Second

	apiKeyHeader = "x-goog-api-key"
	contentType  = "application/json"
)

// Options configures a Client.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	ImageModel string
	HTTPClient *http.Client

	// TransportRetries is how often a request is re-sent after a
	// connection-level failure. Throttling and server errors are left to
	// the gateway's backoff.
	TransportRetries int

	Logger *zap.SugaredLogger
}

// Client talks to the Gemini API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	imageModel string
	http       *retryablehttp.Client
	log        *zap.SugaredLogger
}

var _ advisory.Advisor = (*Client)(nil)

// New creates a Client. An API key is required.
func New(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.Wrap(advisory.ErrNotConfigured, "gemini API key is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.ImageModel == "" {
		opts.ImageModel = DefaultImageModel
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = opts.HTTPClient
	retryClient.RetryMax = opts.TransportRetries
	retryClient.RetryWaitMin = 200 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.CheckRetry = transportOnlyRetry
	retryClient.Logger = &retryLogger{log: opts.Logger}

	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		model:      opts.Model,
		imageModel: opts.ImageModel,
		http:       retryClient,
		log:        opts.Logger,
	}, nil
}

// transportOnlyRetry re-sends requests that never got a response. Any HTTP
// response, including 429 and 5xx, is handed back to the caller.
func transportOnlyRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err == nil {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// generate posts a generateContent request and returns the decoded response.
func (c *Client) generate(ctx context.Context, model string, req *generateRequest) (*generateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request")
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", contentType)
	httpReq.Header.Set(apiKeyHeader, c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(err, "gemini request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}

	c.log.Debugw("gemini response", "model", model, "status", resp.StatusCode,
		"duration", time.Since(start), "size", len(respBody))

	if resp.StatusCode != http.StatusOK {
		return nil, handleHTTPError(resp.StatusCode, respBody)
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, errors.Wrap(advisory.ErrMalformedResponse, err.Error())
	}
	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return nil, errors.Wrapf(advisory.ErrMalformedResponse, "prompt blocked: %s", out.PromptFeedback.BlockReason)
	}
	return &out, nil
}

// generateJSON runs a schema-constrained text request and decodes the
// returned JSON into result.
func (c *Client) generateJSON(ctx context.Context, prompt string, schema *Schema, result interface{}) error {
	resp, err := c.generate(ctx, c.model, &generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: contentType,
			ResponseSchema:   schema,
		},
	})
	if err != nil {
		return err
	}

	text := resp.text()
	if text == "" {
		return errors.Wrap(advisory.ErrMalformedResponse, "empty response text")
	}
	if err := json.Unmarshal([]byte(text), result); err != nil {
		return errors.Wrap(advisory.ErrMalformedResponse, err.Error())
	}
	return nil
}

// handleHTTPError maps an error status onto the advisory error taxonomy.
func handleHTTPError(statusCode int, body []byte) error {
	var errResp struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	_ = json.Unmarshal(body, &errResp)

	msg := errResp.Error.Message
	if msg == "" {
		msg = http.StatusText(statusCode)
	}

	apiErr := &advisory.APIError{StatusCode: statusCode, Message: msg}
	switch {
	case statusCode == http.StatusTooManyRequests || errResp.Error.Status == "RESOURCE_EXHAUSTED":
		apiErr.Err = advisory.ErrRateLimited
	case statusCode >= http.StatusInternalServerError:
		apiErr.Err = advisory.ErrServerError
	}
	return apiErr
}

// retryLogger adapts zap to the retryablehttp leveled logger.
type retryLogger struct {
	log *zap.SugaredLogger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, keysAndValues...)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warnw(msg, keysAndValues...)
}
