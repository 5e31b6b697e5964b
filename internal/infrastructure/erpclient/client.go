package erpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	syncdomain "github.com/erplink/bridge/internal/domain/sync"
)

// maxResponseSize limits response bodies to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// Request headers of the ERP's wire protocol. Every data call carries the
// method identifier and the current credential; the token-issuance call
// carries the username/password pair instead of a credential.
const (
	headerMethod   = "MethodId"
	headerToken    = "Token"
	headerUsername = "UserName"
	headerPassword = "Password"
)

// xmlTokenPattern extracts a token from the issuance endpoint's legacy
// XML-wrapped response, e.g. `<string xmlns="...">TOKEN</string>`.
var xmlTokenPattern = regexp.MustCompile(`<string[^>]*>\s*([^<]+?)\s*</string>`)

// Ensure Client implements the gateway port
var _ syncdomain.Gateway = (*Client)(nil)

// Client is the HTTP gateway to the ERP. It owns the credential cache and
// wraps every outbound call with a freshly validated credential and a
// method-identifier header. It never retries; retry policy belongs to
// callers.
type Client struct {
	config      *Config
	httpClient  *http.Client
	credentials *CredentialCache
	logger      *zap.Logger
	onRefresh   func(success bool)
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithLogger sets a custom logger for the client.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRefreshObserver registers a callback invoked after every credential
// acquisition attempt. It runs on the calling goroutine and must not block.
func WithRefreshObserver(fn func(success bool)) Option {
	return func(c *Client) {
		c.onRefresh = fn
	}
}

// NewClient creates an ERP client with an empty credential cache. The first
// call acquires a credential lazily.
func NewClient(config *Config, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", syncdomain.ErrInvalidConfig, err)
	}

	client := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.credentials = NewCredentialCache(config.RefreshBuffer, client.fetchToken)
	return client, nil
}

// Credentials exposes the credential cache for explicit invalidation during
// teardown and tests.
func (c *Client) Credentials() *CredentialCache {
	return c.credentials
}

// Call issues one ERP operation. The payload is marshaled as the JSON body;
// the response envelope is normalized into a CallResult. Transport failures
// and credential failures return errors; business rejections and malformed
// bodies return unsuccessful CallResults.
func (c *Client) Call(ctx context.Context, method syncdomain.Method, payload any) (*syncdomain.CallResult, error) {
	credential, err := c.credentials.Get(ctx)
	if err != nil {
		return nil, err
	}

	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("erpclient: failed to marshal %s payload: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.DataURL(), bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("erpclient: failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerMethod, method.String())
	req.Header.Set(headerToken, credential.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", syncdomain.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", syncdomain.ErrTransport, err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", syncdomain.ErrTransport, resp.StatusCode)
	}

	result := parseEnvelope(body)
	c.logger.Debug("erp call completed",
		zap.String("method", method.String()),
		zap.Bool("success", result.Success),
	)
	return result, nil
}

// Probe checks connectivity by forcing a credential acquisition. It reports
// success plus a diagnostic message and never returns an error.
func (c *Client) Probe(ctx context.Context) (bool, string) {
	if _, err := c.credentials.Get(ctx); err != nil {
		return false, err.Error()
	}
	return true, "erp reachable, credential issued"
}

// fetchToken calls the issuance endpoint and builds a fresh credential. Any
// failure, transport or parse, is a credential acquisition error.
func (c *Client) fetchToken(ctx context.Context) (cred *Credential, err error) {
	if c.onRefresh != nil {
		defer func() { c.onRefresh(err == nil) }()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.TokenURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", syncdomain.ErrCredentialAcquisition, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerMethod, syncdomain.MethodGetToken.String())
	req.Header.Set(headerUsername, c.config.Username)
	req.Header.Set(headerPassword, c.config.Password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", syncdomain.ErrCredentialAcquisition, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", syncdomain.ErrCredentialAcquisition, err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", syncdomain.ErrCredentialAcquisition, resp.StatusCode)
	}

	token := extractToken(body)
	if token == "" {
		return nil, fmt.Errorf("%w: no token in issuance response", syncdomain.ErrCredentialAcquisition)
	}

	c.logger.Debug("erp credential issued",
		zap.Duration("lifetime", c.config.TokenLifetime),
	)
	return &Credential{
		Token:    token,
		IssuedAt: time.Now(),
		Lifetime: c.config.TokenLifetime,
	}, nil
}

// extractToken pulls the token out of an issuance response. The primary
// format is the JSON envelope with the token as Data; some ERP deployments
// answer with an XML-wrapped string instead, handled as a fallback.
func extractToken(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Result == resultSuccess {
		var token string
		if err := json.Unmarshal(env.Data, &token); err == nil {
			return strings.TrimSpace(token)
		}
	}
	if match := xmlTokenPattern.FindSubmatch(body); match != nil {
		return strings.TrimSpace(string(match[1]))
	}
	return ""
}
