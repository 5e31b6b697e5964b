// Package erpclient implements the gateway to the ERP's HTTP API: the
// credential cache guarding every call, the method-header wire protocol,
// and the normalization of the ERP's response envelope.
package erpclient

import (
	"errors"
	"strings"
	"time"
)

// Config holds the ERP connection settings.
type Config struct {
	// BaseURL is the ERP server root, without a trailing slash.
	BaseURL string
	// TokenPath is the credential-issuance endpoint path.
	TokenPath string
	// DataPath is the data-processing endpoint path.
	DataPath string
	// Username authenticates the token-issuance call.
	Username string
	// Password authenticates the token-issuance call.
	Password string
	// StoreCode is the default store/location code stamped on records.
	StoreCode string
	// SourceChannel is the source-channel label stamped on records.
	SourceChannel string
	// TokenLifetime is how long an issued credential stays usable.
	TokenLifetime time.Duration
	// RefreshBuffer is subtracted from the lifetime when judging validity,
	// so refresh begins before hard expiry.
	RefreshBuffer time.Duration
	// Timeout is the HTTP client timeout for ERP calls.
	Timeout time.Duration
}

// Errors for ERP client configuration
var (
	ErrConfigMissingBaseURL  = errors.New("erpclient: base url is required")
	ErrConfigMissingUsername = errors.New("erpclient: username is required")
	ErrConfigMissingPassword = errors.New("erpclient: password is required")
	ErrConfigBufferTooLarge  = errors.New("erpclient: refresh buffer must be shorter than token lifetime")
)

// Defaults applied by Validate for unset optional fields.
const (
	DefaultTokenPath     = "/api/v1/token"
	DefaultDataPath      = "/api/v1/data"
	DefaultTokenLifetime = 60 * time.Minute
	DefaultRefreshBuffer = 5 * time.Minute
	DefaultTimeout       = 30 * time.Second
)

// NewConfig creates an ERP client configuration with defaults.
func NewConfig(baseURL, username, password string) *Config {
	return &Config{
		BaseURL:       baseURL,
		TokenPath:     DefaultTokenPath,
		DataPath:      DefaultDataPath,
		Username:      username,
		Password:      password,
		TokenLifetime: DefaultTokenLifetime,
		RefreshBuffer: DefaultRefreshBuffer,
		Timeout:       DefaultTimeout,
	}
}

// Validate checks required fields and fills defaults for optional ones.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if c.Username == "" {
		return ErrConfigMissingUsername
	}
	if c.Password == "" {
		return ErrConfigMissingPassword
	}
	if c.TokenPath == "" {
		c.TokenPath = DefaultTokenPath
	}
	if c.DataPath == "" {
		c.DataPath = DefaultDataPath
	}
	if c.TokenLifetime <= 0 {
		c.TokenLifetime = DefaultTokenLifetime
	}
	if c.RefreshBuffer <= 0 {
		c.RefreshBuffer = DefaultRefreshBuffer
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RefreshBuffer >= c.TokenLifetime {
		return ErrConfigBufferTooLarge
	}
	return nil
}

// TokenURL returns the absolute credential-issuance endpoint.
func (c *Config) TokenURL() string {
	return joinURL(c.BaseURL, c.TokenPath)
}

// DataURL returns the absolute data-processing endpoint.
func (c *Config) DataURL() string {
	return joinURL(c.BaseURL, c.DataPath)
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
