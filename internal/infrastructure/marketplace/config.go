package marketplace

import "errors"

// Config holds configuration for the marketplace seller API.
type Config struct {
	// BaseURL is the base URL of the marketplace API
	BaseURL string
	// Token is the seller API credential sent on every call
	Token string
	// TimeoutSeconds is the per-request HTTP timeout
	TimeoutSeconds int
	// PageLimit is the page size used when listing orders
	PageLimit int
}

// Errors for marketplace configuration
var (
	ErrConfigMissingBaseURL = errors.New("marketplace: base URL is required")
	ErrConfigMissingToken   = errors.New("marketplace: token is required")
)

// Validate validates the marketplace configuration and fills defaults.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if c.Token == "" {
		return ErrConfigMissingToken
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 40
	}
	if c.PageLimit <= 0 {
		c.PageLimit = 1000
	}
	return nil
}
