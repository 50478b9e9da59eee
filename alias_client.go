package relay

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// AliasClientConfig describes configuration options for the AliasClient.
type AliasClientConfig struct {
	// RelaySiteOrigin is the origin of the relay website, e.g.
	// "https://relay.firefox.com".
	RelaySiteOrigin string

	// APIToken authenticates the user. It is sent in the form body.
	APIToken string

	// Transport is used as the HTTP transport. If it's nil,
	// http.DefaultTransport will be used.
	Transport http.RoundTripper

	// Timeout holds the timeout for HTTP requests. If it's zero,
	// DefaultHTTPTimeout will be used.
	Timeout time.Duration

	Logger   Logger
	LogLevel LogLevel
}

// AliasClient creates aliases the way the browser extension does.
type AliasClient struct {
	client   *resty.Client
	apiToken string
	url      string
	logger   *leveledLogger
}

// MakeAliasResult is the outcome of MakeRelayAddress. Exactly one of
// Alias and QuotaExceeded is set.
type MakeAliasResult struct {
	Alias *Alias

	// QuotaExceeded is true when the backend refused to create the
	// alias because the free tier limit was reached (HTTP 402). It is
	// not an error: the caller is expected to show an upsell.
	QuotaExceeded bool
}

// NewAliasClient returns a client for the given relay site.
func NewAliasClient(cfg AliasClientConfig) *AliasClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	origin := strings.TrimRight(cfg.RelaySiteOrigin, "/")
	cli := resty.New().
		SetBaseURL(origin).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "relay-go/"+version)
	if cfg.Transport != nil {
		cli.SetTransport(cfg.Transport)
	}
	return &AliasClient{
		client:   cli,
		apiToken: cfg.APIToken,
		url:      origin + "/emails/",
		logger:   newLeveledLogger(cfg.Logger, cfg.LogLevel, nil),
	}
}

// MakeRelayAddress asks the backend for a new random alias. When domain is
// not empty it is recorded as the alias description.
func (c *AliasClient) MakeRelayAddress(ctx context.Context, domain string) (MakeAliasResult, error) {
	if c.apiToken == "" {
		return MakeAliasResult{}, ErrEmptyAPIToken
	}
	form := map[string]string{
		"api_token": c.apiToken,
	}
	if domain != "" {
		form["description"] = domain
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(form).
		Post("/emails/")
	if err != nil {
		return MakeAliasResult{}, fmt.Errorf("make relay address request: %w", err)
	}
	switch code := resp.StatusCode(); {
	case code == http.StatusPaymentRequired:
		c.logger.Infof("alias quota exhausted")
		return MakeAliasResult{QuotaExceeded: true}, nil
	case code >= 200 && code < 300:
		var alias Alias
		if err := json.Unmarshal(resp.Body(), &alias); err != nil {
			return MakeAliasResult{}, fmt.Errorf("make relay address returned invalid body: %w", err)
		}
		c.logger.Debugf("created alias %s", alias.Address)
		return MakeAliasResult{Alias: &alias}, nil
	}
	return MakeAliasResult{}, &FetchError{
		URL:        c.url,
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
	}
}
