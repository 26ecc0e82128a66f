package gateway

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"alidayu/internal/engine/signing"
)

const (
	DefaultVersion = "2.0"

	// TimestampLayout is the layout of the timestamp and end_date parameters.
	TimestampLayout = "2006-01-02 15:04:05"
	QueryDateLayout = "20060102"
)

// DefaultLocation is the gateway's own clock (GMT+8). Timestamps outside
// the freshness window are rejected remotely, so the zone must match it.
var DefaultLocation = time.FixedZone("CST", 8*60*60)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	AppKey     string
	AppSecret  string
	PartnerKey string

	Format      Format
	Version     string
	Secure      bool
	Environment Environment
	SignMethod  signing.Method
	Location    *time.Location
}

// Client is immutable after New and safe for concurrent use.
type Client struct {
	appKey     string
	appSecret  string
	partnerKey string

	baseURL    string
	format     Format
	version    string
	signMethod signing.Method
	location   *time.Location

	http   Doer
	now    func() time.Time
	logger zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.http = d }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New validates cfg and resolves the base URL. It never returns a partially
// configured client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.AppKey == "" {
		return nil, &ConfigurationError{Field: "app_key", Reason: "is required"}
	}
	if cfg.AppSecret == "" {
		return nil, &ConfigurationError{Field: "app_secret", Reason: "is required"}
	}

	env := cfg.Environment
	if env == "" {
		env = EnvSandbox
	}
	baseURL, err := ResolveBaseURL(cfg.Secure, env)
	if err != nil {
		return nil, err
	}

	format, err := ParseFormat(string(cfg.Format))
	if err != nil {
		return nil, err
	}

	method, err := signing.ParseMethod(string(cfg.SignMethod))
	if err != nil {
		return nil, &ConfigurationError{Field: "sign_method", Reason: "unknown value " + string(cfg.SignMethod)}
	}

	c := &Client{
		appKey:     cfg.AppKey,
		appSecret:  cfg.AppSecret,
		partnerKey: cfg.PartnerKey,
		baseURL:    baseURL,
		format:     format,
		version:    cfg.Version,
		signMethod: method,
		location:   cfg.Location,
		http:       &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
		logger:     zerolog.Nop(),
	}
	if c.version == "" {
		c.version = DefaultVersion
	}
	if c.location == nil {
		c.location = DefaultLocation
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Format() Format {
	return c.format
}

func (c *Client) Location() *time.Location {
	return c.location
}

// commonParams returns a fresh parameter set holding the fields every
// call carries.
func (c *Client) commonParams(method string) signing.Params {
	return signing.Params{
		"app_key":     c.appKey,
		"timestamp":   c.now().In(c.location).Format(TimestampLayout),
		"format":      string(c.format),
		"v":           c.version,
		"sign_method": string(c.signMethod),
		"method":      method,
	}
}

func (c *Client) requirePartnerKey() error {
	if c.partnerKey == "" {
		return &ConfigurationError{Field: "partner_key", Reason: "is required for number binding"}
	}
	return nil
}
