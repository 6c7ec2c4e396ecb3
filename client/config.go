package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	productionBaseURL = "https://api.binance.com"
	testnetBaseURL    = "https://testnet.binance.vision"
)

type Config struct {
	APIKey      string
	APISecret   string
	Environment string
	BaseURL     string // overrides the environment's REST endpoint
	ProxyURL    string
	HTTPTimeout time.Duration
	FilterTTL   time.Duration
}

func (c Config) withDefaults() Config {
	out := c
	out.Environment = strings.ToLower(strings.TrimSpace(out.Environment))
	out.BaseURL = strings.TrimRight(strings.TrimSpace(out.BaseURL), "/")
	if out.BaseURL == "" {
		out.BaseURL = productionBaseURL
		if out.Environment == "testnet" {
			out.BaseURL = testnetBaseURL
		}
	}
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = 10 * time.Second
	}
	if out.FilterTTL <= 0 {
		out.FilterTTL = 5 * time.Minute
	}
	out.ProxyURL = strings.TrimSpace(out.ProxyURL)
	return out
}

// NewHTTPClient builds the transport used for every Binance request.
// When a proxy is configured all requests leave through it.
func NewHTTPClient(cfg Config) (*http.Client, error) {
	final := cfg.withDefaults()
	httpClient := &http.Client{Timeout: final.HTTPTimeout}
	if final.ProxyURL == "" {
		return httpClient, nil
	}
	proxyURL, err := url.Parse(final.ProxyURL)
	if err != nil || proxyURL.Host == "" {
		return nil, fmt.Errorf("invalid proxy url %q", final.ProxyURL)
	}
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok || baseTransport == nil {
		return nil, fmt.Errorf("http DefaultTransport is not *http.Transport")
	}
	transport := baseTransport.Clone()
	transport.Proxy = http.ProxyURL(proxyURL)
	httpClient.Transport = transport
	return httpClient, nil
}
