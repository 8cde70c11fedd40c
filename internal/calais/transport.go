package calais

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ppiankov/calais/internal/util"
)

// Response is what a Transport hands back. Error statuses are ordinary responses;
// classifying them is the client's job.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// Transport posts a document to the service. An error means no response was obtained.
type Transport interface {
	Post(ctx context.Context, url string, header http.Header, body []byte) (*Response, error)
}

// TransportConfig configures the default HTTP transport.
type TransportConfig struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	InsecureTLS  bool
	HTTPProxy    string
	HTTPSProxy   string
	NoProxy      string
}

// DefaultTransportConfig returns the settings used when no transport is supplied.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		Timeout:      2 * time.Minute,
		UserAgent:    "calais/0.1 (+https://github.com/ppiankov/calais)",
		MaxBodyBytes: 20 << 20,
	}
}

// HTTPTransport is the net/http implementation of Transport.
type HTTPTransport struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

// NewHTTPTransport creates a transport from cfg.
func NewHTTPTransport(cfg TransportConfig) *HTTPTransport {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultTransportConfig().MaxBodyBytes
	}

	return &HTTPTransport{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy:           util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
				TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureTLS}, //nolint:gosec // opt-in
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
	}
}

// Post sends body to url. The response body is always closed before returning.
func (t *HTTPTransport) Post(ctx context.Context, url string, header http.Header, body []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(respBody)) > t.maxBytes {
		return nil, fmt.Errorf("response exceeds %d bytes", t.maxBytes)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}
