package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	DefaultConnectTimeout = 15 * time.Second
	DefaultReadTimeout    = 10 * time.Second
)

type FetchOptions struct {
	// ConnectTimeout bounds dialing and the TLS handshake.
	ConnectTimeout time.Duration
	// ReadTimeout bounds the wait for response headers and every socket read.
	ReadTimeout time.Duration
	// RetryMax is the number of retries after the first attempt. Zero means a
	// single request.
	RetryMax  int
	UserAgent string
}

// Fetcher performs catalog GET requests. It is safe for concurrent use; each
// call uses its own connection.
type Fetcher struct {
	client    *retryablehttp.Client
	userAgent string
}

func NewFetcher(opts FetchOptions) *Fetcher {
	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}

	dialer := &net.Dialer{Timeout: connectTimeout}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			return &readDeadlineConn{Conn: conn, timeout: readTimeout}, nil
		},
		TLSHandshakeTimeout:   connectTimeout,
		ResponseHeaderTimeout: readTimeout,
		DisableKeepAlives:     true,
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = &http.Client{Transport: transport}
	retryClient.RetryMax = max(opts.RetryMax, 0)
	retryClient.Logger = slog.Default()
	// hand the final response back untouched so a non-200 stays a status error
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "booksearch/dev"
	}
	return &Fetcher{client: retryClient, userAgent: userAgent}
}

// Fetch issues a GET for rawURL and returns the whole body of a 200 response.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := parseAbsolute(rawURL)
	if err != nil {
		return nil, err
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, invalidURL(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if resp != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	switch {
	case resp != nil && resp.StatusCode != http.StatusOK:
		return nil, badStatus(resp.StatusCode)
	case err != nil:
		return nil, networkFailure(err)
	case resp == nil:
		return nil, networkFailure(errors.New("no response"))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkFailure(fmt.Errorf("read body: %w", err))
	}
	return body, nil
}

// readDeadlineConn refreshes the read deadline before every Read so a stalled
// peer fails after timeout regardless of how long the whole body takes.
type readDeadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c *readDeadlineConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}
