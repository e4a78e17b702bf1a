package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Getter retrieves the full body at a URL.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

const userAgent = "packwiz-parent"

type Client struct {
	HTTPClient *http.Client
	UserAgent  string
}

func New() *Client {
	return &Client{
		HTTPClient: http.DefaultClient,
		UserAgent:  userAgent,
	}
}

// TransportError is a request that never produced a response.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

type StatusError struct {
	URL        string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf(
		"GET %s: http %d: %s", e.URL, e.StatusCode, e.Message,
	)
}

func (c *Client) Get(
	ctx context.Context, url string,
) ([]byte, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, url, nil,
	)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseStatusError(url, resp)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	return body, nil
}

func parseStatusError(url string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &StatusError{
		URL:        url,
		StatusCode: resp.StatusCode,
		Message:    msg,
	}
}
