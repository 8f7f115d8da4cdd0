package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client issues raw Bot API requests and hands back the HTTP status untouched,
// so callers can tell an unauthorized token from a server outage.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Response is a raw Bot API reply.
type Response struct {
	StatusCode int
	Body       []byte
}

// NewClient returns a Client for apiURL. The HTTP timeout must exceed the long-poll wait.
func NewClient(apiURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(apiURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

// GetUpdates long-polls for inbound items starting at offset, waiting up to wait on the server.
func (c *Client) GetUpdates(ctx context.Context, offset int64, wait time.Duration) (*Response, error) {
	form := url.Values{}
	form.Set("offset", strconv.FormatInt(offset, 10))
	form.Set("timeout", strconv.Itoa(int(wait/time.Second)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("getUpdates"), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build getUpdates request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("getUpdates: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read getUpdates response: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
