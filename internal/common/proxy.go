package common

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Longest error body kept for logging
const maxErrorBody = 512

var messages = map[int]string{
	http.StatusOK:                   "OK",
	http.StatusBadRequest:           "Bad request",
	http.StatusUnauthorized:         "Unauthorized",
	http.StatusForbidden:            "Forbidden",
	http.StatusNotFound:             "Data not found",
	http.StatusMethodNotAllowed:     "Method not allowed",
	http.StatusUnsupportedMediaType: "Unsupported media type",
	http.StatusTooManyRequests:      "Rate limit exceeded",
	http.StatusInternalServerError:  "Internal server error",
	http.StatusBadGateway:           "Bad gateway",
	http.StatusServiceUnavailable:   "Service unavailable",
	http.StatusGatewayTimeout:       "Gateway timeout",
}

// StatusError is returned by Proxy.Request when the remote answered
// with anything other than 200.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.Code, StatusMessage(e.Code))
}

// StatusMessage returns a short description of an HTTP status code.
func StatusMessage(code int) string {
	if message, ok := messages[code]; ok {
		return message
	}
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "Unknown status"
}

// Proxy performs GET requests with a fixed set of headers and a bounded timeout.
type Proxy struct {
	header map[string]string
	client *http.Client
}

func NewProxy(header map[string]string, timeout time.Duration) *Proxy {
	return &Proxy{header: header, client: &http.Client{Timeout: timeout}}
}

// Request performs a GET on url and returns the body of a 200 response.
// Transport failures are returned as is; any other status becomes a *StatusError.
func (proxy *Proxy) Request(ctx context.Context, url string) ([]byte, error) {

	// Create the request and add the header
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request for %s: %w", url, err)
	}
	for key, value := range proxy.header {
		request.Header.Set(key, value)
	}

	// Perform the request
	res, err := proxy.client.Do(request)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	log.Debug().Msg(fmt.Sprintf("%d %s", res.StatusCode, StatusMessage(res.StatusCode)))

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return nil, &StatusError{Code: res.StatusCode, Body: string(body)}
	}

	// Read the response
	stream, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response for %s: %w", url, err)
	}
	return stream, nil
}
