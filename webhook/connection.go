package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
)

// ConnectionStatus is the result of a connection test
type ConnectionStatus string

const (
	StatusUnchecked   ConnectionStatus = "unchecked"
	StatusSuccess     ConnectionStatus = "success"
	StatusError       ConnectionStatus = "error"
	StatusCORSLimited ConnectionStatus = "cors-limited"
)

// ConnectionResult describes a connection test for display
type ConnectionResult struct {
	Status  ConnectionStatus `json:"status"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
}

type testPayload struct {
	Test      bool   `json:"test"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// TestConnection posts a probe payload to url and reports reachability.
// A transport failure is reported as cors-limited: a browser blocking the
// response does not mean the workflow did not receive messages.
func (c *Client) TestConnection(ctx context.Context, url string) (ConnectionResult, error) {
	if strings.TrimSpace(url) == "" {
		return ConnectionResult{Status: StatusUnchecked}, ErrMissingURL
	}

	body, err := json.Marshal(testPayload{
		Test:      true,
		Message:   "Connection test from n8n Webhook Chat",
		Timestamp: FormatTimestamp(time.Now()),
	})
	if err != nil {
		return ConnectionResult{Status: StatusUnchecked}, pkgerrors.Wrap(err, "failed to encode connection test")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return ConnectionResult{Status: StatusUnchecked}, pkgerrors.Wrap(err, "failed to build connection test request")
	}
	req.Header.Set("Content-Type", JSONContentType)

	res, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn().Err(err).Str("url", url).Msg("connection test failed")
		return ConnectionResult{
			Status:  StatusCORSLimited,
			Title:   "Connection Test Limited",
			Message: "CORS may block response reading, but webhook should work for sending messages",
		}, nil
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return ConnectionResult{
			Status:  StatusError,
			Title:   "Connection Failed",
			Message: fmt.Sprintf("Failed to connect: %d %s", res.StatusCode, statusText(res)),
		}, nil
	}

	return ConnectionResult{
		Status:  StatusSuccess,
		Title:   "Connection Successful",
		Message: "Successfully connected to the webhook",
	}, nil
}
