package webhook

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	pkgerrors "github.com/pkg/errors"
	"github.com/xiaoyuanzhu-com/webhook-chat/log"
)

var logger = log.GetLogger("Webhook")

const (
	JSONContentType = "application/json"
	AcceptHeader    = "application/json, text/plain, */*"

	// Source identifies this interface to the receiving workflow
	Source = "n8n-chat-interface"

	// DefaultTimeout is the hard wall-clock limit for one dispatch
	DefaultTimeout = 30 * time.Second
)

// Display strings for each dispatch outcome
const (
	MsgEmptySuccess     = "✅ Message sent successfully to n8n workflow"
	MsgUnreadableBody   = "✅ Message sent successfully (response body unreadable)"
	msgTimeoutFormat    = "⏱️ Request timed out (%s). Your message may have been processed by n8n."
	MsgCORSBlocked      = "✅ Message sent to n8n workflow!\n\n⚠️ Response blocked by browser CORS policy.\n\nTo receive n8n responses:\n1. Configure CORS in your n8n workflow\n2. Add these headers to your n8n HTTP Response node:\n   - Access-Control-Allow-Origin: *\n   - Access-Control-Allow-Headers: Content-Type\n   - Access-Control-Allow-Methods: POST, OPTIONS"
	msgHTTPErrorFormat  = "❌ Webhook returned error: %d %s"
	msgNetworkErrFormat = "❌ Network error: %s"
)

// ErrMissingURL is returned when no webhook URL is configured
var ErrMissingURL = errors.New("webhook URL is not configured")

// OutcomeKind classifies how a dispatch ended
type OutcomeKind string

const (
	OutcomeReply          OutcomeKind = "reply"
	OutcomeEmptySuccess   OutcomeKind = "empty-success"
	OutcomeUnreadableBody OutcomeKind = "unreadable-body"
	OutcomeHTTPError      OutcomeKind = "http-error"
	OutcomeTimeout        OutcomeKind = "timeout"
	OutcomeCORS           OutcomeKind = "cors"
	OutcomeNetworkError   OutcomeKind = "network-error"
)

// Outcome is the normalized result of one dispatch
type Outcome struct {
	Kind       OutcomeKind `json:"kind"`
	Text       string      `json:"text"`
	StatusCode int         `json:"statusCode,omitempty"`
}

// Payload is the JSON body posted to the webhook
type Payload struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
	ChatID    string `json:"chatId"`
}

// NewPayload builds the wire payload for a user message
func NewPayload(text string, at time.Time, chatID string) Payload {
	return Payload{
		Message:   text,
		Timestamp: FormatTimestamp(at),
		Source:    Source,
		ChatID:    chatID,
	}
}

// FormatTimestamp renders t as ISO-8601 UTC with millisecond precision
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// Options configures a Client
type Options struct {
	Timeout         time.Duration
	IgnoreSSLErrors bool
}

// Client dispatches chat messages to a workflow webhook
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient creates a Client. A zero timeout means DefaultTimeout.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := cleanhttp.DefaultPooledTransport()
	if opts.IgnoreSSLErrors {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		httpClient: &http.Client{Transport: transport},
		timeout:    timeout,
	}
}

// Timeout returns the dispatch deadline
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Send posts payload to url and converts the result into display text.
// Remote failures become an Outcome; an error is only returned when the
// request cannot be built or the URL is empty.
func (c *Client) Send(ctx context.Context, url string, payload Payload) (Outcome, error) {
	if strings.TrimSpace(url) == "" {
		return Outcome{}, ErrMissingURL
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Outcome{}, pkgerrors.Wrap(err, "failed to encode webhook payload")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Outcome{}, pkgerrors.Wrap(err, "failed to build webhook request")
	}
	req.Header.Set("Content-Type", JSONContentType)
	req.Header.Set("Accept", AcceptHeader)

	logger.Debug().
		Str("url", url).
		Str("chat_id", payload.ChatID).
		Msg("sending message to webhook")

	res, err := c.httpClient.Do(req)
	if err != nil {
		outcome := c.transportOutcome(ctx, err)
		logger.Warn().Err(err).Str("kind", string(outcome.Kind)).Msg("webhook request failed")
		return outcome, nil
	}
	defer res.Body.Close()

	logger.Debug().Int("status", res.StatusCode).Msg("webhook responded")

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return Outcome{
			Kind:       OutcomeHTTPError,
			Text:       fmt.Sprintf(msgHTTPErrorFormat, res.StatusCode, statusText(res)),
			StatusCode: res.StatusCode,
		}, nil
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		// The deadline can fire while the body is streaming
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Outcome{Kind: OutcomeTimeout, Text: c.timeoutText(), StatusCode: res.StatusCode}, nil
		}
		logger.Warn().Err(err).Msg("failed to read webhook response body")
		return Outcome{Kind: OutcomeUnreadableBody, Text: MsgUnreadableBody, StatusCode: res.StatusCode}, nil
	}

	if len(raw) == 0 {
		return Outcome{Kind: OutcomeEmptySuccess, Text: MsgEmptySuccess, StatusCode: res.StatusCode}, nil
	}

	return Outcome{Kind: OutcomeReply, Text: Normalize(raw), StatusCode: res.StatusCode}, nil
}

// transportOutcome classifies a failed round-trip
func (c *Client) transportOutcome(ctx context.Context, err error) Outcome {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return Outcome{Kind: OutcomeTimeout, Text: c.timeoutText()}
	case strings.Contains(err.Error(), "CORS"):
		return Outcome{Kind: OutcomeCORS, Text: MsgCORSBlocked}
	default:
		return Outcome{Kind: OutcomeNetworkError, Text: fmt.Sprintf(msgNetworkErrFormat, err.Error())}
	}
}

func (c *Client) timeoutText() string {
	return fmt.Sprintf(msgTimeoutFormat, c.timeout)
}

// statusText returns the reason phrase sent by the server, falling back to
// the canonical text for the code
func statusText(res *http.Response) string {
	prefix := strconv.Itoa(res.StatusCode) + " "
	if text := strings.TrimPrefix(res.Status, prefix); text != res.Status && text != "" {
		return text
	}
	return http.StatusText(res.StatusCode)
}
