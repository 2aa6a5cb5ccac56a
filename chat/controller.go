package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/xiaoyuanzhu-com/webhook-chat/db"
	"github.com/xiaoyuanzhu-com/webhook-chat/log"
	"github.com/xiaoyuanzhu-com/webhook-chat/notifications"
	"github.com/xiaoyuanzhu-com/webhook-chat/webhook"
)

var logger = log.GetLogger("Chat")

const failurePrefix = "❌ Failed to send message: "

// WebhookSettings is the runtime webhook configuration
type WebhookSettings struct {
	URL             string        `json:"url"`
	IgnoreSSLErrors bool          `json:"ignoreSslErrors"`
	Timeout         time.Duration `json:"-"`
}

// SendResult describes one completed exchange
type SendResult struct {
	UserMessage Message          `json:"userMessage"`
	Reply       Message          `json:"reply"`
	Outcome     *webhook.Outcome `json:"outcome,omitempty"`
	Messages    []Message        `json:"messages"`
}

// Options configures a Controller
type Options struct {
	Store      Store
	Notifier   Notifier
	Webhook    WebhookSettings
	Dispatcher DispatcherFactory
	Now        func() time.Time
}

// Controller drives the send pipeline and owns the per-session states
type Controller struct {
	store         Store
	notifier      Notifier
	newDispatcher DispatcherFactory
	now           func() time.Time

	mu         sync.RWMutex
	webhook    WebhookSettings
	dispatcher Dispatcher

	statesMu sync.Mutex
	states   map[string]*State
}

// NewController creates a controller
func NewController(opts Options) *Controller {
	if opts.Dispatcher == nil {
		opts.Dispatcher = NewWebhookDispatcher
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Webhook.Timeout <= 0 {
		opts.Webhook.Timeout = webhook.DefaultTimeout
	}

	c := &Controller{
		store:         opts.Store,
		notifier:      opts.Notifier,
		newDispatcher: opts.Dispatcher,
		now:           opts.Now,
		states:        make(map[string]*State),
	}
	c.applyWebhook(opts.Webhook)
	return c
}

// Webhook returns the current webhook settings
func (c *Controller) Webhook() WebhookSettings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.webhook
}

// SetWebhook replaces the webhook settings. The timeout is kept.
func (c *Controller) SetWebhook(url string, ignoreSSLErrors bool) WebhookSettings {
	settings := c.Webhook()
	settings.URL = strings.TrimSpace(url)
	settings.IgnoreSSLErrors = ignoreSSLErrors
	c.applyWebhook(settings)

	logger.Info().
		Bool("configured", settings.URL != "").
		Bool("ignoreSslErrors", ignoreSSLErrors).
		Msg("webhook settings updated")
	return settings
}

func (c *Controller) applyWebhook(settings WebhookSettings) {
	d := c.newDispatcher(webhook.Options{
		Timeout:         settings.Timeout,
		IgnoreSSLErrors: settings.IgnoreSSLErrors,
	})

	c.mu.Lock()
	c.webhook = settings
	c.dispatcher = d
	c.mu.Unlock()
}

func (c *Controller) current() (WebhookSettings, Dispatcher) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.webhook, c.dispatcher
}

// TestConnection probes the configured webhook, or url when non-empty
func (c *Controller) TestConnection(ctx context.Context, url string) (webhook.ConnectionResult, error) {
	settings, d := c.current()
	if strings.TrimSpace(url) == "" {
		url = settings.URL
	}
	if strings.TrimSpace(url) == "" {
		return webhook.ConnectionResult{}, ErrMissingWebhookURL
	}
	return d.TestConnection(ctx, url)
}

// LoadState returns the in-memory state for sessionID, loading persisted
// messages on first use.
func (c *Controller) LoadState(ctx context.Context, sessionID string) (*State, error) {
	c.statesMu.Lock()
	defer c.statesMu.Unlock()

	if s, ok := c.states[sessionID]; ok {
		return s, nil
	}

	if _, err := c.store.GetSession(sessionID); err != nil {
		if pkgerrors.Is(err, db.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, pkgerrors.Wrap(err, "failed to load session")
	}

	records, err := c.store.ListMessages(sessionID)
	if err != nil {
		logger.Error().Err(err).Str("sessionId", sessionID).Msg("failed to load chat messages")
		c.toast(sessionID, notifications.Toast{
			Title:       "Error",
			Description: "Failed to load chat messages",
			Variant:     notifications.ToastDestructive,
		})
		return nil, pkgerrors.Wrap(err, "failed to load messages")
	}

	messages := make([]Message, 0, len(records))
	for _, r := range records {
		messages = append(messages, messageFromRecord(r))
	}

	s := NewState(sessionID, messages)
	c.states[sessionID] = s
	return s, nil
}

// Messages returns a snapshot of the session's messages
func (c *Controller) Messages(ctx context.Context, sessionID string) ([]Message, error) {
	s, err := c.LoadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.Messages(), nil
}

// Loading reports whether the session has a send in flight
func (c *Controller) Loading(sessionID string) bool {
	c.statesMu.Lock()
	s, ok := c.states[sessionID]
	c.statesMu.Unlock()
	return ok && s.Loading()
}

// forget drops the cached state; it fails when a send is in flight
func (c *Controller) forget(sessionID string) error {
	c.statesMu.Lock()
	defer c.statesMu.Unlock()

	if s, ok := c.states[sessionID]; ok {
		if s.Busy() {
			return ErrSendInProgress
		}
		delete(c.states, sessionID)
	}
	return nil
}

// SendUserMessage appends the user's text, relays it to the webhook and
// appends exactly one reply. Remote failures become reply text; only
// precondition failures are returned as errors.
func (c *Controller) SendUserMessage(ctx context.Context, sessionID, text string) (*SendResult, error) {
	settings, dispatcher := c.current()
	if strings.TrimSpace(settings.URL) == "" {
		c.toast(sessionID, notifications.Toast{
			Title:       "No Webhook URL",
			Description: "Please enter an n8n webhook URL to continue",
			Variant:     notifications.ToastDestructive,
		})
		return nil, ErrMissingWebhookURL
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	state, err := c.LoadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !state.acquire() {
		return nil, ErrSendInProgress
	}
	defer state.release()

	// The exchange completes even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	userMsg := c.newMessage(sessionID, text, SenderUser, KindUser)
	c.appendMessage(state, userMsg)
	c.persist(userMsg, false)

	c.setLoading(state, true)
	defer c.setLoading(state, false)

	placeholder := c.newMessage(sessionID, PlaceholderText, SenderN8N, KindPlaceholder)
	c.appendMessage(state, placeholder)

	outcome, sendErr := c.exchange(ctx, dispatcher, settings.URL, webhook.NewPayload(text, userMsg.Timestamp, sessionID))

	if state.remove(placeholder.ID) {
		c.notify(func(n Notifier) { n.NotifyMessageRemoved(sessionID, placeholder.ID) })
	}

	result := &SendResult{UserMessage: userMsg}
	var content string
	if sendErr != nil {
		logger.Error().Err(sendErr).Str("sessionId", sessionID).Msg("failed to send message")
		content = failurePrefix + sendErr.Error()
		c.toast(sessionID, notifications.Toast{
			Title:       "Send Failed",
			Description: sendErr.Error(),
			Variant:     notifications.ToastDestructive,
		})
	} else {
		content = outcome.Text
		result.Outcome = &outcome
		logger.Debug().
			Str("sessionId", sessionID).
			Str("outcome", string(outcome.Kind)).
			Int("status", outcome.StatusCode).
			Msg("webhook exchange finished")
	}

	reply := c.newMessage(sessionID, content, SenderN8N, KindReply)
	c.appendMessage(state, reply)
	c.persist(reply, true)

	result.Reply = reply
	result.Messages = state.Messages()
	return result, nil
}

// exchange dispatches the payload, turning panics into errors
func (c *Controller) exchange(ctx context.Context, d Dispatcher, url string, payload webhook.Payload) (outcome webhook.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("recovered from panic during webhook dispatch")
			err = fmt.Errorf("%v", r)
		}
	}()
	return d.Send(ctx, url, payload)
}

func (c *Controller) newMessage(sessionID, content string, sender Sender, kind Kind) Message {
	return Message{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Content:   content,
		Sender:    sender,
		Kind:      kind,
		Timestamp: c.now(),
	}
}

func (c *Controller) appendMessage(s *State, m Message) {
	s.append(m)
	c.notify(func(n Notifier) { n.NotifyMessageAppended(s.SessionID(), m) })
}

func (c *Controller) setLoading(s *State, loading bool) {
	s.setLoading(loading)
	c.notify(func(n Notifier) { n.NotifyLoadingChanged(s.SessionID(), loading) })
}

// persist saves m without affecting the in-memory list. Failures are
// logged, and toasted when report is set.
func (c *Controller) persist(m Message, report bool) {
	if !m.Persistent() {
		return
	}

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%v", r)
			}
		}()
		return c.store.SaveMessage(m.SessionID, recordFromMessage(m))
	}()
	if err == nil {
		return
	}

	logger.Error().Err(err).
		Str("sessionId", m.SessionID).
		Str("messageId", m.ID).
		Str("sender", string(m.Sender)).
		Msg("failed to save message")

	if report {
		c.toast(m.SessionID, notifications.Toast{
			Title:       "Save Failed",
			Description: "The reply was shown but could not be saved",
			Variant:     notifications.ToastDestructive,
		})
	}
}

func (c *Controller) toast(sessionID string, t notifications.Toast) {
	c.notify(func(n Notifier) { n.NotifyToast(sessionID, t) })
}

func (c *Controller) notify(fn func(Notifier)) {
	if c.notifier != nil {
		fn(c.notifier)
	}
}
