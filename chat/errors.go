package chat

import "errors"

var (
	ErrMissingWebhookURL = errors.New("webhook URL is not configured")
	ErrEmptyMessage      = errors.New("message is empty")
	ErrInvalidTitle      = errors.New("title is empty")
	ErrLastSession       = errors.New("cannot delete the last chat session")
	ErrSendInProgress    = errors.New("a message is already being sent")
	ErrSessionNotFound   = errors.New("session not found")
)
