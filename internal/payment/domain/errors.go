package domain

import "errors"

var (
	ErrInvalidSignature = errors.New("invalid_signature")
	ErrInvalidPayload   = errors.New("invalid_payload")
	ErrMissingSecret    = errors.New("missing_webhook_secret")
	ErrMissingAPIKey    = errors.New("missing_api_key")
)
