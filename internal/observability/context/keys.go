package context

import "context"

type contextKey string

const (
	requestIDKey contextKey = "observability_request_id"
	sessionIDKey contextKey = "observability_checkout_session"
	eventIDKey   contextKey = "observability_event_id"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

// WithCheckoutSession tags the context with the payment provider's session id
// so every log line of one delivery can be correlated.
func WithCheckoutSession(ctx context.Context, sessionID string) context.Context {
	if ctx == nil || sessionID == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

func CheckoutSessionFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(sessionIDKey).(string)
	return value
}

func WithEventID(ctx context.Context, eventID string) context.Context {
	if ctx == nil || eventID == "" {
		return ctx
	}
	return context.WithValue(ctx, eventIDKey, eventID)
}

func EventIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(eventIDKey).(string)
	return value
}
