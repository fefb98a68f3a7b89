package tracing

import (
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

var sensitiveAttributeKeys = []string{
	"secret",
	"token",
	"api_key",
	"signature",
	"authorization",
	"email",
	"phone",
}

const (
	AttrCheckoutSession = attribute.Key("storefront.checkout_session")
	AttrEventType       = attribute.Key("storefront.event_type")
	AttrLineItems       = attribute.Key("storefront.line_items")
	AttrOrderStatus     = attribute.Key("storefront.order_status")
)

// SafeAttributes drops attributes with sensitive keys.
func SafeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if isSensitiveKey(string(attr.Key)) {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}

// SafeError replaces an error with a type-only error so provider responses
// carrying buyer data never end up in span events.
func SafeError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%T", err)
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, needle := range sensitiveAttributeKeys {
		if strings.Contains(key, needle) {
			return true
		}
	}
	return false
}
