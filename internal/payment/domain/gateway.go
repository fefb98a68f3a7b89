package domain

import "context"

// WebhookVerifier authenticates a raw webhook body against its signature header.
type WebhookVerifier interface {
	ConstructEvent(payload []byte, signature string) (*Event, error)
}

// Gateway reads authoritative purchase data from the payment provider.
type Gateway interface {
	ListLineItems(ctx context.Context, sessionID string) ([]LineItem, error)
	// ProductMetadata retrieves the price with its product expanded and
	// returns the product's metadata bag.
	ProductMetadata(ctx context.Context, priceID string) (map[string]string, error)
}
