package events

// Order lifecycle event types written to the order_events outbox.
const (
	EventOrderCreated              = "order.created"
	EventOrderFulfillmentSubmitted = "order.fulfillment_submitted"
)

// OrderCreatedPayload captures what downstream consumers need about a new order.
type OrderCreatedPayload struct {
	OrderID            string  `json:"order_id"`
	SessionID          string  `json:"session_id"`
	Status             string  `json:"status"`
	Total              int64   `json:"total"`
	Currency           string  `json:"currency"`
	ItemCount          int     `json:"item_count"`
	FulfillmentOrderID *string `json:"fulfillment_order_id,omitempty"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p OrderCreatedPayload) ToMap() map[string]any {
	payload := map[string]any{
		"order_id":   p.OrderID,
		"session_id": p.SessionID,
		"status":     p.Status,
		"total":      p.Total,
		"currency":   p.Currency,
		"item_count": p.ItemCount,
	}
	if p.FulfillmentOrderID != nil {
		payload["fulfillment_order_id"] = *p.FulfillmentOrderID
	}
	return payload
}

// FulfillmentSubmittedPayload is written when an operator re-submits a pending order.
type FulfillmentSubmittedPayload struct {
	OrderID            string `json:"order_id"`
	FulfillmentOrderID string `json:"fulfillment_order_id"`
}

func (p FulfillmentSubmittedPayload) ToMap() map[string]any {
	return map[string]any{
		"order_id":             p.OrderID,
		"fulfillment_order_id": p.FulfillmentOrderID,
	}
}
