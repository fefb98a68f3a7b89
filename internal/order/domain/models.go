package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusPending      Status = "pending"
	StatusSubmitted    Status = "submitted"
	StatusInProduction Status = "in_production"
	StatusShipped      Status = "shipped"
	StatusDelivered    Status = "delivered"
	StatusCanceled     Status = "canceled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusSubmitted, StatusInProduction, StatusShipped, StatusDelivered, StatusCanceled:
		return true
	default:
		return false
	}
}

// StatusFor derives the creation status from the fulfillment outcome.
func StatusFor(fulfillmentOrderID *string) Status {
	if fulfillmentOrderID != nil && *fulfillmentOrderID != "" {
		return StatusSubmitted
	}
	return StatusPending
}

// Order is the receipt of one completed checkout session.
type Order struct {
	ID        snowflake.ID `json:"id"`
	SessionID string       `json:"session_id"`

	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`

	Shipping ShippingAddress `json:"shipping"`

	// Items are snapshots taken at creation and never rewritten.
	Items    []Item `json:"items"`
	Total    int64  `json:"total"`
	Currency string `json:"currency"`

	FulfillmentOrderID *string `json:"fulfillment_order_id"`
	Status             Status  `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ShippingAddress struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Item is a denormalized copy of a purchased line, not a live catalog reference.
type Item struct {
	ProductID string            `json:"product_id"`
	Title     string            `json:"title"`
	Slug      string            `json:"slug"`
	Quantity  int64             `json:"quantity"`
	UnitPrice int64             `json:"unit_price"`
	Amount    int64             `json:"amount"`
	Options   map[string]string `json:"options,omitempty"`
	Image     string            `json:"image,omitempty"`
}
