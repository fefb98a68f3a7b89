package domain

import (
	"context"
	"errors"
)

// OrderRequest is sent once per checkout session and not retained.
type OrderRequest struct {
	// OrderReferenceID correlates the provider order with the checkout session.
	OrderReferenceID    string
	CustomerReferenceID string
	Currency            string
	Recipient           Recipient
	Items               []Item
}

type Recipient struct {
	Name       string
	Email      string
	Phone      string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

type Item struct {
	ItemReferenceID string
	ProductUID      string
	Quantity        int64
	Attributes      map[string]string
	Files           []File
}

// File is one piece of artwork bound to a named print area.
type File struct {
	Type string
	URL  string
}

// Client submits orders to the print-on-demand provider.
type Client interface {
	// CreateOrder returns the provider's order id.
	CreateOrder(ctx context.Context, req OrderRequest) (string, error)
}

var (
	ErrEmptyOrder    = errors.New("empty_fulfillment_order")
	ErrMissingAPIKey = errors.New("missing_fulfillment_api_key")
	ErrMissingID     = errors.New("missing_fulfillment_order_id")
)
