package domain

// EventTypeCheckoutSessionCompleted is the only event type that triggers reconciliation.
const EventTypeCheckoutSessionCompleted = "checkout.session.completed"

// Event is an authenticated payment provider notification.
type Event struct {
	ID   string
	Type string
	// Session is set for checkout.session.* events.
	Session *CheckoutSession
}

// CheckoutSession is the provider's record of a completed purchase. Read-only here.
type CheckoutSession struct {
	ID       string
	Currency string
	Customer Customer
	Shipping Shipping
}

type Customer struct {
	Email string
	Name  string
	Phone string
}

type Shipping struct {
	Name    string
	Address Address
}

type Address struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// LineItem is one purchased entry of a session as reported by the provider.
type LineItem struct {
	ID          string
	Description string
	Quantity    int64
	// AmountTotal is what was actually charged for the line, after discounts.
	AmountTotal int64
	UnitAmount  int64
	Currency    string
	PriceID     string
	Product     ProductRef
}

// ProductRef points at the provider-side product. Metadata is only populated
// when Expanded is true.
type ProductRef struct {
	ID       string
	Metadata map[string]string
	Expanded bool
}
