package service

import (
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/checkout/domain"
	orderdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/order/domain"
	paymentdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/payment/domain"
)

// buildOrder is the record-keeping pass. Every line item produces a snapshot,
// resolved or not.
func buildOrder(session *paymentdomain.CheckoutSession, resolved []resolvedItem, fulfillmentID *string) *orderdomain.Order {
	lines := make([]paymentdomain.LineItem, 0, len(resolved))
	items := make([]orderdomain.Item, 0, len(resolved))
	for _, r := range resolved {
		lines = append(lines, r.Line)
		items = append(items, snapshotItem(r))
	}

	addr := session.Shipping.Address
	return &orderdomain.Order{
		SessionID: session.ID,
		Email:     session.Customer.Email,
		Name:      session.Customer.Name,
		Phone:     session.Customer.Phone,
		Shipping: orderdomain.ShippingAddress{
			Name:       session.Shipping.Name,
			Line1:      addr.Line1,
			Line2:      addr.Line2,
			City:       addr.City,
			State:      addr.State,
			PostalCode: addr.PostalCode,
			Country:    addr.Country,
		},
		Items:              items,
		Total:              orderTotal(lines),
		Currency:           normalizeCurrency(session.Currency),
		FulfillmentOrderID: fulfillmentID,
		Status:             orderdomain.StatusFor(fulfillmentID),
	}
}

func snapshotItem(r resolvedItem) orderdomain.Item {
	line := r.Line
	item := orderdomain.Item{
		Title:     line.Description,
		Quantity:  line.Quantity,
		UnitPrice: line.UnitAmount,
		Amount:    line.AmountTotal,
	}
	if item.UnitPrice == 0 && line.Quantity > 0 {
		item.UnitPrice = line.AmountTotal / line.Quantity
	}
	if r.Meta != nil {
		item.ProductID = r.Meta.ProductID
		item.Slug = r.Meta.Slug
		item.Options = r.Meta.Options
		item.Image = r.Meta.ImageURL
		return item
	}
	// Keep whatever identity the bag carried even without a slug.
	item.ProductID = r.Raw[domain.MetaProductID]
	item.Image = r.Raw[domain.MetaImageURL]
	return item
}

// orderTotal sums what the provider actually charged per line.
func orderTotal(lines []paymentdomain.LineItem) int64 {
	var total int64
	for _, line := range lines {
		total += line.AmountTotal
	}
	return total
}
