package stripe

import (
	"context"
	"net/http"
	"strings"

	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/config"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/observability/tracing"
	paymentdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/payment/domain"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

const lineItemPageSize = 100

// Gateway reads checkout line items and prices from the Stripe API.
type Gateway struct {
	api *client.API
}

func NewGateway(secretKey string) *Gateway {
	httpClient := tracing.WrapHTTPClient(&http.Client{Timeout: config.StripeRequestTimeout}, tracing.UpstreamStripe)
	return NewGatewayWithBackends(secretKey, stripe.NewBackends(httpClient))
}

func NewGatewayWithBackends(secretKey string, backends *stripe.Backends) *Gateway {
	return &Gateway{api: client.New(strings.TrimSpace(secretKey), backends)}
}

func (g *Gateway) ListLineItems(ctx context.Context, sessionID string) ([]paymentdomain.LineItem, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(sessionID),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(lineItemPageSize)
	params.AddExpand("data.price.product")

	var items []paymentdomain.LineItem
	it := g.api.CheckoutSessions.ListLineItems(params)
	for it.Next() {
		items = append(items, toLineItem(it.LineItem()))
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (g *Gateway) ProductMetadata(ctx context.Context, priceID string) (map[string]string, error) {
	params := &stripe.PriceParams{}
	params.Context = ctx
	params.AddExpand("product")

	price, err := g.api.Prices.Get(priceID, params)
	if err != nil {
		return nil, err
	}
	if price.Product == nil {
		return nil, nil
	}
	return price.Product.Metadata, nil
}

func toLineItem(li *stripe.LineItem) paymentdomain.LineItem {
	if li == nil {
		return paymentdomain.LineItem{}
	}
	item := paymentdomain.LineItem{
		ID:          li.ID,
		Description: li.Description,
		Quantity:    li.Quantity,
		AmountTotal: li.AmountTotal,
		Currency:    string(li.Currency),
	}
	if li.Price == nil {
		return item
	}
	item.PriceID = li.Price.ID
	item.UnitAmount = li.Price.UnitAmount
	if product := li.Price.Product; product != nil {
		// An unexpanded product decodes to a bare id.
		item.Product = paymentdomain.ProductRef{
			ID:       product.ID,
			Metadata: product.Metadata,
			Expanded: product.Metadata != nil || product.Name != "",
		}
	}
	return item
}
