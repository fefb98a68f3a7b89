package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	catalogdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/catalog/domain"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/checkout/domain"
	fulfillmentdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/fulfillment/domain"
	orderdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/order/domain"
	paymentdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/payment/domain"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedSession() *paymentdomain.Event {
	return &paymentdomain.Event{
		ID:   "evt_1",
		Type: paymentdomain.EventTypeCheckoutSessionCompleted,
		Session: &paymentdomain.CheckoutSession{
			ID:       "cs_test_1",
			Currency: "usd",
			Customer: paymentdomain.Customer{Email: "buyer@example.com", Name: "Ada Lovelace", Phone: "+15125550100"},
			Shipping: paymentdomain.Shipping{
				Name: "Ada Lovelace",
				Address: paymentdomain.Address{
					Line1: "1 Main St", City: "Austin", State: "TX", PostalCode: "78701", Country: "US",
				},
			},
		},
	}
}

func teeLine() paymentdomain.LineItem {
	return paymentdomain.LineItem{
		ID: "li_tee", Description: "Tour Tee", Quantity: 2, UnitAmount: 2500, AmountTotal: 4500, PriceID: "price_tee",
		Product: paymentdomain.ProductRef{
			ID:       "prod_stripe_tee",
			Expanded: true,
			Metadata: map[string]string{
				"productId": "prod_tee",
				"slug":      "tour-tee",
				"options":   `{"size":"M"}`,
				"imageUrl":  "https://cdn.example.com/tee.png",
			},
		},
	}
}

func posterLine() paymentdomain.LineItem {
	return paymentdomain.LineItem{
		ID: "li_poster", Description: "Poster", Quantity: 1, UnitAmount: 1500, AmountTotal: 1500, PriceID: "price_poster",
		Product: paymentdomain.ProductRef{ID: "prod_stripe_poster"},
	}
}

func seedCatalog(h *harness) {
	h.catalog.products["tour-tee"] = catalogdomain.Product{
		ID: "prod_tee", Slug: "tour-tee", Title: "Tour Tee", GelatoProductUID: "apparel_tee",
		PrintAreas: []catalogdomain.PrintArea{
			{Name: "front", ImageURL: "https://cdn.example.com/front.png"},
			{Name: "back"},
		},
	}
	h.catalog.products["poster"] = catalogdomain.Product{
		ID: "prod_poster", Slug: "poster", Title: "Poster", GelatoProductUID: "poster_a2",
	}
	h.gateway.metadata["price_poster"] = map[string]string{"productId": "prod_poster", "slug": "poster"}
}

func TestIngestAllItemsResolvedAndSubmitted(t *testing.T) {
	h := newHarness()
	seedCatalog(h)
	h.verifier.event = completedSession()
	h.gateway.items = []paymentdomain.LineItem{teeLine(), posterLine()}

	err := h.service().IngestWebhook(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)

	require.Len(t, h.fulfillment.requests, 1)
	req := h.fulfillment.requests[0]
	assert.Equal(t, "cs_test_1", req.OrderReferenceID)
	assert.Equal(t, "USD", req.Currency)
	assert.Equal(t, "Ada Lovelace", req.Recipient.Name)
	assert.Equal(t, "buyer@example.com", req.Recipient.Email)
	assert.Equal(t, "TX", req.Recipient.State)
	require.Len(t, req.Items, 2)
	assert.Equal(t, fulfillmentdomain.Item{
		ItemReferenceID: "li_tee",
		ProductUID:      "apparel_tee",
		Quantity:        2,
		Attributes:      map[string]string{"size": "M"},
		Files:           []fulfillmentdomain.File{{Type: "front", URL: "https://cdn.example.com/front.png"}},
	}, req.Items[0])
	assert.Equal(t, "poster_a2", req.Items[1].ProductUID)
	assert.Empty(t, req.Items[1].Files)

	// Expanded products are read inline; only the poster needed a price lookup.
	assert.Equal(t, 1, h.gateway.metaCalls)

	require.Len(t, h.orders.orders, 1)
	order := h.orders.orders[0]
	assert.Equal(t, orderdomain.StatusSubmitted, order.Status)
	require.NotNil(t, order.FulfillmentOrderID)
	assert.Equal(t, "gel_123", *order.FulfillmentOrderID)
	require.Len(t, order.Items, 2)
	assert.Equal(t, orderdomain.Item{
		ProductID: "prod_tee", Title: "Tour Tee", Slug: "tour-tee", Quantity: 2, UnitPrice: 2500, Amount: 4500,
		Options: map[string]string{"size": "M"}, Image: "https://cdn.example.com/tee.png",
	}, order.Items[0])
	assert.Equal(t, int64(6000), order.Total)
	assert.Equal(t, "USD", order.Currency)
	assert.Equal(t, "78701", order.Shipping.PostalCode)
}

func TestIngestItemWithoutMetadataStillRecorded(t *testing.T) {
	h := newHarness()
	h.verifier.event = completedSession()
	h.gateway.items = []paymentdomain.LineItem{{
		ID: "li_manual", Description: "Manual add", Quantity: 1, AmountTotal: 999, PriceID: "price_manual",
		Product: paymentdomain.ProductRef{ID: "prod_manual", Expanded: true, Metadata: map[string]string{}},
	}}

	require.NoError(t, h.service().IngestWebhook(context.Background(), []byte("{}"), "sig"))

	assert.Empty(t, h.fulfillment.requests)
	require.Len(t, h.orders.orders, 1)
	order := h.orders.orders[0]
	assert.Equal(t, orderdomain.StatusPending, order.Status)
	assert.Nil(t, order.FulfillmentOrderID)
	require.Len(t, order.Items, 1)
	assert.Empty(t, order.Items[0].ProductID)
	assert.Equal(t, "Manual add", order.Items[0].Title)
	assert.Equal(t, int64(999), order.Items[0].UnitPrice)
	assert.Equal(t, int64(999), order.Total)
}

func TestIngestPartialResolutionSubmitsResolvedLinesOnly(t *testing.T) {
	h := newHarness()
	seedCatalog(h)
	h.verifier.event = completedSession()
	missing := teeLine()
	missing.ID = "li_missing"
	missing.Product.Metadata = map[string]string{"slug": "retired-hoodie", "productId": "prod_hoodie"}
	noUID := posterLine()
	h.catalog.products["poster"] = catalogdomain.Product{Slug: "poster", Title: "Poster"}
	h.gateway.items = []paymentdomain.LineItem{teeLine(), missing, noUID}

	require.NoError(t, h.service().IngestWebhook(context.Background(), []byte("{}"), "sig"))

	require.Len(t, h.fulfillment.requests, 1)
	require.Len(t, h.fulfillment.requests[0].Items, 1)
	assert.Equal(t, "li_tee", h.fulfillment.requests[0].Items[0].ItemReferenceID)

	order := h.orders.orders[0]
	assert.Equal(t, orderdomain.StatusSubmitted, order.Status)
	require.Len(t, order.Items, 3)
	assert.Equal(t, "prod_hoodie", order.Items[1].ProductID)
	assert.Equal(t, "retired-hoodie", order.Items[1].Slug)
	assert.Equal(t, int64(4500+4500+1500), order.Total)
}

func TestIngestMetadataLookupFailureSkipsLine(t *testing.T) {
	h := newHarness()
	seedCatalog(h)
	h.verifier.event = completedSession()
	h.gateway.metaErr = errors.New("stripe unavailable")
	h.gateway.items = []paymentdomain.LineItem{posterLine()}

	require.NoError(t, h.service().IngestWebhook(context.Background(), []byte("{}"), "sig"))

	assert.Empty(t, h.fulfillment.requests)
	require.Len(t, h.orders.orders, 1)
	assert.Equal(t, orderdomain.StatusPending, h.orders.orders[0].Status)
}

func TestIngestInvalidSignature(t *testing.T) {
	h := newHarness()
	h.verifier.err = fmt.Errorf("%w: bad header", paymentdomain.ErrInvalidSignature)

	err := h.service().IngestWebhook(context.Background(), []byte("{}"), "bad")
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidSignature)
	assert.Zero(t, h.contentStoreCalls())
	assert.Empty(t, h.fulfillment.requests)
	assert.Zero(t, h.gateway.listCalls)
}

func TestIngestFeatureDisabled(t *testing.T) {
	h := newHarness()
	h.cfg.Payments.WebhooksEnabled = false
	h.verifier.event = completedSession()

	err := h.service().IngestWebhook(context.Background(), []byte("{}"), "sig")
	assert.ErrorIs(t, err, domain.ErrFeatureDisabled)
	assert.Zero(t, h.verifier.calls)
	assert.Zero(t, h.contentStoreCalls())
	assert.Empty(t, h.fulfillment.requests)
}

func TestIngestIgnoresOtherEventTypes(t *testing.T) {
	for _, eventType := range []string{"checkout.session.expired", "payment_intent.succeeded", "some.future.event"} {
		t.Run(eventType, func(t *testing.T) {
			h := newHarness()
			h.verifier.event = &paymentdomain.Event{ID: "evt_x", Type: eventType}

			require.NoError(t, h.service().IngestWebhook(context.Background(), []byte("{}"), "sig"))
			assert.Zero(t, h.contentStoreCalls())
			assert.Zero(t, h.gateway.listCalls)
			assert.Empty(t, h.fulfillment.requests)
		})
	}
}

func TestIngestFulfillmentFailureRecordsPending(t *testing.T) {
	h := newHarness()
	seedCatalog(h)
	h.verifier.event = completedSession()
	h.gateway.items = []paymentdomain.LineItem{teeLine()}
	h.fulfillment.err = errors.New("gelato: status 503")

	require.NoError(t, h.service().IngestWebhook(context.Background(), []byte("{}"), "sig"))

	require.Len(t, h.fulfillment.requests, 1)
	require.Len(t, h.orders.orders, 1)
	assert.Equal(t, orderdomain.StatusPending, h.orders.orders[0].Status)
	assert.Nil(t, h.orders.orders[0].FulfillmentOrderID)
}

func TestIngestPersistenceFailureStillAcknowledges(t *testing.T) {
	h := newHarness()
	seedCatalog(h)
	h.verifier.event = completedSession()
	h.gateway.items = []paymentdomain.LineItem{teeLine()}
	h.orders.createErr = errors.New("database is down")

	require.NoError(t, h.service().IngestWebhook(context.Background(), []byte("{}"), "sig"))
	assert.Equal(t, 1, h.orders.creates)
	assert.Len(t, h.fulfillment.requests, 1)
}

func TestIngestLineItemFetchFailureIsHandlerFailure(t *testing.T) {
	h := newHarness()
	h.verifier.event = completedSession()
	h.gateway.listErr = errors.New("stripe timeout")

	err := h.service().IngestWebhook(context.Background(), []byte("{}"), "sig")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stripe timeout")
	assert.Zero(t, h.orders.creates)
	assert.Empty(t, h.fulfillment.requests)
}

func TestIngestRedeliveryDeduplicated(t *testing.T) {
	h := newHarness()
	seedCatalog(h)
	h.verifier.event = completedSession()
	h.gateway.items = []paymentdomain.LineItem{teeLine()}
	svc := h.service()

	require.NoError(t, svc.IngestWebhook(context.Background(), []byte("{}"), "sig"))
	require.NoError(t, svc.IngestWebhook(context.Background(), []byte("{}"), "sig"))

	assert.Len(t, h.orders.orders, 1)
	assert.Len(t, h.fulfillment.requests, 1)
	assert.Equal(t, 1, h.gateway.listCalls)
}

func TestIngestRedeliveryWithoutDedupeDuplicates(t *testing.T) {
	h := newHarness()
	h.cfg.Checkout.DedupeSessions = false
	seedCatalog(h)
	h.verifier.event = completedSession()
	h.gateway.items = []paymentdomain.LineItem{teeLine()}
	svc := h.service()

	require.NoError(t, svc.IngestWebhook(context.Background(), []byte("{}"), "sig"))
	require.NoError(t, svc.IngestWebhook(context.Background(), []byte("{}"), "sig"))

	assert.Len(t, h.orders.orders, 2)
	assert.Len(t, h.fulfillment.requests, 2)
}

func TestIngestConcurrentDeliveryInProgress(t *testing.T) {
	h := newHarness()
	h.locker = heldLocker{}
	h.verifier.event = completedSession()

	err := h.service().IngestWebhook(context.Background(), []byte("{}"), "sig")
	assert.ErrorIs(t, err, domain.ErrDeliveryInProgress)
	assert.Zero(t, h.gateway.listCalls)
	assert.Zero(t, h.orders.creates)
}

func TestResubmitPendingOrder(t *testing.T) {
	h := newHarness()
	seedCatalog(h)
	h.verifier.event = completedSession()
	h.gateway.items = []paymentdomain.LineItem{teeLine()}
	h.fulfillment.err = errors.New("gelato down")
	svc := h.service()

	require.NoError(t, svc.IngestWebhook(context.Background(), []byte("{}"), "sig"))
	pending := h.orders.orders[0]
	require.Equal(t, orderdomain.StatusPending, pending.Status)

	h.fulfillment.err = nil
	h.fulfillment.id = "gel_retry"
	updated, err := svc.Resubmit(context.Background(), pending.ID.String())
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusSubmitted, updated.Status)
	assert.Equal(t, "gel_retry", *updated.FulfillmentOrderID)

	last := h.fulfillment.requests[len(h.fulfillment.requests)-1]
	assert.Equal(t, "cs_test_1", last.OrderReferenceID)
	require.Len(t, last.Items, 1)
	assert.Equal(t, "apparel_tee", last.Items[0].ProductUID)
	assert.Equal(t, map[string]string{"size": "M"}, last.Items[0].Attributes)
	assert.Equal(t, "1 Main St", last.Recipient.Line1)

	_, err = svc.Resubmit(context.Background(), pending.ID.String())
	assert.ErrorIs(t, err, domain.ErrOrderNotPending)
}

func TestResubmitRechecksStatusUnderLock(t *testing.T) {
	h := newHarness()
	seedCatalog(h)
	h.verifier.event = completedSession()
	h.gateway.items = []paymentdomain.LineItem{teeLine()}
	h.fulfillment.err = errors.New("gelato down")
	svc := h.service()

	require.NoError(t, svc.IngestWebhook(context.Background(), []byte("{}"), "sig"))
	live := h.orders.orders[0]
	snapshot := *live
	h.fulfillment.err = nil
	h.fulfillment.requests = nil

	_, err := svc.Resubmit(context.Background(), live.ID.String())
	require.NoError(t, err)
	require.Equal(t, orderdomain.StatusSubmitted, live.Status)

	// A second operator read the order before the first resubmit landed.
	h.orders.stale = []*orderdomain.Order{&snapshot}
	_, err = svc.Resubmit(context.Background(), live.ID.String())
	assert.ErrorIs(t, err, domain.ErrOrderNotPending)
	assert.Len(t, h.fulfillment.requests, 1)
	assert.Empty(t, h.orders.stale)
}

func TestResubmitErrors(t *testing.T) {
	h := newHarness()
	h.verifier.event = completedSession()
	h.gateway.items = []paymentdomain.LineItem{posterLine()}
	svc := h.service()

	_, err := svc.Resubmit(context.Background(), "999")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	// No catalog entry: the order is pending and nothing can be rebuilt.
	require.NoError(t, svc.IngestWebhook(context.Background(), []byte("{}"), "sig"))
	_, err = svc.Resubmit(context.Background(), h.orders.orders[0].ID.String())
	assert.ErrorIs(t, err, domain.ErrNothingToFulfill)
}

func TestOrderTotalIsSumOfChargedAmounts(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("recorded total equals sum of amount_total", prop.ForAll(
		func(amounts []int64, quantities []int64) bool {
			h := newHarness()
			h.verifier.event = completedSession()

			var want int64
			for i, amount := range amounts {
				qty := int64(1)
				if i < len(quantities) {
					qty = quantities[i]
				}
				// Unit amount deliberately disagrees with amount/qty, as with discounts.
				h.gateway.items = append(h.gateway.items, paymentdomain.LineItem{
					ID: fmt.Sprintf("li_%d", i), Quantity: qty, UnitAmount: amount + 7, AmountTotal: amount,
				})
				want += amount
			}

			if err := h.service().IngestWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
				return false
			}
			return len(h.orders.orders) == 1 &&
				h.orders.orders[0].Total == want &&
				len(h.orders.orders[0].Items) == len(amounts)
		},
		gen.SliceOf(gen.Int64Range(0, 1_000_000)),
		gen.SliceOf(gen.Int64Range(1, 10)),
	))

	properties.TestingRun(t)
}
