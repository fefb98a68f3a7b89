package receipt

import (
	"testing"
	"time"

	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/order/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHTML(t *testing.T) {
	fid := "gel_42"
	order := &domain.Order{
		ID:       1234,
		Email:    "fan@example.com",
		Name:     "Ada Fan",
		Currency: "usd",
		Status:   domain.StatusSubmitted,
		Shipping: domain.ShippingAddress{
			Line1:      "1 Main St",
			City:       "Austin",
			State:      "TX",
			PostalCode: "78701",
			Country:    "US",
		},
		Items: []domain.Item{
			{Title: "Tour Tee", Quantity: 2, UnitPrice: 2500, Amount: 5000, Options: map[string]string{"size": "L", "color": "black"}, Image: "https://cdn.example.com/tee.png"},
			{Title: "<script>alert(1)</script>", Quantity: 1, UnitPrice: 1000, Amount: 1000},
		},
		Total:              6000,
		FulfillmentOrderID: &fid,
		CreatedAt:          time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
	}

	html, err := NewRenderer(Branding{StoreName: "Merch Table", Footer: "Thanks for supporting live music"}).RenderHTML(order)
	require.NoError(t, err)

	assert.Contains(t, html, "Merch Table")
	assert.Contains(t, html, "Receipt 1234")
	assert.Contains(t, html, "Ada Fan")
	assert.Contains(t, html, "Austin TX 78701")
	assert.Contains(t, html, "color: black, size: L")
	assert.Contains(t, html, "USD 25.00")
	assert.Contains(t, html, "USD 60.00")
	assert.Contains(t, html, "2026-03-04")
	assert.Contains(t, html, "Fulfillment: gel_42")
	assert.Contains(t, html, "Thanks for supporting live music")
	assert.NotContains(t, html, "<script>alert(1)</script>")
}

func TestRenderHTMLDefaults(t *testing.T) {
	html, err := NewRenderer(Branding{}).RenderHTML(&domain.Order{ID: 1, Status: domain.StatusPending})
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>Receipt</strong>")
	assert.Contains(t, html, "USD 0.00")
	assert.NotContains(t, html, "Fulfillment:")

	_, err = NewRenderer(Branding{}).RenderHTML(nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
