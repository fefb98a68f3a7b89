package stripe

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	paymentdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/payment/domain"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Verifier authenticates Stripe webhook deliveries.
type Verifier struct {
	secret    string
	tolerance time.Duration
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret:    strings.TrimSpace(secret),
		tolerance: webhook.DefaultTolerance,
	}
}

func (v *Verifier) ConstructEvent(payload []byte, signature string) (*paymentdomain.Event, error) {
	if v.secret == "" {
		return nil, paymentdomain.ErrMissingSecret
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		if isSignatureError(err) {
			return nil, fmt.Errorf("%w: %v", paymentdomain.ErrInvalidSignature, err)
		}
		return nil, fmt.Errorf("%w: %v", paymentdomain.ErrInvalidPayload, err)
	}

	out := &paymentdomain.Event{
		ID:   event.ID,
		Type: string(event.Type),
	}
	if strings.HasPrefix(out.Type, "checkout.session.") {
		if event.Data == nil || len(event.Data.Raw) == 0 {
			return nil, paymentdomain.ErrInvalidPayload
		}
		session, err := decodeSession(event.Data.Raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", paymentdomain.ErrInvalidPayload, err)
		}
		out.Session = session
	}
	return out, nil
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}

type addressPayload struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type shippingPayload struct {
	Name    string          `json:"name"`
	Address *addressPayload `json:"address"`
}

// sessionPayload decodes only the session fields the reconciler reads. Newer
// API versions moved shipping details under collected_information.
type sessionPayload struct {
	ID              string `json:"id"`
	Currency        string `json:"currency"`
	CustomerEmail   string `json:"customer_email"`
	CustomerDetails *struct {
		Email   string          `json:"email"`
		Name    string          `json:"name"`
		Phone   string          `json:"phone"`
		Address *addressPayload `json:"address"`
	} `json:"customer_details"`
	ShippingDetails      *shippingPayload `json:"shipping_details"`
	CollectedInformation *struct {
		ShippingDetails *shippingPayload `json:"shipping_details"`
	} `json:"collected_information"`
}

func decodeSession(raw json.RawMessage) (*paymentdomain.CheckoutSession, error) {
	var payload sessionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	if strings.TrimSpace(payload.ID) == "" {
		return nil, errors.New("missing session id")
	}

	session := &paymentdomain.CheckoutSession{
		ID:       payload.ID,
		Currency: payload.Currency,
		Customer: paymentdomain.Customer{Email: payload.CustomerEmail},
	}
	if details := payload.CustomerDetails; details != nil {
		if details.Email != "" {
			session.Customer.Email = details.Email
		}
		session.Customer.Name = details.Name
		session.Customer.Phone = details.Phone
	}

	shipping := payload.ShippingDetails
	if info := payload.CollectedInformation; info != nil && info.ShippingDetails != nil {
		shipping = info.ShippingDetails
	}
	if shipping != nil {
		session.Shipping.Name = shipping.Name
		if shipping.Address != nil {
			session.Shipping.Address = toAddress(*shipping.Address)
		}
	}
	return session, nil
}

func toAddress(a addressPayload) paymentdomain.Address {
	return paymentdomain.Address{
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}
