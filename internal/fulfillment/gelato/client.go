package gelato

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/fulfillment/domain"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/observability/tracing"
	"golang.org/x/time/rate"
)

const (
	ordersPath    = "/v4/orders"
	headerAPIKey  = "X-API-KEY"
	maxErrorBody  = 4 << 10
	shipmentLevel = "normal"
)

// APIError is returned for any non-2xx provider response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gelato: status %d: %s", e.StatusCode, e.Body)
}

type Config struct {
	BaseURL           string
	APIKey            string
	RequestsPerSecond float64
	Timeout           time.Duration
}

// Client talks to the Gelato order API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		http:    tracing.WrapHTTPClient(&http.Client{Timeout: timeout}, tracing.UpstreamGelato),
		limiter: rate.NewLimiter(limit, 1),
	}
}

type fileBody struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type metadataBody struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type itemBody struct {
	ItemReferenceID string            `json:"itemReferenceId"`
	ProductUID      string            `json:"productUid"`
	Quantity        int64             `json:"quantity"`
	Files           []fileBody        `json:"files,omitempty"`
	Attributes      map[string]string `json:"attributes,omitempty"`
	Metadata        []metadataBody    `json:"metadata,omitempty"`
}

type addressBody struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state,omitempty"`
	PostCode     string `json:"postCode"`
	Country      string `json:"country"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
}

type orderBody struct {
	OrderType           string      `json:"orderType"`
	OrderReferenceID    string      `json:"orderReferenceId"`
	CustomerReferenceID string      `json:"customerReferenceId"`
	Currency            string      `json:"currency"`
	ShipmentMethodUID   string      `json:"shipmentMethodUid"`
	Items               []itemBody  `json:"items"`
	ShippingAddress     addressBody `json:"shippingAddress"`
}

type orderResponse struct {
	ID string `json:"id"`
}

func (c *Client) CreateOrder(ctx context.Context, req domain.OrderRequest) (string, error) {
	if c.apiKey == "" {
		return "", domain.ErrMissingAPIKey
	}
	if len(req.Items) == 0 {
		return "", domain.ErrEmptyOrder
	}

	payload, err := json.Marshal(buildOrderBody(req))
	if err != nil {
		return "", err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ordersPath, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(headerAPIKey, c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("gelato: decode response: %w", err)
	}
	if strings.TrimSpace(out.ID) == "" {
		return "", domain.ErrMissingID
	}
	return out.ID, nil
}

func buildOrderBody(req domain.OrderRequest) orderBody {
	first, last := splitName(req.Recipient.Name)
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}
	customerRef := req.CustomerReferenceID
	if customerRef == "" {
		customerRef = req.Recipient.Email
	}

	body := orderBody{
		OrderType:           "order",
		OrderReferenceID:    req.OrderReferenceID,
		CustomerReferenceID: customerRef,
		Currency:            currency,
		ShipmentMethodUID:   shipmentLevel,
		Items:               make([]itemBody, 0, len(req.Items)),
		ShippingAddress: addressBody{
			FirstName:    first,
			LastName:     last,
			AddressLine1: req.Recipient.Line1,
			AddressLine2: req.Recipient.Line2,
			City:         req.Recipient.City,
			State:        req.Recipient.State,
			PostCode:     req.Recipient.PostalCode,
			Country:      req.Recipient.Country,
			Email:        req.Recipient.Email,
			Phone:        req.Recipient.Phone,
		},
	}

	for i, item := range req.Items {
		ref := item.ItemReferenceID
		if ref == "" {
			ref = fmt.Sprintf("%s-%d", req.OrderReferenceID, i+1)
		}
		line := itemBody{
			ItemReferenceID: ref,
			ProductUID:      item.ProductUID,
			Quantity:        item.Quantity,
			Attributes:      item.Attributes,
			Metadata:        attributesMetadata(item.Attributes),
		}
		for _, f := range item.Files {
			line.Files = append(line.Files, fileBody{Type: f.Type, URL: f.URL})
		}
		body.Items = append(body.Items, line)
	}
	return body
}

// attributesMetadata mirrors the chosen options into sorted key/value pairs.
func attributesMetadata(attrs map[string]string) []metadataBody {
	if len(attrs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]metadataBody, 0, len(keys))
	for _, k := range keys {
		out = append(out, metadataBody{Key: k, Value: attrs[k]})
	}
	return out
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
