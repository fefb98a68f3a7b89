package receipt

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/order/domain"
)

// Branding is the storefront identity printed on every receipt.
type Branding struct {
	StoreName string
	LogoURL   string
	Footer    string
}

type Renderer interface {
	RenderHTML(order *domain.Order) (string, error)
}

type view struct {
	Brand    Branding
	Order    *domain.Order
	Items    []itemView
	Address  []string
	Currency string
}

type itemView struct {
	domain.Item
	OptionText string
}

const receiptHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Receipt {{.Order.ID}}</title>
  <style>
    body { margin: 0; padding: 32px; font-family: "Helvetica Neue", Arial, sans-serif; color: #111827; }
    .receipt { max-width: 720px; margin: 0 auto; }
    .header { display: flex; justify-content: space-between; border-bottom: 2px solid #111827; padding-bottom: 16px; margin-bottom: 24px; }
    .header img { max-height: 48px; }
    .label { color: #6b7280; text-transform: uppercase; letter-spacing: 0.04em; font-size: 11px; }
    table { width: 100%; border-collapse: collapse; font-size: 14px; }
    th, td { padding: 10px; border-bottom: 1px solid #e5e7eb; text-align: left; }
    td img { max-height: 40px; }
    .options { color: #6b7280; font-size: 12px; }
    .totals { margin-top: 12px; text-align: right; font-size: 16px; }
    .footer { border-top: 1px solid #e5e7eb; margin-top: 24px; padding-top: 16px; font-size: 12px; color: #6b7280; }
  </style>
</head>
<body>
  <div class="receipt">
    <div class="header">
      <div>
        {{if .Brand.LogoURL}}<img src="{{.Brand.LogoURL}}" alt="{{.Brand.StoreName}}" />{{end}}
        <div><strong>{{.Brand.StoreName}}</strong></div>
      </div>
      <div>
        <div class="label">Order</div>
        <div><strong>{{.Order.ID}}</strong></div>
        <div>Status: {{.Order.Status}}</div>
        <div>Placed: {{formatDate .Order.CreatedAt}}</div>
        {{if .Order.FulfillmentOrderID}}<div>Fulfillment: {{deref .Order.FulfillmentOrderID}}</div>{{end}}
      </div>
    </div>

    <div>
      <div class="label">Ship to</div>
      {{range .Address}}<div>{{.}}</div>{{end}}
      {{if .Order.Email}}<div>{{.Order.Email}}</div>{{end}}
    </div>

    <table>
      <thead>
        <tr><th></th><th>Item</th><th>Qty</th><th>Unit</th><th>Amount</th></tr>
      </thead>
      <tbody>
        {{range .Items}}
        <tr>
          <td>{{if .Image}}<img src="{{.Image}}" alt="" />{{end}}</td>
          <td>{{.Title}}{{if .OptionText}}<div class="options">{{.OptionText}}</div>{{end}}</td>
          <td>{{.Quantity}}</td>
          <td>{{formatMoney .UnitPrice $.Currency}}</td>
          <td>{{formatMoney .Amount $.Currency}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>
    <div class="totals">Total <strong>{{formatMoney .Order.Total .Currency}}</strong></div>

    {{if .Brand.Footer}}<div class="footer">{{.Brand.Footer}}</div>{{end}}
  </div>
</body>
</html>
`

type HTMLRenderer struct {
	brand Branding
	tpl   *template.Template
}

func NewRenderer(brand Branding) Renderer {
	if strings.TrimSpace(brand.StoreName) == "" {
		brand.StoreName = "Receipt"
	}
	funcs := template.FuncMap{
		"formatMoney": formatMoney,
		"formatDate":  formatDate,
		"deref":       deref,
	}
	return &HTMLRenderer{
		brand: brand,
		tpl:   template.Must(template.New("receipt").Funcs(funcs).Parse(receiptHTMLTemplate)),
	}
}

func (r *HTMLRenderer) RenderHTML(order *domain.Order) (string, error) {
	if order == nil {
		return "", domain.ErrNotFound
	}

	items := make([]itemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, itemView{Item: item, OptionText: optionText(item.Options)})
	}

	var buf bytes.Buffer
	err := r.tpl.Execute(&buf, view{
		Brand:    r.brand,
		Order:    order,
		Items:    items,
		Address:  addressLines(order),
		Currency: order.Currency,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func addressLines(order *domain.Order) []string {
	s := order.Shipping
	name := s.Name
	if name == "" {
		name = order.Name
	}
	locality := strings.TrimSpace(strings.Join(nonEmpty(s.City, s.State, s.PostalCode), " "))
	return nonEmpty(name, s.Line1, s.Line2, locality, s.Country)
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func optionText(options map[string]string) string {
	if len(options) == 0 {
		return ""
	}
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+options[k])
	}
	return strings.Join(parts, ", ")
}

func formatMoney(amount int64, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USD"
	}
	return fmt.Sprintf("%s %.2f", currency, float64(amount)/100.0)
}

func formatDate(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.UTC().Format("2006-01-02")
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
