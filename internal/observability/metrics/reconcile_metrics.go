package metrics

import (
	"strings"

	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/config"
	"github.com/prometheus/client_golang/prometheus"
)

// Webhook outcomes.
const (
	OutcomeDisabled         = "disabled"
	OutcomeInvalidSignature = "invalid_signature"
	OutcomeIgnored          = "ignored"
	OutcomeDuplicate        = "duplicate"
	OutcomeInProgress       = "in_progress"
	OutcomeProcessed        = "processed"
	OutcomeFailed           = "failed"
)

// Line item skip reasons.
const (
	SkipNoMetadata       = "no_metadata"
	SkipMetadataLookup   = "metadata_lookup_failed"
	SkipCatalogMissing   = "catalog_missing"
	SkipCatalogLookup    = "catalog_lookup_failed"
	SkipNoFulfillmentUID = "no_fulfillment_uid"
)

// ReconcileMetrics counts what the checkout reconciler did with each delivery.
type ReconcileMetrics struct {
	webhookEvents          *prometheus.CounterVec
	lineItemsSkipped       *prometheus.CounterVec
	fulfillmentSubmissions *prometheus.CounterVec
	ordersPersisted        *prometheus.CounterVec
}

// NewReconcileMetrics registers the reconciler collectors on registerer.
// A nil registerer falls back to the default registry.
func NewReconcileMetrics(registerer prometheus.Registerer, cfg config.Config) (*ReconcileMetrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "storefront"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	m := &ReconcileMetrics{
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "storefront_webhook_events_total",
			Help:        "Payment webhook deliveries by event type and outcome.",
			ConstLabels: constLabels,
		}, []string{"event_type", "outcome"}),
		lineItemsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "storefront_line_items_skipped_total",
			Help:        "Line items left out of a fulfillment submission.",
			ConstLabels: constLabels,
		}, []string{"reason"}),
		fulfillmentSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "storefront_fulfillment_submissions_total",
			Help:        "Fulfillment order submissions by result.",
			ConstLabels: constLabels,
		}, []string{"result"}),
		ordersPersisted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "storefront_orders_persisted_total",
			Help:        "Order record writes by status and result.",
			ConstLabels: constLabels,
		}, []string{"status", "result"}),
	}

	for _, collector := range []prometheus.Collector{
		m.webhookEvents,
		m.lineItemsSkipped,
		m.fulfillmentSubmissions,
		m.ordersPersisted,
	} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *ReconcileMetrics) WebhookEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	eventType = strings.TrimSpace(eventType)
	if eventType == "" {
		eventType = "unknown"
	}
	m.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

func (m *ReconcileMetrics) LineItemSkipped(reason string) {
	if m == nil {
		return
	}
	m.lineItemsSkipped.WithLabelValues(reason).Inc()
}

func (m *ReconcileMetrics) FulfillmentSubmitted(ok bool) {
	if m == nil {
		return
	}
	m.fulfillmentSubmissions.WithLabelValues(resultLabel(ok)).Inc()
}

func (m *ReconcileMetrics) OrderPersisted(status string, ok bool) {
	if m == nil {
		return
	}
	m.ordersPersisted.WithLabelValues(status, resultLabel(ok)).Inc()
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
