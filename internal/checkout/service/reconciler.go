package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	catalogdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/catalog/domain"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/checkout/domain"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/config"
	fulfillmentdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/fulfillment/domain"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/locks"
	obsctx "github.com/JohnConnorCode/kivett-bednar-sub000/internal/observability/context"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/observability/logger"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/observability/metrics"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/observability/tracing"
	orderdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/order/domain"
	paymentdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/payment/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultCurrency = "USD"

type ServiceParam struct {
	fx.In

	Config      config.Config
	Log         *zap.Logger
	Verifier    paymentdomain.WebhookVerifier
	Gateway     paymentdomain.Gateway
	Catalog     catalogdomain.Service
	Orders      orderdomain.Service
	Fulfillment fulfillmentdomain.Client
	Locker      locks.Locker
	Metrics     *metrics.ReconcileMetrics `optional:"true"`
}

type Service struct {
	log    *zap.Logger
	tracer trace.Tracer

	enabled bool
	dedupe  bool
	lockTTL time.Duration

	verifier    paymentdomain.WebhookVerifier
	gateway     paymentdomain.Gateway
	catalog     catalogdomain.Service
	orders      orderdomain.Service
	fulfillment fulfillmentdomain.Client
	locker      locks.Locker
	metrics     *metrics.ReconcileMetrics
}

func NewService(p ServiceParam) domain.Service {
	lockTTL := p.Config.Checkout.LockTTL
	if lockTTL <= 0 {
		lockTTL = p.Config.MinLockTTL()
	}
	return &Service{
		log:    p.Log.Named("checkout.reconciler"),
		tracer: otel.Tracer(tracing.TracerName + "/checkout"),

		enabled: p.Config.Payments.WebhooksEnabled,
		dedupe:  p.Config.Checkout.DedupeSessions,
		lockTTL: lockTTL,

		verifier:    p.Verifier,
		gateway:     p.Gateway,
		catalog:     p.Catalog,
		orders:      p.Orders,
		fulfillment: p.Fulfillment,
		locker:      p.Locker,
		metrics:     p.Metrics,
	}
}

// resolvedItem pairs a provider line item with whatever catalog identity could
// be recovered for it. Meta and Product are nil when resolution stopped early.
type resolvedItem struct {
	Line    paymentdomain.LineItem
	Raw     map[string]string
	Meta    *domain.ProductMetadata
	Product *catalogdomain.Product
}

// IngestWebhook returns nil for every authenticated delivery whose processing
// got past the event type filter, even when fulfillment or persistence failed.
func (s *Service) IngestWebhook(ctx context.Context, payload []byte, signature string) error {
	if !s.enabled {
		s.metrics.WebhookEvent("", metrics.OutcomeDisabled)
		return domain.ErrFeatureDisabled
	}

	event, err := s.verifier.ConstructEvent(payload, signature)
	if err != nil {
		s.metrics.WebhookEvent("", metrics.OutcomeInvalidSignature)
		s.logger(ctx).Warn("webhook rejected",
			zap.Error(err),
			zap.String("signature", logger.MaskSignature(signature)),
		)
		return err
	}
	ctx = obsctx.WithEventID(ctx, event.ID)

	if event.Type != paymentdomain.EventTypeCheckoutSessionCompleted || event.Session == nil {
		s.metrics.WebhookEvent(event.Type, metrics.OutcomeIgnored)
		s.logger(ctx).Debug("webhook event ignored", zap.String("event_type", event.Type))
		return nil
	}

	session := event.Session
	ctx = obsctx.WithCheckoutSession(ctx, session.ID)
	ctx, span := s.tracer.Start(ctx, "checkout.reconcile", trace.WithAttributes(
		tracing.AttrCheckoutSession.String(session.ID),
		tracing.AttrEventType.String(event.Type),
	))
	defer span.End()

	if err := s.reconcile(ctx, span, session); err != nil {
		span.RecordError(tracing.SafeError(err))
		span.SetStatus(codes.Error, "reconcile failed")
		outcome := metrics.OutcomeFailed
		if errors.Is(err, domain.ErrDeliveryInProgress) {
			outcome = metrics.OutcomeInProgress
		}
		s.metrics.WebhookEvent(event.Type, outcome)
		return err
	}
	return nil
}

func (s *Service) reconcile(ctx context.Context, span trace.Span, session *paymentdomain.CheckoutSession) error {
	log := s.logger(ctx)

	release, err := s.locker.Acquire(ctx, session.ID, s.lockTTL)
	if err != nil {
		if errors.Is(err, locks.ErrLockHeld) {
			log.Info("checkout session already being processed")
			return domain.ErrDeliveryInProgress
		}
		return fmt.Errorf("acquire delivery lock: %w", err)
	}
	defer release()

	if s.dedupe {
		existing, err := s.orders.FindBySessionID(ctx, session.ID)
		if err != nil {
			log.Warn("order lookup by session failed, continuing", zap.Error(err))
		} else if existing != nil {
			log.Info("checkout session already recorded",
				zap.String("order_id", existing.ID.String()),
				zap.String("status", string(existing.Status)),
			)
			s.metrics.WebhookEvent(paymentdomain.EventTypeCheckoutSessionCompleted, metrics.OutcomeDuplicate)
			return nil
		}
	}

	lineItems, err := s.gateway.ListLineItems(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("list line items: %w", err)
	}
	span.SetAttributes(tracing.AttrLineItems.Int(len(lineItems)))

	resolved := s.resolveLineItems(ctx, lineItems)

	fulfillmentID := s.submitFulfillment(ctx, session, resolved)

	order := buildOrder(session, resolved, fulfillmentID)
	span.SetAttributes(tracing.AttrOrderStatus.String(string(order.Status)))
	if err := s.orders.Create(ctx, order); err != nil {
		s.metrics.OrderPersisted(string(order.Status), false)
		log.Error("order record not persisted",
			zap.Error(err),
			zap.String("status", string(order.Status)),
			zap.Stringp("fulfillment_order_id", fulfillmentID),
			zap.Int64("total", order.Total),
		)
	} else {
		s.metrics.OrderPersisted(string(order.Status), true)
		log.Info("order recorded",
			zap.String("order_id", order.ID.String()),
			zap.String("status", string(order.Status)),
			zap.Int("items", len(order.Items)),
			zap.String("customer", logger.MaskEmail(order.Email)),
		)
	}

	s.metrics.WebhookEvent(paymentdomain.EventTypeCheckoutSessionCompleted, metrics.OutcomeProcessed)
	return nil
}

// resolveLineItems recovers catalog identity for every line item, one at a time.
func (s *Service) resolveLineItems(ctx context.Context, lineItems []paymentdomain.LineItem) []resolvedItem {
	log := s.logger(ctx)
	resolved := make([]resolvedItem, 0, len(lineItems))

	for _, line := range lineItems {
		item := resolvedItem{Line: line}
		fields := []zap.Field{zap.String("line_item_id", line.ID), zap.String("price_id", line.PriceID)}

		raw, err := s.productMetadata(ctx, line)
		if err != nil {
			s.metrics.LineItemSkipped(metrics.SkipMetadataLookup)
			log.Warn("product metadata lookup failed", append(fields, zap.Error(err))...)
			resolved = append(resolved, item)
			continue
		}
		item.Raw = raw
		meta, ok := domain.ParseProductMetadata(raw)
		if !ok {
			s.metrics.LineItemSkipped(metrics.SkipNoMetadata)
			log.Debug("line item has no catalog metadata", fields...)
			resolved = append(resolved, item)
			continue
		}
		item.Meta = &meta

		product, err := s.catalog.GetBySlug(ctx, meta.Slug)
		switch {
		case errors.Is(err, catalogdomain.ErrProductNotFound):
			s.metrics.LineItemSkipped(metrics.SkipCatalogMissing)
			log.Warn("catalog product not found", append(fields, zap.String("slug", meta.Slug))...)
		case err != nil:
			s.metrics.LineItemSkipped(metrics.SkipCatalogLookup)
			log.Warn("catalog lookup failed", append(fields, zap.String("slug", meta.Slug), zap.Error(err))...)
		case product.GelatoProductUID == "":
			s.metrics.LineItemSkipped(metrics.SkipNoFulfillmentUID)
			log.Warn("catalog product has no fulfillment product uid", append(fields, zap.String("slug", meta.Slug))...)
		default:
			item.Product = product
		}
		resolved = append(resolved, item)
	}
	return resolved
}

func (s *Service) productMetadata(ctx context.Context, line paymentdomain.LineItem) (map[string]string, error) {
	if line.Product.Expanded {
		return line.Product.Metadata, nil
	}
	if line.PriceID == "" {
		return nil, nil
	}
	return s.gateway.ProductMetadata(ctx, line.PriceID)
}

// submitFulfillment is the fulfillment pass. It returns nil when nothing was
// submitted or the provider call failed.
func (s *Service) submitFulfillment(ctx context.Context, session *paymentdomain.CheckoutSession, resolved []resolvedItem) *string {
	log := s.logger(ctx)

	items := make([]fulfillmentdomain.Item, 0, len(resolved))
	for _, r := range resolved {
		if r.Product == nil {
			continue
		}
		var options map[string]string
		if r.Meta != nil {
			options = r.Meta.Options
		}
		items = append(items, fulfillmentItem(r.Line.ID, r.Product, r.Line.Quantity, options))
	}
	if len(items) == 0 {
		log.Warn("no line item resolved to a fulfillable product, order left pending")
		return nil
	}

	req := fulfillmentdomain.OrderRequest{
		OrderReferenceID:    session.ID,
		CustomerReferenceID: session.Customer.Email,
		Currency:            normalizeCurrency(session.Currency),
		Recipient:           recipientFromSession(session),
		Items:               items,
	}
	id, err := s.fulfillment.CreateOrder(ctx, req)
	if err != nil {
		s.metrics.FulfillmentSubmitted(false)
		log.Error("fulfillment submission failed, order left pending",
			zap.Error(err),
			zap.Int("items", len(items)),
		)
		return nil
	}

	s.metrics.FulfillmentSubmitted(true)
	log.Info("fulfillment order submitted",
		zap.String("fulfillment_order_id", id),
		zap.Int("items", len(items)),
	)
	return &id
}

// Resubmit rebuilds fulfillment lines from a pending order's item snapshots.
func (s *Service) Resubmit(ctx context.Context, orderID string) (*orderdomain.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != orderdomain.StatusPending {
		return nil, domain.ErrOrderNotPending
	}

	ctx = obsctx.WithCheckoutSession(ctx, order.SessionID)
	ctx, span := s.tracer.Start(ctx, "checkout.resubmit", trace.WithAttributes(
		tracing.AttrCheckoutSession.String(order.SessionID),
		attribute.String("storefront.order_id", order.ID.String()),
	))
	defer span.End()
	log := s.logger(ctx).With(zap.String("order_id", order.ID.String()))

	release, err := s.locker.Acquire(ctx, order.SessionID, s.lockTTL)
	if err != nil {
		if errors.Is(err, locks.ErrLockHeld) {
			return nil, domain.ErrDeliveryInProgress
		}
		return nil, fmt.Errorf("acquire delivery lock: %w", err)
	}
	defer release()

	// The lock key comes from the first read; status is only trusted once held.
	order, err = s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != orderdomain.StatusPending {
		return nil, domain.ErrOrderNotPending
	}

	items := make([]fulfillmentdomain.Item, 0, len(order.Items))
	for i, snapshot := range order.Items {
		if snapshot.Slug == "" {
			continue
		}
		product, err := s.catalog.GetBySlug(ctx, snapshot.Slug)
		if err != nil {
			log.Warn("catalog lookup failed on resubmit", zap.String("slug", snapshot.Slug), zap.Error(err))
			continue
		}
		if product.GelatoProductUID == "" {
			continue
		}
		ref := fmt.Sprintf("%s-%d", order.ID.String(), i+1)
		items = append(items, fulfillmentItem(ref, product, snapshot.Quantity, snapshot.Options))
	}
	if len(items) == 0 {
		return nil, domain.ErrNothingToFulfill
	}

	fulfillmentID, err := s.fulfillment.CreateOrder(ctx, fulfillmentdomain.OrderRequest{
		OrderReferenceID:    order.SessionID,
		CustomerReferenceID: order.Email,
		Currency:            order.Currency,
		Recipient:           recipientFromOrder(order),
		Items:               items,
	})
	if err != nil {
		s.metrics.FulfillmentSubmitted(false)
		span.RecordError(tracing.SafeError(err))
		span.SetStatus(codes.Error, "fulfillment submission failed")
		return nil, fmt.Errorf("submit fulfillment: %w", err)
	}
	s.metrics.FulfillmentSubmitted(true)

	updated, err := s.orders.MarkSubmitted(ctx, order.ID, fulfillmentID)
	if err != nil {
		log.Error("fulfillment submitted but order not updated",
			zap.String("fulfillment_order_id", fulfillmentID),
			zap.Error(err),
		)
		return nil, err
	}
	log.Info("pending order resubmitted", zap.String("fulfillment_order_id", fulfillmentID))
	return updated, nil
}

func (s *Service) logger(ctx context.Context) *zap.Logger {
	log := s.log
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		log = log.With(zap.String("trace_id", sc.TraceID().String()))
	}
	if requestID := obsctx.RequestIDFromContext(ctx); requestID != "" {
		log = log.With(zap.String("request_id", requestID))
	}
	if eventID := obsctx.EventIDFromContext(ctx); eventID != "" {
		log = log.With(zap.String("event_id", eventID))
	}
	if sessionID := obsctx.CheckoutSessionFromContext(ctx); sessionID != "" {
		log = log.With(zap.String("checkout_session", sessionID))
	}
	return log
}

func fulfillmentItem(ref string, product *catalogdomain.Product, quantity int64, options map[string]string) fulfillmentdomain.Item {
	item := fulfillmentdomain.Item{
		ItemReferenceID: ref,
		ProductUID:      product.GelatoProductUID,
		Quantity:        quantity,
		Attributes:      options,
	}
	for _, area := range product.PrintAreas {
		if area.ImageURL == "" {
			continue
		}
		item.Files = append(item.Files, fulfillmentdomain.File{Type: area.Name, URL: area.ImageURL})
	}
	return item
}

func recipientFromSession(session *paymentdomain.CheckoutSession) fulfillmentdomain.Recipient {
	name := session.Shipping.Name
	if name == "" {
		name = session.Customer.Name
	}
	addr := session.Shipping.Address
	return fulfillmentdomain.Recipient{
		Name:       name,
		Email:      session.Customer.Email,
		Phone:      session.Customer.Phone,
		Line1:      addr.Line1,
		Line2:      addr.Line2,
		City:       addr.City,
		State:      addr.State,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
	}
}

func recipientFromOrder(order *orderdomain.Order) fulfillmentdomain.Recipient {
	name := order.Shipping.Name
	if name == "" {
		name = order.Name
	}
	return fulfillmentdomain.Recipient{
		Name:       name,
		Email:      order.Email,
		Phone:      order.Phone,
		Line1:      order.Shipping.Line1,
		Line2:      order.Shipping.Line2,
		City:       order.Shipping.City,
		State:      order.Shipping.State,
		PostalCode: order.Shipping.PostalCode,
		Country:    order.Shipping.Country,
	}
}

func normalizeCurrency(currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return defaultCurrency
	}
	return currency
}
