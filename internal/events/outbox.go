package events

import (
	"context"
	"errors"
	"strings"

	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/clock"
	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrOutboxUnavailable = errors.New("outbox_unavailable")
	ErrMissingOrder      = errors.New("invalid_order_id")
	ErrUnknownEventType  = errors.New("unknown_event_type")
)

// Event is one row of the order_events outbox.
//
// Rows are relayed in (created_at, id) order. created_at comes from the
// injected clock and id from the snowflake node, so two events appended for
// the same order within one process are relayed in the order they were written.
type Event struct {
	OrderID   snowflake.ID
	Type      string
	Payload   map[string]any
	DedupeKey string
}

// DedupeKey is the key for lifecycle events that happen at most once per order.
func DedupeKey(eventType string, orderID snowflake.ID) string {
	return eventType + ":" + orderID.String()
}

func knownType(eventType string) bool {
	switch eventType {
	case EventOrderCreated, EventOrderFulfillmentSubmitted:
		return true
	}
	return false
}

// Outbox appends order lifecycle events inside the caller's transaction.
type Outbox struct {
	db    *gorm.DB
	genID *snowflake.Node
	clock clock.Clock
}

func NewOutbox(db *gorm.DB, genID *snowflake.Node, clk clock.Clock) *Outbox {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Outbox{db: db, genID: genID, clock: clk}
}

// OrderCreated appends order.created, once per order.
func (o *Outbox) OrderCreated(ctx context.Context, tx *gorm.DB, payload OrderCreatedPayload, orderID snowflake.ID) error {
	return o.Append(ctx, tx, Event{
		OrderID:   orderID,
		Type:      EventOrderCreated,
		Payload:   payload.ToMap(),
		DedupeKey: DedupeKey(EventOrderCreated, orderID),
	})
}

// FulfillmentSubmitted appends order.fulfillment_submitted, once per order.
// A pending order only moves to submitted once, so a second append is a no-op.
func (o *Outbox) FulfillmentSubmitted(ctx context.Context, tx *gorm.DB, orderID snowflake.ID, fulfillmentOrderID string) error {
	return o.Append(ctx, tx, Event{
		OrderID: orderID,
		Type:    EventOrderFulfillmentSubmitted,
		Payload: FulfillmentSubmittedPayload{
			OrderID:            orderID.String(),
			FulfillmentOrderID: fulfillmentOrderID,
		}.ToMap(),
		DedupeKey: DedupeKey(EventOrderFulfillmentSubmitted, orderID),
	})
}

// Append writes an event with tx, or with the outbox's own handle when tx is nil.
// Events sharing a non-empty dedupe key are stored once.
func (o *Outbox) Append(ctx context.Context, tx *gorm.DB, event Event) error {
	if o == nil || o.genID == nil {
		return ErrOutboxUnavailable
	}
	if tx == nil {
		tx = o.db
	}
	if tx == nil {
		return ErrOutboxUnavailable
	}
	if event.OrderID == 0 {
		return ErrMissingOrder
	}
	eventType := strings.TrimSpace(event.Type)
	if !knownType(eventType) {
		return ErrUnknownEventType
	}

	payload := datatypes.JSONMap{}
	for key, value := range event.Payload {
		if strings.TrimSpace(key) != "" {
			payload[key] = value
		}
	}

	var dedupe any
	if key := strings.TrimSpace(event.DedupeKey); key != "" {
		dedupe = key
	}

	return tx.WithContext(ctx).Exec(
		`INSERT INTO order_events (id, order_id, event_type, payload, dedupe_key, published, created_at)
		 VALUES (?, ?, ?, ?, ?, false, ?)
		 ON CONFLICT (dedupe_key) DO NOTHING`,
		o.genID.Generate(),
		event.OrderID,
		eventType,
		payload,
		dedupe,
		o.clock.Now().UTC(),
	).Error
}
