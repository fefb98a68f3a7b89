package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

type ListRequest struct {
	Status string `form:"status"`
	Limit  int    `form:"limit"`
}

type Service interface {
	// Create assigns id and timestamps, stores the order and its order.created event.
	Create(ctx context.Context, order *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	FindBySessionID(ctx context.Context, sessionID string) (*Order, error)
	List(ctx context.Context, req ListRequest) ([]Order, error)
	MarkSubmitted(ctx context.Context, id snowflake.ID, fulfillmentOrderID string) (*Order, error)
}

func ParseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrInvalidSession     = errors.New("invalid_session_id")
	ErrNotFound           = errors.New("order_not_found")
	ErrNotPending         = errors.New("order_not_pending")
	ErrMissingFulfillment = errors.New("missing_fulfillment_order_id")
)
