package domain

import (
	"context"
	"errors"

	orderdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/order/domain"
)

type Service interface {
	// IngestWebhook processes one raw payment provider delivery.
	IngestWebhook(ctx context.Context, payload []byte, signature string) error
	// Resubmit sends a pending order to the fulfillment provider again.
	Resubmit(ctx context.Context, orderID string) (*orderdomain.Order, error)
}

var (
	ErrFeatureDisabled    = errors.New("payments_disabled")
	ErrDeliveryInProgress = errors.New("delivery_in_progress")
	ErrNothingToFulfill   = errors.New("nothing_to_fulfill")
	ErrOrderNotFound      = orderdomain.ErrNotFound
	ErrOrderNotPending    = orderdomain.ErrNotPending
)
