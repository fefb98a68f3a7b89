package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	Status Status
	Limit  int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	FindBySessionID(ctx context.Context, db *gorm.DB, sessionID string) (*Order, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Order, error)
	// MarkSubmitted moves a pending order to submitted and reports whether a row changed.
	MarkSubmitted(ctx context.Context, db *gorm.DB, id snowflake.ID, fulfillmentOrderID string, at time.Time) (bool, error)
}
