package service

import (
	"context"
	"strings"

	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/clock"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/events"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/order/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Repo   domain.Repository
	Outbox *events.Outbox
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID  *snowflake.Node
	clock  clock.Clock
	repo   domain.Repository
	outbox *events.Outbox
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("order.service"),

		genID:  p.GenID,
		clock:  p.Clock,
		repo:   p.Repo,
		outbox: p.Outbox,
	}
}

func (s *Service) Create(ctx context.Context, order *domain.Order) error {
	if order == nil || strings.TrimSpace(order.SessionID) == "" {
		return domain.ErrInvalidSession
	}

	now := s.clock.Now()
	order.ID = s.genID.Generate()
	order.Status = domain.StatusFor(order.FulfillmentOrderID)
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = order.CreatedAt

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, order); err != nil {
			return err
		}
		return s.outbox.OrderCreated(ctx, tx, events.OrderCreatedPayload{
			OrderID:            order.ID.String(),
			SessionID:          order.SessionID,
			Status:             string(order.Status),
			Total:              order.Total,
			Currency:           order.Currency,
			ItemCount:          len(order.Items),
			FulfillmentOrderID: order.FulfillmentOrderID,
		}, order.ID)
	})
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	orderID, err := domain.ParseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	order, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// FindBySessionID returns nil without error when the session has no order.
func (s *Service) FindBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, domain.ErrInvalidSession
	}
	return s.repo.FindBySessionID(ctx, s.db, sessionID)
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Order, error) {
	filter := domain.ListFilter{Limit: req.Limit}
	if status := strings.ToLower(strings.TrimSpace(req.Status)); status != "" {
		filter.Status = domain.Status(status)
		if !filter.Status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = domain.DefaultListLimit
	}
	if filter.Limit > domain.MaxListLimit {
		filter.Limit = domain.MaxListLimit
	}
	return s.repo.List(ctx, s.db, filter)
}

// MarkSubmitted records a fulfillment id on a pending order. Item snapshots are left untouched.
func (s *Service) MarkSubmitted(ctx context.Context, id snowflake.ID, fulfillmentOrderID string) (*domain.Order, error) {
	fulfillmentOrderID = strings.TrimSpace(fulfillmentOrderID)
	if fulfillmentOrderID == "" {
		return nil, domain.ErrMissingFulfillment
	}

	now := s.clock.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		changed, err := s.repo.MarkSubmitted(ctx, tx, id, fulfillmentOrderID, now)
		if err != nil {
			return err
		}
		if !changed {
			existing, err := s.repo.FindByID(ctx, tx, id)
			if err != nil {
				return err
			}
			if existing == nil {
				return domain.ErrNotFound
			}
			return domain.ErrNotPending
		}
		return s.outbox.FulfillmentSubmitted(ctx, tx, id, fulfillmentOrderID)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order marked submitted",
		zap.String("order_id", id.String()),
		zap.String("fulfillment_order_id", fulfillmentOrderID),
	)
	return s.repo.FindByID(ctx, s.db, id)
}
