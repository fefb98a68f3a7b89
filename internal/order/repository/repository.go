package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/order/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const selectOrder = `SELECT id, session_id, email, name, phone,
	shipping_name, shipping_line1, shipping_line2, shipping_city, shipping_state,
	shipping_postal_code, shipping_country, items, total, currency,
	fulfillment_order_id, status, created_at, updated_at
 FROM orders`

type orderRow struct {
	ID                 snowflake.ID   `gorm:"column:id"`
	SessionID          string         `gorm:"column:session_id"`
	Email              string         `gorm:"column:email"`
	Name               string         `gorm:"column:name"`
	Phone              string         `gorm:"column:phone"`
	ShippingName       string         `gorm:"column:shipping_name"`
	ShippingLine1      string         `gorm:"column:shipping_line1"`
	ShippingLine2      string         `gorm:"column:shipping_line2"`
	ShippingCity       string         `gorm:"column:shipping_city"`
	ShippingState      string         `gorm:"column:shipping_state"`
	ShippingPostalCode string         `gorm:"column:shipping_postal_code"`
	ShippingCountry    string         `gorm:"column:shipping_country"`
	Items              datatypes.JSON `gorm:"column:items"`
	Total              int64          `gorm:"column:total"`
	Currency           string         `gorm:"column:currency"`
	FulfillmentOrderID *string        `gorm:"column:fulfillment_order_id"`
	Status             string         `gorm:"column:status"`
	CreatedAt          time.Time      `gorm:"column:created_at"`
	UpdatedAt          time.Time      `gorm:"column:updated_at"`
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	items := order.Items
	if items == nil {
		items = []domain.Item{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Exec(
		`INSERT INTO orders (
			id, session_id, email, name, phone,
			shipping_name, shipping_line1, shipping_line2, shipping_city, shipping_state,
			shipping_postal_code, shipping_country, items, total, currency,
			fulfillment_order_id, status, created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.SessionID,
		order.Email,
		order.Name,
		order.Phone,
		order.Shipping.Name,
		order.Shipping.Line1,
		order.Shipping.Line2,
		order.Shipping.City,
		order.Shipping.State,
		order.Shipping.PostalCode,
		order.Shipping.Country,
		datatypes.JSON(payload),
		order.Total,
		order.Currency,
		order.FulfillmentOrderID,
		string(order.Status),
		order.CreatedAt,
		order.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Order, error) {
	var rows []orderRow
	if err := db.WithContext(ctx).Raw(
		selectOrder+` WHERE id = ? LIMIT 1`,
		id,
	).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return toOrder(rows[0])
}

// FindBySessionID returns the earliest order recorded for the session.
func (r *repo) FindBySessionID(ctx context.Context, db *gorm.DB, sessionID string) (*domain.Order, error) {
	var rows []orderRow
	if err := db.WithContext(ctx).Raw(
		selectOrder+` WHERE session_id = ? ORDER BY created_at ASC, id ASC LIMIT 1`,
		sessionID,
	).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return toOrder(rows[0])
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Order, error) {
	query := selectOrder
	args := []any{}
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, filter.Limit)

	var rows []orderRow
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		order, err := toOrder(row)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

func (r *repo) MarkSubmitted(ctx context.Context, db *gorm.DB, id snowflake.ID, fulfillmentOrderID string, at time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET status = ?, fulfillment_order_id = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		string(domain.StatusSubmitted),
		fulfillmentOrderID,
		at,
		id,
		string(domain.StatusPending),
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func toOrder(row orderRow) (*domain.Order, error) {
	items := []domain.Item{}
	if len(row.Items) > 0 {
		if err := json.Unmarshal(row.Items, &items); err != nil {
			return nil, err
		}
	}
	return &domain.Order{
		ID:        row.ID,
		SessionID: row.SessionID,
		Email:     row.Email,
		Name:      row.Name,
		Phone:     row.Phone,
		Shipping: domain.ShippingAddress{
			Name:       row.ShippingName,
			Line1:      row.ShippingLine1,
			Line2:      row.ShippingLine2,
			City:       row.ShippingCity,
			State:      row.ShippingState,
			PostalCode: row.ShippingPostalCode,
			Country:    row.ShippingCountry,
		},
		Items:              items,
		Total:              row.Total,
		Currency:           row.Currency,
		FulfillmentOrderID: row.FulfillmentOrderID,
		Status:             domain.Status(row.Status),
		CreatedAt:          row.CreatedAt.UTC(),
		UpdatedAt:          row.UpdatedAt.UTC(),
	}, nil
}
