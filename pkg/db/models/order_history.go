package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderHistoryRecord is an immutable receipt line written by checkout.
type OrderHistoryRecord struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ItemID       int64           `gorm:"column:item_id;not null"`
	ItemName     string          `gorm:"column:item_name;type:text;not null"`
	CustomerName string          `gorm:"column:customer_name;type:text;not null"`
	CustomerKey  string          `gorm:"column:customer_key;type:text;not null;index"`
	Quantity     int             `gorm:"column:quantity;not null"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	OrderedAt    time.Time       `gorm:"column:ordered_at;not null;index"`
}

func (OrderHistoryRecord) TableName() string { return "order_history" }

func (r *OrderHistoryRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID != uuid.Nil {
		return nil
	}
	id, err := newSequentialID()
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

// LineTotal returns UnitPrice * Quantity.
func (r OrderHistoryRecord) LineTotal() decimal.Decimal {
	return r.UnitPrice.Mul(decimal.NewFromInt(int64(r.Quantity)))
}
