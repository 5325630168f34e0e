package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartLine is one pending item in a cart. Name and UnitPrice are frozen from
// the catalog on first add and never re-read from it.
type CartLine struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CartKey   string          `gorm:"column:cart_key;type:text;not null;uniqueIndex:ux_cart_lines_cart_item,priority:1"`
	ItemID    int64           `gorm:"column:item_id;not null;uniqueIndex:ux_cart_lines_cart_item,priority:2"`
	Name      string          `gorm:"column:name;type:text;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;not null"`
	UpdatedAt time.Time       `gorm:"column:updated_at;not null"`
}

func (CartLine) TableName() string { return "cart_lines" }

func (l *CartLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID != uuid.Nil {
		return nil
	}
	id, err := newSequentialID()
	if err != nil {
		return err
	}
	l.ID = id
	return nil
}

// Subtotal returns UnitPrice * Quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
