package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups menu items.
type Category struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name string `gorm:"column:name;type:text;not null;uniqueIndex"`
}

func (Category) TableName() string { return "categories" }

// MenuItem is a purchasable dish.
type MenuItem struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string          `gorm:"column:name;type:text;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Description string          `gorm:"column:description;type:text;not null"`
	ImageURL    string          `gorm:"column:image_url;type:text;not null"`
	IsAvailable bool            `gorm:"column:is_available;not null"`
	CategoryID  int64           `gorm:"column:category_id;not null;index"`
	Category    *Category       `gorm:"foreignKey:CategoryID"`
	Quantity    int             `gorm:"column:quantity;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (MenuItem) TableName() string { return "menu_items" }
