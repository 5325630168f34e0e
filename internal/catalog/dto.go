package catalog

import (
	"time"

	"github.com/angelmondragon/fastfood-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

const (
	DefaultDescription = "Chưa có mô tả"
	DefaultImageURL    = "https://via.placeholder.com/150"
)

// ItemSnapshot is the slice of a menu item the cart needs at add time.
type ItemSnapshot struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	IsAvailable bool            `json:"is_available"`
}

// CategoryDTO is the API shape of a category.
type CategoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ItemDTO is the API shape of a menu item.
type ItemDTO struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	IsAvailable bool            `json:"is_available"`
	Quantity    int             `json:"quantity"`
	Category    *CategoryDTO    `json:"category,omitempty"`
	CategoryID  int64           `json:"category_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ItemInput carries the admin-editable fields of a menu item.
type ItemInput struct {
	Name        string
	Price       decimal.Decimal
	Description string
	ImageURL    string
	IsAvailable *bool
	CategoryID  int64
	Quantity    int
}

func newCategoryDTO(c models.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name}
}

func newItemDTO(item models.MenuItem) ItemDTO {
	dto := ItemDTO{
		ID:          item.ID,
		Name:        item.Name,
		Price:       item.Price,
		Description: item.Description,
		ImageURL:    item.ImageURL,
		IsAvailable: item.IsAvailable,
		Quantity:    item.Quantity,
		CategoryID:  item.CategoryID,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
	if item.Category != nil {
		category := newCategoryDTO(*item.Category)
		dto.Category = &category
	}
	return dto
}

func snapshotOf(item models.MenuItem) *ItemSnapshot {
	return &ItemSnapshot{
		ID:          item.ID,
		Name:        item.Name,
		Price:       item.Price,
		IsAvailable: item.IsAvailable,
	}
}
