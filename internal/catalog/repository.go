package catalog

import (
	"context"
	"strings"

	"github.com/angelmondragon/fastfood-backend/pkg/db/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SearchFilter narrows menu item listings. Zero values mean "no constraint".
type SearchFilter struct {
	Keyword    string
	CategoryID *int64
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
}

// Repository persists categories and menu items.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindItem loads a menu item with its category. Missing rows yield gorm.ErrRecordNotFound.
func (r *Repository) FindItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.db.WithContext(ctx).
		Preload("Category").
		First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// SearchItems applies the filter and orders results by name.
func (r *Repository) SearchItems(ctx context.Context, filter SearchFilter) ([]models.MenuItem, error) {
	query := r.db.WithContext(ctx).Model(&models.MenuItem{}).Preload("Category")

	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(kw)+"%")
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}

	var items []models.MenuItem
	if err := query.Order("name ASC").Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repository) CreateItem(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Omit("Category").Create(item).Error
}

// SaveItem writes every column of an existing item.
func (r *Repository) SaveItem(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Omit("Category").Save(item).Error
}

// DeleteItem removes the item and reports how many rows went away.
func (r *Repository) DeleteItem(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.MenuItem{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *Repository) FindCategory(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *Repository) DeleteCategory(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

// CountItemsInCategory reports how many menu items still reference the category.
func (r *Repository) CountItemsInCategory(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MenuItem{}).Where("category_id = ?", id).Count(&count).Error
	return count, err
}
