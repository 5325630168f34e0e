package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/angelmondragon/fastfood-backend/pkg/db"
	"github.com/angelmondragon/fastfood-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fastfood-backend/pkg/errors"
	"github.com/angelmondragon/fastfood-backend/pkg/logger"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Service exposes menu browsing and admin maintenance.
type Service interface {
	Search(ctx context.Context, filter SearchFilter) ([]ItemDTO, error)
	GetItem(ctx context.Context, id int64) (*ItemSnapshot, error)
	ItemDetail(ctx context.Context, id int64) (*ItemDTO, error)
	CreateItem(ctx context.Context, input ItemInput) (*ItemDTO, error)
	UpdateItem(ctx context.Context, id int64, input ItemInput) (*ItemDTO, error)
	DeleteItem(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	CreateCategory(ctx context.Context, name string) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type service struct {
	repo  *Repository
	cache SnapshotCache
	logg  *logger.Logger
	sfg   singleflight.Group
}

// NewService wires the catalog service. A nil cache disables snapshot caching.
func NewService(repo *Repository, cache SnapshotCache, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if cache == nil {
		cache = noopCache{}
	}
	return &service{repo: repo, cache: cache, logg: logg}, nil
}

func errItemNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
}

func (s *service) Search(ctx context.Context, filter SearchFilter) ([]ItemDTO, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_price cannot exceed max_price")
	}
	items, err := s.repo.SearchItems(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search menu items")
	}
	out := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, newItemDTO(item))
	}
	return out, nil
}

// GetItem returns the snapshot used by the cart. Concurrent misses for the
// same id share one database read.
func (s *service) GetItem(ctx context.Context, id int64) (*ItemSnapshot, error) {
	v, err, _ := s.sfg.Do(strconv.FormatInt(id, 10), func() (any, error) {
		cached, err := s.cache.Get(ctx, id)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.warn(ctx, id, "catalog.cache_get_failed", err)
		}

		item, err := s.repo.FindItem(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errItemNotFound()
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu item")
		}

		snapshot := snapshotOf(*item)
		if err := s.cache.Set(ctx, snapshot); err != nil {
			s.warn(ctx, id, "catalog.cache_set_failed", err)
		}
		return snapshot, nil
	})
	if err != nil {
		return nil, err
	}
	snapshot := *v.(*ItemSnapshot)
	return &snapshot, nil
}

func (s *service) ItemDetail(ctx context.Context, id int64) (*ItemDTO, error) {
	item, err := s.repo.FindItem(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errItemNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu item")
	}
	dto := newItemDTO(*item)
	return &dto, nil
}

// CreateItem applies the storefront defaults: placeholder image, stock
// description and available=true.
func (s *service) CreateItem(ctx context.Context, input ItemInput) (*ItemDTO, error) {
	if err := s.validateItem(ctx, input); err != nil {
		return nil, err
	}

	item := &models.MenuItem{
		Name:        strings.TrimSpace(input.Name),
		Price:       input.Price,
		Description: defaultString(input.Description, DefaultDescription),
		ImageURL:    defaultString(input.ImageURL, DefaultImageURL),
		IsAvailable: true,
		CategoryID:  input.CategoryID,
		Quantity:    input.Quantity,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert menu item")
	}
	return s.ItemDetail(ctx, item.ID)
}

func (s *service) UpdateItem(ctx context.Context, id int64, input ItemInput) (*ItemDTO, error) {
	existing, err := s.repo.FindItem(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errItemNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu item")
	}
	if err := s.validateItem(ctx, input); err != nil {
		return nil, err
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.Price = input.Price
	existing.Description = defaultString(input.Description, DefaultDescription)
	existing.ImageURL = defaultString(input.ImageURL, DefaultImageURL)
	existing.CategoryID = input.CategoryID
	existing.Quantity = input.Quantity
	if input.IsAvailable != nil {
		existing.IsAvailable = *input.IsAvailable
	}
	existing.Category = nil

	if err := s.repo.SaveItem(ctx, existing); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update menu item")
	}
	s.invalidate(ctx, id)
	return s.ItemDetail(ctx, id)
}

// DeleteItem is a no-op for unknown ids.
func (s *service) DeleteItem(ctx context.Context, id int64) error {
	if _, err := s.repo.DeleteItem(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete menu item")
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		out = append(out, newCategoryDTO(c))
	}
	return out, nil
}

func (s *service) CreateCategory(ctx context.Context, name string) (*CategoryDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	category := &models.Category{Name: name}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert category")
	}
	dto := newCategoryDTO(*category)
	return &dto, nil
}

// DeleteCategory refuses while menu items still point at the category.
func (s *service) DeleteCategory(ctx context.Context, id int64) error {
	count, err := s.repo.CountItemsInCategory(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count category items")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "category still has menu items")
	}
	if _, err := s.repo.DeleteCategory(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

func (s *service) validateItem(ctx context.Context, input ItemInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be zero or greater")
	}
	if input.Quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be zero or greater")
	}
	if _, err := s.repo.FindCategory(ctx, input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return nil
}

func (s *service) invalidate(ctx context.Context, id int64) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.warn(ctx, id, "catalog.cache_invalidate_failed", err)
	}
}

func (s *service) warn(ctx context.Context, id int64, msg string, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{"item_id": id, "error": err.Error()})
	s.logg.Warn(ctx, msg)
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
