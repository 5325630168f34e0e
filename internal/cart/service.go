package cart

import (
	"context"
	"fmt"

	"github.com/angelmondragon/fastfood-backend/internal/catalog"
	"github.com/angelmondragon/fastfood-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fastfood-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogReader is the narrow catalog lookup the cart depends on.
type CatalogReader interface {
	GetItem(ctx context.Context, id int64) (*catalog.ItemSnapshot, error)
}

// Service exposes per-cart-key line management.
type Service interface {
	AddItem(ctx context.Context, cartKey string, itemID int64, quantityDelta int) (*models.CartLine, error)
	RemoveLine(ctx context.Context, cartKey string, lineID uuid.UUID) error
	ListLines(ctx context.Context, cartKey string) ([]models.CartLine, error)
	Total(ctx context.Context, cartKey string) (decimal.Decimal, error)
	Clear(ctx context.Context, cartKey string) error
	View(ctx context.Context, cartKey string) (*View, error)
}

type service struct {
	repo    LineRepository
	catalog CatalogReader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo LineRepository, catalog CatalogReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog reader required")
	}
	return &service{repo: repo, catalog: catalog}, nil
}

// AddItem puts quantityDelta units of the item in the cart. A zero delta
// means one unit. The first add freezes the catalog name and price on the line.
func (s *service) AddItem(ctx context.Context, cartKey string, itemID int64, quantityDelta int) (*models.CartLine, error) {
	if err := validateKey(cartKey); err != nil {
		return nil, err
	}
	if quantityDelta == 0 {
		quantityDelta = 1
	}
	if quantityDelta < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	item, err := s.catalog.GetItem(ctx, itemID)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu item")
	}
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	}
	if !item.IsAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "menu item is not available")
	}

	line, err := s.repo.AddOrIncrement(ctx, &models.CartLine{
		CartKey:   cartKey,
		ItemID:    item.ID,
		Name:      item.Name,
		UnitPrice: item.Price,
		Quantity:  quantityDelta,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert cart line")
	}
	return line, nil
}

// RemoveLine deletes the line when it belongs to the cart; unknown ids are ignored.
func (s *service) RemoveLine(ctx context.Context, cartKey string, lineID uuid.UUID) error {
	if err := validateKey(cartKey); err != nil {
		return err
	}
	if _, err := s.repo.DeleteLine(ctx, cartKey, lineID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart line")
	}
	return nil
}

func (s *service) ListLines(ctx context.Context, cartKey string) ([]models.CartLine, error) {
	if err := validateKey(cartKey); err != nil {
		return nil, err
	}
	lines, err := s.repo.ListByCartKey(ctx, cartKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart lines")
	}
	return lines, nil
}

func (s *service) Total(ctx context.Context, cartKey string) (decimal.Decimal, error) {
	lines, err := s.ListLines(ctx, cartKey)
	if err != nil {
		return decimal.Zero, err
	}
	return SumLines(lines), nil
}

func (s *service) Clear(ctx context.Context, cartKey string) error {
	if err := validateKey(cartKey); err != nil {
		return err
	}
	if _, err := s.repo.DeleteByCartKey(ctx, cartKey); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) View(ctx context.Context, cartKey string) (*View, error) {
	lines, err := s.ListLines(ctx, cartKey)
	if err != nil {
		return nil, err
	}
	return NewView(lines), nil
}

// SumLines is the exact sum of unit price times quantity.
func SumLines(lines []models.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	return total
}
