package controllers

import (
	"net/http"

	"github.com/angelmondragon/fastfood-backend/api/responses"
	"github.com/angelmondragon/fastfood-backend/api/validators"
	"github.com/angelmondragon/fastfood-backend/internal/catalog"
	"github.com/angelmondragon/fastfood-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const maxKeywordLength = 100

// CatalogCategories lists every menu category.
func CatalogCategories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

// CatalogSearch filters menu items by keyword, category and price range.
func CatalogSearch(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := catalog.SearchFilter{
			Keyword: validators.SanitizeString(r.URL.Query().Get("keyword"), maxKeywordLength),
		}

		var err error
		if filter.CategoryID, err = validators.ParseQueryID(r, "category_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filter.MinPrice, err = validators.ParseQueryDecimal(r, "min_price"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filter.MaxPrice, err = validators.ParseQueryDecimal(r, "max_price"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.Search(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// CatalogItem returns one menu item with its category.
func CatalogItem(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(chi.URLParam(r, "itemID"), "item id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.ItemDetail(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

type itemRequest struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description" validate:"max=1000"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
	IsAvailable *bool           `json:"is_available"`
	CategoryID  int64           `json:"category_id" validate:"required,gt=0"`
	Quantity    int             `json:"quantity" validate:"min=0"`
}

func (req itemRequest) input() catalog.ItemInput {
	return catalog.ItemInput{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsAvailable: req.IsAvailable,
		CategoryID:  req.CategoryID,
		Quantity:    req.Quantity,
	}
}

type categoryRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

// AdminCreateItem adds a menu item.
func AdminCreateItem(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body itemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.CreateItem(r.Context(), body.input())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// AdminUpdateItem replaces the editable fields of a menu item.
func AdminUpdateItem(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(chi.URLParam(r, "itemID"), "item id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body itemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.UpdateItem(r.Context(), id, body.input())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// AdminDeleteItem removes a menu item. Unknown ids succeed.
func AdminDeleteItem(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(chi.URLParam(r, "itemID"), "item id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteItem(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func AdminCreateCategory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body categoryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := svc.CreateCategory(r.Context(), body.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

func AdminDeleteCategory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(chi.URLParam(r, "categoryID"), "category id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteCategory(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
