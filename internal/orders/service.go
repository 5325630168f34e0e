package orders

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/fastfood-backend/pkg/errors"
	"github.com/angelmondragon/fastfood-backend/pkg/pagination"
)

// Reader exposes read-only access to order history.
type Reader interface {
	ListAll(ctx context.Context) ([]RecordDTO, error)
	ListPage(ctx context.Context, params pagination.Params) (*pagination.Page[RecordDTO], error)
	ListByCustomer(ctx context.Context, customerKey string) ([]RecordDTO, error)
}

type reader struct {
	repo Repository
}

// NewReader constructs the order history reader.
func NewReader(repo Repository) (Reader, error) {
	if repo == nil {
		return nil, fmt.Errorf("order history repository required")
	}
	return &reader{repo: repo}, nil
}

// ListAll returns every record, newest first.
func (r *reader) ListAll(ctx context.Context) ([]RecordDTO, error) {
	records, err := r.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order history")
	}
	return newRecordDTOs(records), nil
}

func (r *reader) ListPage(ctx context.Context, params pagination.Params) (*pagination.Page[RecordDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	records, err := r.repo.ListPage(ctx, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order history page")
	}

	page := pagination.Trim(newRecordDTOs(records), params.Limit, func(d RecordDTO) pagination.Cursor {
		return pagination.Cursor{At: d.OrderedAt, ID: d.ID}
	})
	return &page, nil
}

func (r *reader) ListByCustomer(ctx context.Context, customerKey string) ([]RecordDTO, error) {
	if strings.TrimSpace(customerKey) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer key required")
	}
	records, err := r.repo.ListByCustomer(ctx, customerKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer orders")
	}
	return newRecordDTOs(records), nil
}
