package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/fastfood-backend/internal/cart"
	"github.com/angelmondragon/fastfood-backend/internal/orders"
	"github.com/angelmondragon/fastfood-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fastfood-backend/pkg/errors"
	"github.com/angelmondragon/fastfood-backend/pkg/metrics"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outcomeRecorder interface {
	ObserveSuccess(lineCount int, total decimal.Decimal)
	IncOutcome(outcome string)
}

// Service drains carts into order history.
type Service interface {
	Checkout(ctx context.Context, cartKey, customerName string) (*Result, error)
}

// Result describes a completed checkout. Payment is simulated and always succeeds.
type Result struct {
	RecordCount  int             `json:"record_count"`
	TotalCharged decimal.Decimal `json:"total_charged"`
	OrderedAt    time.Time       `json:"ordered_at"`
}

type service struct {
	tx      txRunner
	carts   cart.LineRepository
	history orders.Repository
	metrics outcomeRecorder
	now     func() time.Time
}

// Option customizes the checkout service.
type Option func(*service)

// WithClock overrides the time source used for ordered_at.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMetrics records checkout outcomes.
func WithMetrics(m *metrics.CheckoutMetrics) Option {
	return func(s *service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewService builds the checkout engine.
func NewService(tx txRunner, carts cart.LineRepository, history orders.Repository, opts ...Option) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if history == nil {
		return nil, fmt.Errorf("order history repository required")
	}
	s := &service{
		tx:      tx,
		carts:   carts,
		history: history,
		metrics: noopRecorder{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

var (
	errEmptyCart    = pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	errCartChanged  = pkgerrors.New(pkgerrors.CodeConflict, "cart changed during checkout")
	errCustomerName = pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
)

// Checkout copies every line of the cart into order history and empties the
// cart in one transaction. The lines are read FOR UPDATE and deleted only at
// the quantity that was recorded; if another writer removed or incremented a
// line anyway, nothing is written.
func (s *service) Checkout(ctx context.Context, cartKey, customerName string) (*Result, error) {
	if strings.TrimSpace(cartKey) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart key required")
	}
	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		return nil, errCustomerName
	}

	var result Result
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		lines, err := carts.LockByCartKey(ctx, cartKey)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart lines")
		}
		if len(lines) == 0 {
			return errEmptyCart
		}

		orderedAt := s.now().UTC()
		records := make([]models.OrderHistoryRecord, 0, len(lines))
		for _, line := range lines {
			records = append(records, models.OrderHistoryRecord{
				ItemID:       line.ItemID,
				ItemName:     line.Name,
				CustomerName: customerName,
				CustomerKey:  cartKey,
				Quantity:     line.Quantity,
				UnitPrice:    line.UnitPrice,
				OrderedAt:    orderedAt,
			})
		}

		if err := s.history.WithTx(tx).InsertRecords(ctx, records); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order history")
		}

		deleted, err := carts.DeleteSnapshot(ctx, cartKey, lines)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "drain cart")
		}
		if deleted != int64(len(lines)) {
			return errCartChanged
		}

		result = Result{
			RecordCount:  len(records),
			TotalCharged: cart.SumLines(lines),
			OrderedAt:    orderedAt,
		}
		return nil
	})
	if err != nil {
		s.metrics.IncOutcome(outcomeFor(err))
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checkout")
	}

	s.metrics.ObserveSuccess(result.RecordCount, result.TotalCharged)
	return &result, nil
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, errEmptyCart):
		return metrics.OutcomeEmptyCart
	case errors.Is(err, errCartChanged):
		return metrics.OutcomeConflict
	default:
		return metrics.OutcomeError
	}
}

type noopRecorder struct{}

func (noopRecorder) ObserveSuccess(int, decimal.Decimal) {}
func (noopRecorder) IncOutcome(string)                   {}
