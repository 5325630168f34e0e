package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/fastfood-backend/internal/cart"
	"github.com/angelmondragon/fastfood-backend/internal/catalog"
	"github.com/angelmondragon/fastfood-backend/internal/orders"
	"github.com/angelmondragon/fastfood-backend/pkg/db"
	"github.com/angelmondragon/fastfood-backend/pkg/db/dbtest"
	"github.com/angelmondragon/fastfood-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fastfood-backend/pkg/errors"
	"github.com/angelmondragon/fastfood-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixedCatalog map[int64]catalog.ItemSnapshot

func (c fixedCatalog) GetItem(_ context.Context, id int64) (*catalog.ItemSnapshot, error) {
	it, ok := c[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	}
	return &it, nil
}

type recorder struct {
	mu       sync.Mutex
	outcomes []string
	totals   []decimal.Decimal
}

func (r *recorder) ObserveSuccess(_ int, total decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, metrics.OutcomeSuccess)
	r.totals = append(r.totals, total)
}

func (r *recorder) IncOutcome(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

type fixture struct {
	client  *db.Client
	carts   cart.Service
	lines   *cart.Repository
	history orders.Repository
	rec     *recorder
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := dbtest.Open(t)
	lines := cart.NewRepository(client.DB())
	carts, err := cart.NewService(lines, fixedCatalog{
		1: {ID: 1, Name: "Burger", Price: decimal.RequireFromString("5.99"), IsAvailable: true},
		2: {ID: 2, Name: "Pizza", Price: decimal.RequireFromString("8.99"), IsAvailable: true},
	})
	require.NoError(t, err)
	return &fixture{
		client:  client,
		carts:   carts,
		lines:   lines,
		history: orders.NewRepository(client.DB()),
		rec:     &recorder{},
		now:     time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC),
	}
}

func (f *fixture) service(t *testing.T, lines cart.LineRepository) Service {
	t.Helper()
	svc, err := NewService(f.client, lines, f.history, WithClock(func() time.Time { return f.now }))
	require.NoError(t, err)
	svc.(*service).metrics = f.rec
	return svc
}

func TestCheckoutDrainsCartIntoHistory(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	key := cart.UserKey(uuid.New())

	_, err := f.carts.AddItem(ctx, key, 1, 1)
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, key, 1, 1)
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, key, 2, 1)
	require.NoError(t, err)

	result, err := f.service(t, f.lines).Checkout(ctx, key, "Alice")
	require.NoError(t, err)
	assert.Equal(t, 2, result.RecordCount)
	assert.Equal(t, "20.97", result.TotalCharged.StringFixed(2))
	assert.True(t, result.OrderedAt.Equal(f.now))

	remaining, err := f.carts.ListLines(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	records, err := f.history.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	byName := map[string]int{}
	for _, r := range records {
		assert.Equal(t, "Alice", r.CustomerName)
		assert.Equal(t, key, r.CustomerKey)
		assert.True(t, r.OrderedAt.Equal(f.now))
		byName[r.ItemName] = r.Quantity
	}
	assert.Equal(t, map[string]int{"Burger": 2, "Pizza": 1}, byName)
	assert.Equal(t, []string{metrics.OutcomeSuccess}, f.rec.outcomes)
}

func TestCheckoutEmptyCartLeavesHistoryUntouched(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service(t, f.lines).Checkout(ctx, cart.GuestKey(uuid.New()), "Khách")
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	assert.Equal(t, "cart is empty", pkgerrors.As(err).Message())

	records, err := f.history.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, []string{metrics.OutcomeEmptyCart}, f.rec.outcomes)
}

func TestCheckoutRequiresCustomerName(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	_, err := f.service(t, f.lines).Checkout(context.Background(), cart.GuestKey(uuid.New()), "  ")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

// vanishingLines simulates a concurrent writer removing one line between
// the read and the drain.
type vanishingLines struct {
	cart.LineRepository
}

func (v vanishingLines) WithTx(tx *gorm.DB) cart.LineRepository {
	return vanishingLines{LineRepository: v.LineRepository.WithTx(tx)}
}

func (v vanishingLines) DeleteSnapshot(ctx context.Context, cartKey string, lines []models.CartLine) (int64, error) {
	return v.LineRepository.DeleteSnapshot(ctx, cartKey, lines[1:])
}

// growingLines simulates a concurrent add landing on an existing line after
// the read, so the line survives with a different quantity.
type growingLines struct {
	cart.LineRepository
}

func (g growingLines) WithTx(tx *gorm.DB) cart.LineRepository {
	return growingLines{LineRepository: g.LineRepository.WithTx(tx)}
}

func (g growingLines) DeleteSnapshot(ctx context.Context, cartKey string, lines []models.CartLine) (int64, error) {
	first := lines[0]
	if _, err := g.AddOrIncrement(ctx, &models.CartLine{
		CartKey:   cartKey,
		ItemID:    first.ItemID,
		Name:      first.Name,
		UnitPrice: first.UnitPrice,
		Quantity:  1,
	}); err != nil {
		return 0, err
	}
	return g.LineRepository.DeleteSnapshot(ctx, cartKey, lines)
}

func TestCheckoutRollsBackWhenCartChanges(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	key := cart.UserKey(uuid.New())

	_, err := f.carts.AddItem(ctx, key, 1, 2)
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, key, 2, 1)
	require.NoError(t, err)

	_, err = f.service(t, vanishingLines{LineRepository: f.lines}).Checkout(ctx, key, "Alice")
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeConflict))

	records, err := f.history.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	lines, err := f.carts.ListLines(ctx, key)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
	assert.Equal(t, []string{metrics.OutcomeConflict}, f.rec.outcomes)
}

func TestCheckoutRollsBackWhenLineIncremented(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	key := cart.UserKey(uuid.New())

	_, err := f.carts.AddItem(ctx, key, 1, 2)
	require.NoError(t, err)

	_, err = f.service(t, growingLines{LineRepository: f.lines}).Checkout(ctx, key, "Alice")
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeConflict))

	records, err := f.history.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	lines, err := f.carts.ListLines(ctx, key)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, []string{metrics.OutcomeConflict}, f.rec.outcomes)
}

func TestConcurrentCheckoutsWriteHistoryOnce(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	key := cart.UserKey(uuid.New())
	_, err := f.carts.AddItem(ctx, key, 1, 3)
	require.NoError(t, err)

	svc := f.service(t, f.lines)
	const attempts = 4
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Checkout(ctx, key, "Alice")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok int
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation) || pkgerrors.Is(err, pkgerrors.CodeConflict), err.Error())
	}
	assert.Equal(t, 1, ok)

	records, err := f.history.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 3, records[0].Quantity)
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	f := newFixture(t)
	_, err := NewService(nil, f.lines, f.history)
	assert.Error(t, err)
	_, err = NewService(f.client, nil, f.history)
	assert.Error(t, err)
	_, err = NewService(f.client, f.lines, nil)
	assert.Error(t, err)
}
