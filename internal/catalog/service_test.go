package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/angelmondragon/fastfood-backend/pkg/db/dbtest"
	"github.com/angelmondragon/fastfood-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fastfood-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	mu          sync.Mutex
	items       map[int64]ItemSnapshot
	invalidated []int64
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[int64]ItemSnapshot{}}
}

func (c *memoryCache) Get(_ context.Context, id int64) (*ItemSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.items[id]
	if !ok {
		return nil, ErrCacheMiss
	}
	return &s, nil
}

func (c *memoryCache) Set(_ context.Context, s *ItemSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[s.ID] = *s
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

func newTestService(t *testing.T) (Service, *Repository, *memoryCache) {
	t.Helper()
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	cache := newMemoryCache()
	svc, err := NewService(repo, cache, nil)
	require.NoError(t, err)
	return svc, repo, cache
}

func burgerCategory(t *testing.T, repo *Repository) int64 {
	t.Helper()
	categories, err := repo.ListCategories(context.Background())
	require.NoError(t, err)
	for _, c := range categories {
		if c.Name == "Burger" {
			return c.ID
		}
	}
	t.Fatal("seed category Burger missing")
	return 0
}

func TestCreateItemAppliesDefaults(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newTestService(t)

	item, err := svc.CreateItem(context.Background(), ItemInput{
		Name:       "  Cheeseburger ",
		Price:      decimal.RequireFromString("5.99"),
		CategoryID: burgerCategory(t, repo),
	})
	require.NoError(t, err)

	assert.Equal(t, "Cheeseburger", item.Name)
	assert.Equal(t, DefaultDescription, item.Description)
	assert.Equal(t, DefaultImageURL, item.ImageURL)
	assert.True(t, item.IsAvailable)
	require.NotNil(t, item.Category)
	assert.Equal(t, "Burger", item.Category.Name)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("5.99")))
}

func TestCreateItemValidation(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newTestService(t)
	categoryID := burgerCategory(t, repo)

	cases := map[string]ItemInput{
		"blank name":       {Name: " ", Price: decimal.NewFromInt(1), CategoryID: categoryID},
		"negative price":   {Name: "x", Price: decimal.NewFromInt(-1), CategoryID: categoryID},
		"unknown category": {Name: "x", Price: decimal.NewFromInt(1), CategoryID: 9999},
	}
	for name, input := range cases {
		_, err := svc.CreateItem(context.Background(), input)
		require.Error(t, err, name)
		assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation), name)
	}
}

func TestGetItemReadsThroughCache(t *testing.T) {
	t.Parallel()
	svc, repo, cache := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateItem(ctx, ItemInput{Name: "Fries", Price: decimal.RequireFromString("2.50"), CategoryID: burgerCategory(t, repo)})
	require.NoError(t, err)

	snap, err := svc.GetItem(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fries", snap.Name)
	assert.True(t, snap.IsAvailable)

	cache.mu.Lock()
	_, cached := cache.items[created.ID]
	cache.mu.Unlock()
	assert.True(t, cached)

	// a row change behind the cache stays invisible until invalidated
	require.NoError(t, repo.db.Model(&models.MenuItem{}).Where("id = ?", created.ID).Update("name", "Curly Fries").Error)
	snap, err = svc.GetItem(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fries", snap.Name)
}

func TestGetItemNotFound(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)

	_, err := svc.GetItem(context.Background(), 424242)
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestUpdateItemInvalidatesSnapshot(t *testing.T) {
	t.Parallel()
	svc, repo, cache := newTestService(t)
	ctx := context.Background()
	categoryID := burgerCategory(t, repo)

	created, err := svc.CreateItem(ctx, ItemInput{Name: "Cola", Price: decimal.RequireFromString("1.50"), CategoryID: categoryID})
	require.NoError(t, err)
	_, err = svc.GetItem(ctx, created.ID)
	require.NoError(t, err)

	unavailable := false
	updated, err := svc.UpdateItem(ctx, created.ID, ItemInput{
		Name:        "Cola Zero",
		Price:       decimal.RequireFromString("1.75"),
		IsAvailable: &unavailable,
		CategoryID:  categoryID,
	})
	require.NoError(t, err)
	assert.False(t, updated.IsAvailable)
	assert.Contains(t, cache.invalidated, created.ID)

	snap, err := svc.GetItem(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cola Zero", snap.Name)
	assert.False(t, snap.IsAvailable)
}

func TestUpdateMissingItem(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newTestService(t)
	_, err := svc.UpdateItem(context.Background(), 777, ItemInput{Name: "x", CategoryID: burgerCategory(t, repo)})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestDeleteItemIsSilentForUnknownID(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	require.NoError(t, svc.DeleteItem(context.Background(), 31337))
}

func TestSearchFilters(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	burger := burgerCategory(t, repo)

	sides, err := svc.CreateCategory(ctx, "Sides")
	require.NoError(t, err)

	for _, in := range []ItemInput{
		{Name: "Cheeseburger", Price: decimal.RequireFromString("5.99"), CategoryID: burger},
		{Name: "Double Burger", Price: decimal.RequireFromString("8.99"), CategoryID: burger},
		{Name: "Onion Rings", Price: decimal.RequireFromString("3.00"), CategoryID: sides.ID},
	} {
		_, err := svc.CreateItem(ctx, in)
		require.NoError(t, err)
	}

	names := func(items []ItemDTO) []string {
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, it.Name)
		}
		return out
	}

	got, err := svc.Search(ctx, SearchFilter{Keyword: "BURGER"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cheeseburger", "Double Burger"}, names(got))

	lo := decimal.RequireFromString("4")
	hi := decimal.RequireFromString("6")
	got, err = svc.Search(ctx, SearchFilter{MinPrice: &lo, MaxPrice: &hi})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cheeseburger"}, names(got))

	got, err = svc.Search(ctx, SearchFilter{CategoryID: &sides.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"Onion Rings"}, names(got))

	_, err = svc.Search(ctx, SearchFilter{MinPrice: &hi, MaxPrice: &lo})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestCategoryLifecycle(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateCategory(ctx, "Drinks")
	require.NoError(t, err)

	_, err = svc.CreateCategory(ctx, "Drinks")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = svc.CreateItem(ctx, ItemInput{Name: "Tea", Price: decimal.NewFromInt(1), CategoryID: created.ID})
	require.NoError(t, err)
	assert.True(t, pkgerrors.Is(svc.DeleteCategory(ctx, created.ID), pkgerrors.CodeValidation))

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 3)
}
