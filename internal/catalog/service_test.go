package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priceopt/priceopt/internal/catalog"
	"github.com/priceopt/priceopt/internal/platform/httpx"
	"github.com/priceopt/priceopt/internal/pricing"
	"github.com/priceopt/priceopt/internal/shared"
)

type mockRepo struct {
	products map[int64]catalog.Product
	nextID   int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{products: make(map[int64]catalog.Product), nextID: 1}
}

func (m *mockRepo) List(ctx context.Context, filter catalog.Filter) ([]catalog.Product, error) {
	var out []catalog.Product
	for id := int64(1); id < m.nextID; id++ {
		p, ok := m.products[id]
		if !ok {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *mockRepo) Get(ctx context.Context, id int64) (catalog.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return catalog.Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) Create(ctx context.Context, product catalog.Product) (catalog.Product, error) {
	product.ID = m.nextID
	m.nextID++
	m.products[product.ID] = product
	return product, nil
}

func (m *mockRepo) Update(ctx context.Context, product catalog.Product) error {
	if _, ok := m.products[product.ID]; !ok {
		return shared.ErrNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.products[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

// stubForecaster returns a fixed value for every product.
type stubForecaster struct {
	value float64
	ok    bool
}

func (s stubForecaster) Predict(costPrice, sellingPrice float64, stockAvailable, unitsSold int, customerRating *float64) (float64, bool) {
	return s.value, s.ok
}

func seedProduct(t *testing.T, svc *catalog.Service, caller *shared.Principal, form catalog.ProductForm) catalog.Product {
	t.Helper()
	p, err := svc.Create(context.Background(), caller, form)
	require.NoError(t, err)
	return p
}

func supplierPrincipal(id int64) *shared.Principal {
	return &shared.Principal{UserID: id, Email: "supplier@demo.com", Role: "supplier"}
}

func TestCreateDerivesForecastAndPrice(t *testing.T) {
	svc := catalog.NewService(newMockRepo(), nil)

	p := seedProduct(t, svc, supplierPrincipal(7), catalog.ProductForm{
		Name: "Widget", CostPrice: 10, SellingPrice: 20,
		Category: "tools", StockAvailable: 10, UnitsSold: 10,
	})

	// stock/units is exactly 1.0, so forecast equals units sold, and with no
	// fleet context the demand factor is 1.0 too.
	assert.Equal(t, 10.0, p.DemandForecast)
	assert.Equal(t, 20.0, p.OptimizedPrice)
	require.NotNil(t, p.CreatedBy)
	assert.Equal(t, int64(7), *p.CreatedBy)
}

func TestCreateWithoutPrincipal(t *testing.T) {
	svc := catalog.NewService(newMockRepo(), nil)

	p := seedProduct(t, svc, nil, catalog.ProductForm{
		Name: "Anon", CostPrice: 5, SellingPrice: 8, Category: "misc",
		StockAvailable: 4, UnitsSold: 2,
	})

	assert.Nil(t, p.CreatedBy)
}

func TestUpdateSupplierOwnershipEnforced(t *testing.T) {
	svc := catalog.NewService(newMockRepo(), nil)
	owner := supplierPrincipal(1)
	p := seedProduct(t, svc, owner, catalog.ProductForm{
		Name: "Widget", CostPrice: 10, SellingPrice: 20,
		Category: "tools", StockAvailable: 10, UnitsSold: 10,
	})

	other := supplierPrincipal(2)
	name := "Stolen"
	_, err := svc.Update(context.Background(), other, p.ID, catalog.ProductPatch{Name: &name})
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	updated, err := svc.Update(context.Background(), owner, p.ID, catalog.ProductPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Stolen", updated.Name)
}

func TestUpdateAdminNotOwnershipRestricted(t *testing.T) {
	svc := catalog.NewService(newMockRepo(), nil)
	p := seedProduct(t, svc, supplierPrincipal(1), catalog.ProductForm{
		Name: "Widget", CostPrice: 10, SellingPrice: 20,
		Category: "tools", StockAvailable: 10, UnitsSold: 10,
	})

	admin := &shared.Principal{UserID: 99, Email: "admin@demo.com", Role: "admin"}
	stock := 50
	updated, err := svc.Update(context.Background(), admin, p.ID, catalog.ProductPatch{StockAvailable: &stock})
	require.NoError(t, err)
	assert.Equal(t, 50, updated.StockAvailable)
}

func TestUpdateRecomputesAgainstFleet(t *testing.T) {
	svc := catalog.NewService(newMockRepo(), nil)
	// Two products with forecasts 10 and 30; fleet average 20.
	p := seedProduct(t, svc, nil, catalog.ProductForm{
		Name: "Low", CostPrice: 10, SellingPrice: 20, Category: "a",
		StockAvailable: 10, UnitsSold: 10,
	})
	seedProduct(t, svc, nil, catalog.ProductForm{
		Name: "High", CostPrice: 10, SellingPrice: 20, Category: "a",
		StockAvailable: 30, UnitsSold: 30,
	})

	// A no-op patch still recomputes: factor = 10/20 clamped to 0.8, so
	// optimized = 10 + (20-10)*0.8 = 18.
	updated, err := svc.Update(context.Background(), nil, p.ID, catalog.ProductPatch{})
	require.NoError(t, err)
	assert.Equal(t, 10.0, updated.DemandForecast)
	assert.Equal(t, 18.0, updated.OptimizedPrice)
}

func TestUpdateFleetAverageUsesInFlightValues(t *testing.T) {
	repo := newMockRepo()
	svc := catalog.NewService(repo, nil)
	p := seedProduct(t, svc, nil, catalog.ProductForm{
		Name: "Solo", CostPrice: 10, SellingPrice: 20, Category: "a",
		StockAvailable: 10, UnitsSold: 10,
	})

	// Patch changes the forecast; with a single product the average must track
	// the new forecast (factor 1.0), not the stale stored row.
	units := 40
	stock := 40
	updated, err := svc.Update(context.Background(), nil, p.ID, catalog.ProductPatch{UnitsSold: &units, StockAvailable: &stock})
	require.NoError(t, err)
	assert.Equal(t, 40.0, updated.DemandForecast)
	assert.Equal(t, 20.0, updated.OptimizedPrice)
}

func TestUpdateMissingProduct(t *testing.T) {
	svc := catalog.NewService(newMockRepo(), nil)
	name := "x"
	_, err := svc.Update(context.Background(), nil, 42, catalog.ProductPatch{Name: &name})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOptimizedFleetAverageSpansFullCatalog(t *testing.T) {
	svc := catalog.NewService(newMockRepo(), nil)
	seedProduct(t, svc, nil, catalog.ProductForm{
		Name: "Low", CostPrice: 10, SellingPrice: 20, Category: "a",
		StockAvailable: 10, UnitsSold: 10,
	})
	seedProduct(t, svc, nil, catalog.ProductForm{
		Name: "High", CostPrice: 10, SellingPrice: 20, Category: "b",
		StockAvailable: 30, UnitsSold: 30,
	})

	// Filtering to category "a" must not shrink the fleet: the average is
	// still 20, so the single returned product keeps the clamped 0.8 factor.
	result, err := svc.Optimized(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Low", result[0].Name)
	assert.Equal(t, 18.0, result[0].OptimizedPrice)

	all, err := svc.Optimized(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestForecastsUseModelWhenAvailable(t *testing.T) {
	svc := catalog.NewService(newMockRepo(), stubForecaster{value: 123.45, ok: true})
	seedProduct(t, svc, nil, catalog.ProductForm{
		Name: "Widget", CostPrice: 10, SellingPrice: 20, Category: "a",
		StockAvailable: 10, UnitsSold: 10,
	})

	products, err := svc.Forecasts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 123.45, products[0].DemandForecast)
}

func TestForecastsFallBackWhenModelDeclines(t *testing.T) {
	svc := catalog.NewService(newMockRepo(), stubForecaster{ok: false})
	seedProduct(t, svc, nil, catalog.ProductForm{
		Name: "Widget", CostPrice: 10, SellingPrice: 20, Category: "a",
		StockAvailable: 50, UnitsSold: 100,
	})

	products, err := svc.Forecasts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 80.0, products[0].DemandForecast)
}

func TestTrainForecasterNeedsThreeProducts(t *testing.T) {
	repo := newMockRepo()
	svc := catalog.NewService(repo, nil)
	seedProduct(t, svc, nil, catalog.ProductForm{
		Name: "One", CostPrice: 5, SellingPrice: 10, Category: "a",
		StockAvailable: 10, UnitsSold: 5,
	})

	_, err := catalog.TrainForecaster(context.Background(), repo)
	assert.ErrorIs(t, err, pricing.ErrInsufficientData)
}

func TestTrainForecasterLearnsCatalog(t *testing.T) {
	repo := newMockRepo()
	svc := catalog.NewService(repo, nil)
	// Forecasts follow units sold exactly (stock/units ratio fixed at 1.0), so
	// the fitted model must reproduce the relationship.
	for _, units := range []int{5, 10, 20, 40} {
		seedProduct(t, svc, nil, catalog.ProductForm{
			Name: "P", CostPrice: 5, SellingPrice: 10, Category: "a",
			StockAvailable: units, UnitsSold: units,
		})
	}

	model, err := catalog.TrainForecaster(context.Background(), repo)
	require.NoError(t, err)

	got, ok := model.Predict(5, 10, 30, 30, nil)
	require.True(t, ok)
	assert.InDelta(t, 30.0, got, 0.01)
}

func TestGetValidatesID(t *testing.T) {
	svc := catalog.NewService(newMockRepo(), nil)
	_, err := svc.Get(context.Background(), 0)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDeleteMissingProduct(t *testing.T) {
	svc := catalog.NewService(newMockRepo(), nil)
	err := svc.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
