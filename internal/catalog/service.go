package catalog

import (
	"context"
	"fmt"

	"github.com/priceopt/priceopt/internal/auth"
	"github.com/priceopt/priceopt/internal/platform/httpx"
	"github.com/priceopt/priceopt/internal/pricing"
	"github.com/priceopt/priceopt/internal/shared"
)

// Service implements catalog business rules on top of the repository and the
// pricing engine.
type Service struct {
	repo       Repository
	forecaster pricing.Forecaster
}

// NewService constructs a Service. forecaster may be nil, in which case the
// deterministic seasonal formula is used for every forecast.
func NewService(repo Repository, forecaster pricing.Forecaster) *Service {
	return &Service{repo: repo, forecaster: forecaster}
}

// List returns products matching the filter. Stored derived values are
// returned as-is; only the forecast/optimized listings recompute them.
func (s *Service) List(ctx context.Context, filter Filter) ([]Product, error) {
	return s.repo.List(ctx, filter)
}

// Get fetches a single product.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, fmt.Errorf("%w: invalid product id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Forecasts returns every product with its demand forecast recomputed live.
func (s *Service) Forecasts(ctx context.Context) ([]Product, error) {
	products, err := s.repo.List(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].DemandForecast = s.forecast(products[i])
	}
	return products, nil
}

// Optimized returns products with optimized prices computed against the fleet
// average demand. The average always spans the full catalog; the category
// filter only narrows the response.
func (s *Service) Optimized(ctx context.Context, category string) ([]Product, error) {
	all, err := s.repo.List(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	forecasts := make([]float64, len(all))
	for i := range all {
		forecasts[i] = s.forecast(all[i])
	}
	avg := pricing.FleetAverage(forecasts)

	var result []Product
	for i, p := range all {
		if category != "" && p.Category != category {
			continue
		}
		p.DemandForecast = forecasts[i]
		p.OptimizedPrice = pricing.OptimizedPrice(p.CostPrice, p.SellingPrice, forecasts[i], avg)
		result = append(result, p)
	}
	return result, nil
}

// Create persists a new product with derived values. A brand-new product has
// no fleet context, so its own forecast stands in for the average and the
// demand factor starts at 1.0.
func (s *Service) Create(ctx context.Context, caller *shared.Principal, form ProductForm) (Product, error) {
	product := Product{
		Name:           form.Name,
		Description:    form.Description,
		CostPrice:      form.CostPrice,
		SellingPrice:   form.SellingPrice,
		Category:       form.Category,
		StockAvailable: form.StockAvailable,
		UnitsSold:      form.UnitsSold,
		CustomerRating: form.CustomerRating,
	}
	if caller != nil {
		id := caller.UserID
		product.CreatedBy = &id
	}
	product.DemandForecast = s.forecast(product)
	product.OptimizedPrice = pricing.OptimizedPrice(
		product.CostPrice, product.SellingPrice, product.DemandForecast, product.DemandForecast)
	return s.repo.Create(ctx, product)
}

// Update applies a partial update and recomputes derived values against the
// fleet. Suppliers may only update products they created; other roles holding
// the update grant are not ownership-restricted.
func (s *Service) Update(ctx context.Context, caller *shared.Principal, id int64, patch ProductPatch) (Product, error) {
	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if caller != nil && caller.Role == string(auth.RoleSupplier) {
		if product.CreatedBy == nil || *product.CreatedBy != caller.UserID {
			return Product{}, fmt.Errorf("%w: suppliers can only edit their own products", httpx.ErrForbidden)
		}
	}

	applyPatch(&product, patch)
	product.DemandForecast = s.forecast(product)

	all, err := s.repo.List(ctx, Filter{})
	if err != nil {
		return Product{}, err
	}
	forecasts := make([]float64, 0, len(all))
	for _, p := range all {
		if p.ID == product.ID {
			// Use the in-flight values, not the stale row.
			forecasts = append(forecasts, product.DemandForecast)
			continue
		}
		forecasts = append(forecasts, s.forecast(p))
	}
	avg := pricing.FleetAverage(forecasts)
	product.OptimizedPrice = pricing.OptimizedPrice(
		product.CostPrice, product.SellingPrice, product.DemandForecast, avg)

	if err := s.repo.Update(ctx, product); err != nil {
		return Product{}, err
	}
	return product, nil
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid product id", httpx.ErrValidation)
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) forecast(p Product) float64 {
	if s.forecaster != nil {
		if v, ok := s.forecaster.Predict(p.CostPrice, p.SellingPrice, p.StockAvailable, p.UnitsSold, p.CustomerRating); ok {
			return v
		}
	}
	return pricing.DemandForecast(p.UnitsSold, p.StockAvailable)
}

func applyPatch(p *Product, patch ProductPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.CostPrice != nil {
		p.CostPrice = *patch.CostPrice
	}
	if patch.SellingPrice != nil {
		p.SellingPrice = *patch.SellingPrice
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.StockAvailable != nil {
		p.StockAvailable = *patch.StockAvailable
	}
	if patch.UnitsSold != nil {
		p.UnitsSold = *patch.UnitsSold
	}
	if patch.CustomerRating != nil {
		p.CustomerRating = patch.CustomerRating
	}
}
