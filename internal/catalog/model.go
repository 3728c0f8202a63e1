package catalog

import (
	"context"

	"github.com/priceopt/priceopt/internal/pricing"
)

// TrainForecaster fits the regression predictor on the current catalog. It
// returns pricing.ErrInsufficientData when fewer than three products exist;
// callers are expected to fall back to the seasonal formula in that case.
func TrainForecaster(ctx context.Context, repo Repository) (*pricing.RegressionForecaster, error) {
	products, err := repo.List(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	samples := make([]pricing.Sample, len(products))
	for i, p := range products {
		samples[i] = pricing.Sample{
			CostPrice:      p.CostPrice,
			SellingPrice:   p.SellingPrice,
			StockAvailable: p.StockAvailable,
			UnitsSold:      p.UnitsSold,
			CustomerRating: p.CustomerRating,
			DemandForecast: p.DemandForecast,
		}
	}
	return pricing.TrainRegression(samples)
}
