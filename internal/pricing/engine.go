// Package pricing computes demand forecasts and optimized prices for catalog
// products. All functions are pure: degenerate divisors are substituted with 1
// instead of failing, and adjustment factors are clamped to [0.8, 1.5].
package pricing

import "math"

const (
	factorFloor = 0.8
	factorCeil  = 1.5
)

// Forecaster produces a demand forecast for a product. Implementations may be
// statistical models; the engine falls back to the seasonal formula when no
// forecaster is available or it declines to predict.
type Forecaster interface {
	Predict(costPrice, sellingPrice float64, stockAvailable, unitsSold int, customerRating *float64) (float64, bool)
}

// DemandForecast derives expected demand from sales and stock levels.
// The seasonal factor is stock/units clamped to [0.8, 1.5]; zero values are
// treated as 1 to avoid division by zero.
func DemandForecast(unitsSold, stockAvailable int) float64 {
	units := unitsSold
	if units == 0 {
		units = 1
	}
	stock := stockAvailable
	if stock == 0 {
		stock = 1
	}
	factor := clamp(float64(stock) / float64(units))
	return round2(float64(units) * factor)
}

// OptimizedPrice blends cost and selling price by relative demand strength.
// avgDemand of zero is treated as 1.
func OptimizedPrice(costPrice, sellingPrice, demandForecast, avgDemand float64) float64 {
	avg := avgDemand
	if avg == 0 {
		avg = 1
	}
	factor := clamp(demandForecast / avg)
	return round2(costPrice + (sellingPrice-costPrice)*factor)
}

// FleetAverage returns the mean of the given forecasts, or 0 for an empty
// fleet (callers substitute per the zero-divisor rule in OptimizedPrice).
func FleetAverage(forecasts []float64) float64 {
	if len(forecasts) == 0 {
		return 0
	}
	var sum float64
	for _, f := range forecasts {
		sum += f
	}
	return sum / float64(len(forecasts))
}

func clamp(v float64) float64 {
	return math.Min(factorCeil, math.Max(factorFloor, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
