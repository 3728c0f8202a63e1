package catalog

import (
	"time"
)

// Product represents a catalog item. DemandForecast and OptimizedPrice are
// derived values: recomputed on every create/update and on the listings that
// serve them, never independently authoritative.
type Product struct {
	ID             int64    `json:"product_id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	CostPrice      float64  `json:"cost_price"`
	SellingPrice   float64  `json:"selling_price"`
	Category       string   `json:"category"`
	StockAvailable int      `json:"stock_available"`
	UnitsSold      int      `json:"units_sold"`
	CustomerRating *float64 `json:"customer_rating"`
	DemandForecast float64  `json:"demand_forecast"`
	OptimizedPrice float64  `json:"optimized_price"`
	// CreatedBy is a weak reference to the creating user; nil for seeded or
	// legacy rows.
	CreatedBy *int64    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Filter narrows product listings.
type Filter struct {
	Search   string
	Category string
}
