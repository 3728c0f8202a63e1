package catalog

// ProductForm carries the writable product fields on create.
type ProductForm struct {
	Name           string   `json:"name" validate:"required,max=200"`
	Description    string   `json:"description"`
	CostPrice      float64  `json:"cost_price" validate:"gte=0"`
	SellingPrice   float64  `json:"selling_price" validate:"gte=0"`
	Category       string   `json:"category" validate:"max=100"`
	StockAvailable int      `json:"stock_available" validate:"gte=0"`
	UnitsSold      int      `json:"units_sold" validate:"gte=0"`
	CustomerRating *float64 `json:"customer_rating" validate:"omitempty,gte=0,lte=5"`
}

// ProductPatch carries a partial update; nil fields are left unchanged.
type ProductPatch struct {
	Name           *string  `json:"name" validate:"omitempty,max=200"`
	Description    *string  `json:"description"`
	CostPrice      *float64 `json:"cost_price" validate:"omitempty,gte=0"`
	SellingPrice   *float64 `json:"selling_price" validate:"omitempty,gte=0"`
	Category       *string  `json:"category" validate:"omitempty,max=100"`
	StockAvailable *int     `json:"stock_available" validate:"omitempty,gte=0"`
	UnitsSold      *int     `json:"units_sold" validate:"omitempty,gte=0"`
	CustomerRating *float64 `json:"customer_rating" validate:"omitempty,gte=0,lte=5"`
}
