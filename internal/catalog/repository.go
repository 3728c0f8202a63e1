package catalog

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/priceopt/priceopt/internal/shared"
)

// Repository persists catalog products.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, product Product) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const productColumns = `product_id, name, description, cost_price, selling_price, category,
	stock_available, units_sold, customer_rating, demand_forecast, optimized_price,
	created_by, created_at, updated_at`

func (r *repository) List(ctx context.Context, filter Filter) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filter.Search != "" {
		argCount++
		query += ` AND name ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Category != "" {
		argCount++
		query += ` AND category = $` + strconv.Itoa(argCount)
		args = append(args, filter.Category)
	}
	query += ` ORDER BY product_id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE product_id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	query := `INSERT INTO products (name, description, cost_price, selling_price, category,
		stock_available, units_sold, customer_rating, demand_forecast, optimized_price,
		created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING product_id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query,
		product.Name, product.Description, product.CostPrice, product.SellingPrice, product.Category,
		product.StockAvailable, product.UnitsSold, product.CustomerRating,
		product.DemandForecast, product.OptimizedPrice, product.CreatedBy, now, now,
	).Scan(&product.ID)
	if err != nil {
		return Product{}, err
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	return product, nil
}

func (r *repository) Update(ctx context.Context, product Product) error {
	query := `UPDATE products SET name = $1, description = $2, cost_price = $3, selling_price = $4,
		category = $5, stock_available = $6, units_sold = $7, customer_rating = $8,
		demand_forecast = $9, optimized_price = $10, updated_at = $11
		WHERE product_id = $12`
	tag, err := r.db.Exec(ctx, query,
		product.Name, product.Description, product.CostPrice, product.SellingPrice,
		product.Category, product.StockAvailable, product.UnitsSold, product.CustomerRating,
		product.DemandForecast, product.OptimizedPrice, time.Now(), product.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE product_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CostPrice, &p.SellingPrice, &p.Category,
		&p.StockAvailable, &p.UnitsSold, &p.CustomerRating, &p.DemandForecast, &p.OptimizedPrice,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
