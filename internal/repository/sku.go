package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/satorioh/dashop/internal/entity"
)

// Catalog is the read-only catalog view used outside the commit
// transaction (cart listing, confirm page).
type Catalog interface {
	GetSKU(ctx context.Context, id int) (*entity.SKU, error)
	GetSKUsByIDs(ctx context.Context, ids []int) ([]*entity.SKU, error)
}

type SKURepository struct {
	db *sql.DB
}

func NewSKURepository(db *sql.DB) *SKURepository {
	return &SKURepository{db}
}

const skuColumns = `id, name, price, stock, sales, is_launched, default_image_url, sale_attrs`

func (r *SKURepository) GetSKU(ctx context.Context, id int) (*entity.SKU, error) {
	query := `SELECT ` + skuColumns + ` FROM skus WHERE id = ?`
	return scanSKU(r.db.QueryRowContext(ctx, query, id))
}

func (r *SKURepository) GetSKUsByIDs(ctx context.Context, ids []int) ([]*entity.SKU, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + skuColumns + ` FROM skus WHERE id IN (?` + strings.Repeat(",?", len(ids)-1) + `)`
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var skus []*entity.SKU
	for rows.Next() {
		sku, err := scanSKU(rows)
		if err != nil {
			return nil, err
		}
		skus = append(skus, sku)
	}
	return skus, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSKU(row rowScanner) (*entity.SKU, error) {
	var sku entity.SKU
	var attrs sql.NullString
	err := row.Scan(&sku.ID, &sku.Name, &sku.Price, &sku.Stock, &sku.Sales, &sku.IsLaunched, &sku.DefaultImageURL, &attrs)
	if err != nil {
		return nil, err
	}
	if attrs.Valid && attrs.String != "" {
		// sale_attrs holds a JSON array of display strings
		_ = json.Unmarshal([]byte(attrs.String), &sku.SaleAttrs)
	}
	return &sku, nil
}
