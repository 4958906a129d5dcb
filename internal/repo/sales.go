package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amara-oss/backend-duka/internal/checkout"
)

// SalesStore persists completed sales.
type SalesStore struct {
	Pool *pgxpool.Pool
}

// CreateSale implements checkout.SaleStore.
func (s SalesStore) CreateSale(ctx context.Context, sale checkout.Sale) (checkout.Sale, error) {
	var customer any
	if sale.CustomerID != nil {
		customer = sale.CustomerID.String()
	}
	var id string
	err := s.Pool.QueryRow(ctx,
		`INSERT INTO sales (cart_id, customer_id, subtotal, discount, tax, delivery_fee, total, delivery_method, delivery_area)
		 VALUES ($1, $2::uuid, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id::text, created_at`,
		sale.CartID.String(), customer, sale.Subtotal, sale.Discount, sale.Tax,
		sale.DeliveryFee, sale.Total, sale.Method, sale.Area).
		Scan(&id, &sale.CreatedAt)
	if err != nil {
		return checkout.Sale{}, err
	}
	sale.ID, err = uuid.Parse(id)
	if err != nil {
		return checkout.Sale{}, fmt.Errorf("parse sale id: %w", err)
	}
	return sale, nil
}
