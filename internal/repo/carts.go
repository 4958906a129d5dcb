package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amara-oss/backend-duka/internal/cart"
	"github.com/amara-oss/backend-duka/internal/pricing"
)

// CartStore persists carts and cart lines in Postgres.
type CartStore struct {
	Pool *pgxpool.Pool
}

const cartColumns = `id::text, anon_id, customer_id::text, discount_kind, discount_value, created_at, updated_at, expires_at`

const itemColumns = `id::text, cart_id::text, product_id::text, variant_id::text, qty, unit_price, subtotal`

// GetCart loads a cart by identifier.
func (s CartStore) GetCart(ctx context.Context, id uuid.UUID) (cart.Cart, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+cartColumns+` FROM carts WHERE id = $1`, id.String())
	return scanCart(row)
}

// GetActiveCartByAnon returns the newest unexpired cart for a device identifier.
func (s CartStore) GetActiveCartByAnon(ctx context.Context, anonID string, now time.Time) (cart.Cart, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT `+cartColumns+` FROM carts WHERE anon_id = $1 AND expires_at > $2 ORDER BY created_at DESC LIMIT 1`,
		anonID, now)
	return scanCart(row)
}

// CreateCart inserts a fresh cart with the default zero percentage discount.
func (s CartStore) CreateCart(ctx context.Context, anonID string, expiresAt time.Time) (cart.Cart, error) {
	row := s.Pool.QueryRow(ctx,
		`INSERT INTO carts (anon_id, expires_at) VALUES ($1, $2) RETURNING `+cartColumns,
		anonID, expiresAt)
	return scanCart(row)
}

// TouchCart extends the cart TTL.
func (s CartStore) TouchCart(ctx context.Context, id uuid.UUID, expiresAt time.Time) error {
	_, err := s.Pool.Exec(ctx,
		`UPDATE carts SET expires_at = $2, updated_at = now() WHERE id = $1`,
		id.String(), expiresAt)
	return err
}

// ListItems returns cart lines in insertion order.
func (s CartStore) ListItems(ctx context.Context, cartID uuid.UUID) ([]cart.Item, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT `+itemColumns+` FROM cart_items WHERE cart_id = $1 ORDER BY created_at`,
		cartID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []cart.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetItem loads a single cart line.
func (s CartStore) GetItem(ctx context.Context, itemID uuid.UUID) (cart.Item, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM cart_items WHERE id = $1`, itemID.String())
	return scanItem(row)
}

// FindItem locates the line for a (product, variant) pair within a cart.
func (s CartStore) FindItem(ctx context.Context, cartID, productID uuid.UUID, variantID *uuid.UUID) (cart.Item, error) {
	var variant any
	if variantID != nil {
		variant = variantID.String()
	}
	row := s.Pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM cart_items
		 WHERE cart_id = $1 AND product_id = $2 AND variant_id IS NOT DISTINCT FROM $3::uuid`,
		cartID.String(), productID.String(), variant)
	return scanItem(row)
}

// CreateItem inserts a new cart line.
func (s CartStore) CreateItem(ctx context.Context, item cart.Item) (cart.Item, error) {
	var variant any
	if item.VariantID != nil {
		variant = item.VariantID.String()
	}
	row := s.Pool.QueryRow(ctx,
		`INSERT INTO cart_items (cart_id, product_id, variant_id, qty, unit_price, subtotal)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+itemColumns,
		item.CartID.String(), item.ProductID.String(), variant, item.Qty, item.UnitPrice, item.Subtotal)
	return scanItem(row)
}

// UpdateItemQty replaces quantity and derived subtotal.
func (s CartStore) UpdateItemQty(ctx context.Context, itemID uuid.UUID, qty int, subtotal pricing.Money) error {
	tag, err := s.Pool.Exec(ctx,
		`UPDATE cart_items SET qty = $2, subtotal = $3, updated_at = now() WHERE id = $1`,
		itemID.String(), qty, subtotal)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrNotFound
	}
	return nil
}

// DeleteItem removes a line; deleting an absent line is not an error.
func (s CartStore) DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	_, err := s.Pool.Exec(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`,
		itemID.String(), cartID.String())
	return err
}

// DeleteItems empties a cart.
func (s CartStore) DeleteItems(ctx context.Context, cartID uuid.UUID) error {
	_, err := s.Pool.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID.String())
	return err
}

// SetDiscount stores the whole-cart discount.
func (s CartStore) SetDiscount(ctx context.Context, cartID uuid.UUID, d pricing.Discount) error {
	tag, err := s.Pool.Exec(ctx,
		`UPDATE carts SET discount_kind = $2, discount_value = $3, updated_at = now() WHERE id = $1`,
		cartID.String(), string(d.Kind), d.Value)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrNotFound
	}
	return nil
}

// SetCustomer links or detaches a customer reference.
func (s CartStore) SetCustomer(ctx context.Context, cartID uuid.UUID, customerID *uuid.UUID) error {
	var customer any
	if customerID != nil {
		customer = customerID.String()
	}
	tag, err := s.Pool.Exec(ctx,
		`UPDATE carts SET customer_id = $2::uuid, updated_at = now() WHERE id = $1`,
		cartID.String(), customer)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrNotFound
	}
	return nil
}

// DeleteExpired removes carts whose TTL elapsed. Lines go with them via the
// foreign key cascade.
func (s CartStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM carts WHERE expires_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanCart(row pgx.Row) (cart.Cart, error) {
	var (
		c          cart.Cart
		id         string
		customerID *string
		kind       string
	)
	err := row.Scan(&id, &c.AnonID, &customerID, &kind, &c.Discount.Value, &c.CreatedAt, &c.UpdatedAt, &c.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return cart.Cart{}, cart.ErrNotFound
		}
		return cart.Cart{}, err
	}
	c.ID, err = uuid.Parse(id)
	if err != nil {
		return cart.Cart{}, fmt.Errorf("parse cart id: %w", err)
	}
	c.Discount.Kind = pricing.ParseDiscountKind(kind)
	if customerID != nil {
		parsed, err := uuid.Parse(*customerID)
		if err != nil {
			return cart.Cart{}, fmt.Errorf("parse customer id: %w", err)
		}
		c.CustomerID = &parsed
	}
	return c, nil
}

func scanItem(row pgx.Row) (cart.Item, error) {
	var (
		it        cart.Item
		id        string
		cartID    string
		productID string
		variantID *string
	)
	err := row.Scan(&id, &cartID, &productID, &variantID, &it.Qty, &it.UnitPrice, &it.Subtotal)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return cart.Item{}, cart.ErrNotFound
		}
		return cart.Item{}, err
	}
	if it.ID, err = uuid.Parse(id); err != nil {
		return cart.Item{}, fmt.Errorf("parse item id: %w", err)
	}
	if it.CartID, err = uuid.Parse(cartID); err != nil {
		return cart.Item{}, fmt.Errorf("parse cart id: %w", err)
	}
	if it.ProductID, err = uuid.Parse(productID); err != nil {
		return cart.Item{}, fmt.Errorf("parse product id: %w", err)
	}
	if variantID != nil {
		parsed, err := uuid.Parse(*variantID)
		if err != nil {
			return cart.Item{}, fmt.Errorf("parse variant id: %w", err)
		}
		it.VariantID = &parsed
	}
	return it, nil
}
