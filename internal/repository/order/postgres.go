package order

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) CreateFromSession(ctx context.Context, in domain.Order) (*domain.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var existingID string
	err = tx.QueryRow(ctx, `SELECT id::text FROM orders WHERE session_id = $1`, in.SessionID).Scan(&existingID)
	switch {
	case err == nil:
		r.logger.Printf("order repo: session_id=%s already recorded order=%s", in.SessionID, existingID)
		return r.GetByID(ctx, existingID)
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, err
	}

	orderID := in.ID
	if orderID == "" {
		orderID = uuid.NewString()
	}
	const insertOrder = `
INSERT INTO orders (id, session_id, payment_intent_id, status, email, subtotal_cents, total_cents, currency)
VALUES ($1::uuid, $2, NULLIF($3, ''), $4, NULLIF($5, ''), $6, $7, $8)
RETURNING created_at
`
	created := in
	created.ID = orderID
	err = tx.QueryRow(ctx, insertOrder,
		orderID, in.SessionID, in.PaymentIntentID, string(in.Status),
		in.Email, in.SubtotalCents, in.TotalCents, in.Currency,
	).Scan(&created.CreatedAt)
	if err != nil {
		r.logger.Printf("order repo: insert session_id=%s error=%v", in.SessionID, err)
		return nil, err
	}

	const insertItem = `
INSERT INTO order_items (order_id, variant_id, product_name, quantity, unit_price_cents, currency)
VALUES ($1::uuid, $2, $3, $4, $5, $6)
`
	for i := range created.Items {
		created.Items[i].OrderID = orderID
		item := created.Items[i]
		if _, err := tx.Exec(ctx, insertItem,
			orderID, item.VariantID, item.ProductName, item.Quantity, item.UnitPriceCents, item.Currency,
		); err != nil {
			r.logger.Printf("order repo: insert item order=%s variant=%s error=%v", orderID, item.VariantID, err)
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: created order=%s session_id=%s items=%d", orderID, in.SessionID, len(created.Items))
	return &created, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
SELECT id::text, session_id, COALESCE(payment_intent_id, ''), status, COALESCE(email, ''),
       subtotal_cents, total_cents, currency, COALESCE(refunded_cents, 0), created_at
FROM orders
WHERE id = $1::uuid
`
	var o domain.Order
	var status string
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&o.ID, &o.SessionID, &o.PaymentIntentID, &status, &o.Email,
		&o.SubtotalCents, &o.TotalCents, &o.Currency, &o.RefundedCents, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: get id=%s error=%v", id, err)
		return nil, err
	}
	o.Status = domain.OrderStatus(status)

	const itemsQ = `
SELECT id::text, order_id::text, variant_id, product_name, quantity, unit_price_cents, currency
FROM order_items
WHERE order_id = $1::uuid
ORDER BY id
`
	rows, err := r.pool.Query(ctx, itemsQ, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.VariantID, &item.ProductName, &item.Quantity, &item.UnitPriceCents, &item.Currency); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepo) ListByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	const q = `
SELECT id::text, session_id, COALESCE(payment_intent_id, ''), status, COALESCE(email, ''),
       subtotal_cents, total_cents, currency, COALESCE(refunded_cents, 0), created_at
FROM orders
WHERE email = $1
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, email)
	if err != nil {
		r.logger.Printf("order repo: list email=%s error=%v", email, err)
		return nil, err
	}
	defer rows.Close()

	var (
		orders []domain.Order
		ids    []string
	)
	for rows.Next() {
		var o domain.Order
		var status string
		if err := rows.Scan(
			&o.ID, &o.SessionID, &o.PaymentIntentID, &status, &o.Email,
			&o.SubtotalCents, &o.TotalCents, &o.Currency, &o.RefundedCents, &o.CreatedAt,
		); err != nil {
			return nil, err
		}
		o.Status = domain.OrderStatus(status)
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	const itemsQ = `
SELECT id::text, order_id::text, variant_id, product_name, quantity, unit_price_cents, currency
FROM order_items
WHERE order_id = ANY($1::uuid[])
ORDER BY id
`
	itemRows, err := r.pool.Query(ctx, itemsQ, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	byOrder := make(map[string][]domain.OrderItem, len(ids))
	for itemRows.Next() {
		var item domain.OrderItem
		if err := itemRows.Scan(&item.ID, &item.OrderID, &item.VariantID, &item.ProductName, &item.Quantity, &item.UnitPriceCents, &item.Currency); err != nil {
			return nil, err
		}
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
	}
	return orders, nil
}

func (r *postgresRepo) UpdateStatusByPaymentIntent(ctx context.Context, paymentIntentID string, status domain.OrderStatus) error {
	const q = `UPDATE orders SET status = $2, updated_at = now() WHERE payment_intent_id = $1`
	tag, err := r.pool.Exec(ctx, q, paymentIntentID, string(status))
	if err != nil {
		r.logger.Printf("order repo: update status payment_intent=%s error=%v", paymentIntentID, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) UpdateRefund(ctx context.Context, paymentIntentID string, status domain.OrderStatus, refundedCents int64) error {
	const q = `
UPDATE orders SET status = $2, refunded_cents = $3, updated_at = now()
WHERE payment_intent_id = $1
`
	tag, err := r.pool.Exec(ctx, q, paymentIntentID, string(status), refundedCents)
	if err != nil {
		r.logger.Printf("order repo: update refund payment_intent=%s error=%v", paymentIntentID, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
