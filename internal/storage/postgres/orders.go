package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type orderRepository struct {
	storage *Storage
}

const orderColumns = `id, user_id, total, status, promo_code, discount_amount, shipping_address,
                      COALESCE(stripe_session_id, ''), stripe_payment_intent_id, tracking_number, created_at, updated_at`

func scanOrder(row pgx.Row) (model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.PromoCode, &o.DiscountAmount, &o.ShippingAddress,
		&o.StripeSessionID, &o.PaymentIntentID, &o.TrackingNumber, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func scanOrderRows(rows pgx.Rows) (model.Order, error) {
	return scanOrder(rows)
}

func (r *orderRepository) FindBySessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	o, err := scanOrder(r.storage.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE stripe_session_id=$1`, sessionID))
	if err != nil {
		return nil, mapRowErr(err)
	}
	return &o, nil
}

// CreateWithItems writes the session id in the same statement as the order, so
// the UNIQUE constraint on stripe_session_id is the idempotency guard.
func (r *orderRepository) CreateWithItems(ctx context.Context, order model.NewOrder) (uuid.UUID, error) {
	const (
		insertOrder = `INSERT INTO orders (user_id, total, status, promo_code, discount_amount, shipping_address, stripe_session_id)
                       VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
		insertItem = `INSERT INTO order_items (order_id, product_id, product_name, quantity, price) VALUES ($1, $2, $3, $4, $5)`
		takeStock  = `UPDATE products SET stock = stock - $1, updated_at=NOW() WHERE id=$2 AND stock >= $1`
	)

	var id uuid.UUID
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, insertOrder, order.UserID, order.Total, model.OrderStatusPaid, order.PromoCode,
			order.DiscountAmount, order.ShippingAddress, order.StripeSessionID).Scan(&id)
		if err != nil {
			return err
		}

		for _, item := range order.Items {
			if _, err := tx.Exec(ctx, insertItem, id, item.ProductID, item.ProductName, item.Quantity, item.Price); err != nil {
				return err
			}
			tag, err := tx.Exec(ctx, takeStock, item.Quantity, item.ProductID)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("product %s: %w", item.ProductID, domainErrors.ErrInsufficientStock)
			}
		}
		return nil
	})
	if err == nil {
		return id, nil
	}

	if isUniqueViolation(err) {
		existing, lookupErr := r.FindBySessionID(ctx, order.StripeSessionID)
		if lookupErr != nil {
			return uuid.Nil, fmt.Errorf("lookup concurrent order: %w", lookupErr)
		}
		return existing.ID, domainErrors.ErrAlreadyExists
	}
	return uuid.Nil, err
}

func (r *orderRepository) AttachPaymentLinkage(ctx context.Context, orderID uuid.UUID, sessionID, paymentIntentID string) error {
	const query = `UPDATE orders SET stripe_session_id=$2, stripe_payment_intent_id=$3, updated_at=NOW() WHERE id=$1`
	return expectAffected(r.storage.pool.Exec(ctx, query, orderID, sessionID, paymentIntentID))
}

func (r *orderRepository) RecordCompensation(ctx context.Context, c model.Compensation) error {
	const query = `INSERT INTO compensated_sessions (stripe_session_id, stripe_payment_intent_id, refund_id, reason)
                   VALUES ($1, $2, $3, $4) ON CONFLICT (stripe_session_id) DO NOTHING`
	_, err := r.storage.pool.Exec(ctx, query, c.SessionID, c.PaymentIntentID, c.RefundID, c.Reason)
	return err
}

func (r *orderRepository) FindCompensation(ctx context.Context, sessionID string) (*model.Compensation, error) {
	const query = `SELECT stripe_session_id, stripe_payment_intent_id, refund_id, reason, created_at
                   FROM compensated_sessions WHERE stripe_session_id=$1`
	var c model.Compensation
	err := r.storage.pool.QueryRow(ctx, query, sessionID).Scan(&c.SessionID, &c.PaymentIntentID, &c.RefundID, &c.Reason, &c.CreatedAt)
	if err != nil {
		return nil, mapRowErr(err)
	}
	return &c, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	o, err := scanOrder(r.storage.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if err != nil {
		return nil, mapRowErr(err)
	}
	orders := []model.Order{o}
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	rows, err := r.storage.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	orders, err := collect(rows, scanOrderRows)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) List(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `SELECT ` + orderColumns + ` FROM orders
                   WHERE ($1 = '' OR status = $1)
                   ORDER BY created_at DESC LIMIT $2`
	rows, err := r.storage.pool.Query(ctx, query, string(status), limit)
	if err != nil {
		return nil, err
	}
	orders, err := collect(rows, scanOrderRows)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(orders))
	index := make(map[uuid.UUID]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	const query = `SELECT order_id, product_id, product_name, quantity, price FROM order_items
                   WHERE order_id = ANY($1) ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID uuid.UUID
			item    model.OrderItem
		)
		if err := rows.Scan(&orderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Price); err != nil {
			return err
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return rows.Err()
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, trackingNumber string) error {
	const query = `UPDATE orders
                   SET status=$2, tracking_number=CASE WHEN $3 <> '' THEN $3 ELSE tracking_number END, updated_at=NOW()
                   WHERE id=$1`
	return expectAffected(r.storage.pool.Exec(ctx, query, id, status, trackingNumber))
}

func (r *orderRepository) CancelAndRestoreStock(ctx context.Context, id uuid.UUID) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var status model.OrderStatus
		if err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&status); err != nil {
			return mapRowErr(err)
		}
		if status == model.OrderStatusCancelled {
			return domainErrors.ErrInvalidTransition
		}
		if _, err := tx.Exec(ctx, `UPDATE orders SET status=$2, updated_at=NOW() WHERE id=$1`, id, model.OrderStatusCancelled); err != nil {
			return err
		}
		const restore = `UPDATE products p SET stock = p.stock + oi.quantity, updated_at=NOW()
                         FROM order_items oi WHERE oi.order_id=$1 AND oi.product_id = p.id`
		_, err := tx.Exec(ctx, restore, id)
		return err
	})
}

func (r *orderRepository) HasPurchased(ctx context.Context, userID int64, productID uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS (
                       SELECT 1 FROM orders o JOIN order_items oi ON oi.order_id = o.id
                       WHERE o.user_id=$1 AND oi.product_id=$2 AND o.status <> $3)`
	var ok bool
	if err := r.storage.pool.QueryRow(ctx, query, userID, productID, model.OrderStatusCancelled).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
