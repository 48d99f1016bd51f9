package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"courier-dispatch/internal/domain"
)

// OrderRepo represents order repository.
type OrderRepo struct {
	db *pgxpool.Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(db *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{db: db}
}

// GetOrder returns the order, or nil when it does not exist.
func (r *OrderRepo) GetOrder(ctx context.Context, id string) (*domain.DeliveryOrder, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %q: %w", id, err)
	}
	return o, nil
}

// ListOrders returns orders matching f, oldest first.
func (r *OrderRepo) ListOrders(ctx context.Context, f domain.OrderFilter) ([]domain.DeliveryOrder, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(f.IDs) > 0 {
		where = append(where, "id = ANY("+arg(f.IDs)+")")
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		where = append(where, "status = ANY("+arg(statuses)+")")
	}
	if f.CourierID != nil {
		where = append(where, "courier_id = "+arg(*f.CourierID))
	}
	if f.Unassigned {
		where = append(where, "courier_id IS NULL")
	}

	q := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at, id"
	if f.Limit > 0 {
		q += " LIMIT " + arg(f.Limit)
	}

	return r.query(ctx, q, args...)
}

// ListOffers returns unassigned orders on offer that courierID has not rejected, oldest first.
func (r *OrderRepo) ListOffers(ctx context.Context, courierID int64, limit int) ([]domain.DeliveryOrder, error) {
	return r.query(ctx, `
        SELECT `+orderColumns+`
        FROM orders o
        WHERE o.status = 'offered'
          AND o.courier_id IS NULL
          AND NOT EXISTS (
              SELECT 1 FROM order_logs l
              WHERE l.order_id = o.id AND l.courier_id = $1 AND l.action = 'rejected'
          )
        ORDER BY o.created_at, o.id
        LIMIT $2
    `, courierID, limit)
}

// UpsertOffer inserts an offered order or refreshes one still on offer.
// It returns false when the order exists and has moved past the offer.
func (r *OrderRepo) UpsertOffer(ctx context.Context, o *domain.DeliveryOrder) (bool, error) {
	storeLat, storeLng := latLng(o.StoreCoordinates)
	customerLat, customerLng := latLng(o.CustomerCoordinates)
	var id string
	err := r.db.QueryRow(ctx, `
        INSERT INTO orders (
            id, status, pickup_code, delivery_code,
            store_address, store_lat, store_lng, address, customer_lat, customer_lng,
            customer_name, customer_phone, delivery_fee, created_at
        )
        VALUES ($1, 'offered', $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        ON CONFLICT (id) DO UPDATE
        SET store_address  = EXCLUDED.store_address,
            store_lat      = EXCLUDED.store_lat,
            store_lng      = EXCLUDED.store_lng,
            address        = EXCLUDED.address,
            customer_lat   = EXCLUDED.customer_lat,
            customer_lng   = EXCLUDED.customer_lng,
            customer_name  = EXCLUDED.customer_name,
            customer_phone = EXCLUDED.customer_phone,
            delivery_fee   = EXCLUDED.delivery_fee,
            updated_at     = now()
        WHERE orders.status = 'offered'
        RETURNING id
    `, o.ID, o.PickupCode, o.DeliveryCode,
		o.StoreAddress, storeLat, storeLng, o.Address, customerLat, customerLng,
		o.CustomerName, o.CustomerPhone, o.DeliveryFee, o.CreatedAt).Scan(&id)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("upsert offer %q: %w", o.ID, err)
	}
	return true, nil
}

// WithdrawOffer cancels an order that is still on offer.
func (r *OrderRepo) WithdrawOffer(ctx context.Context, orderID, reason string) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE orders
        SET status = 'cancelled', cancel_reason = $2, cancelled_at = now(), updated_at = now()
        WHERE id = $1 AND status = 'offered'
    `, orderID, reason)
	if err != nil {
		return false, fmt.Errorf("withdraw offer %q: %w", orderID, err)
	}
	return ct.RowsAffected() > 0, nil
}

// ListLogs returns the order's history, oldest first.
func (r *OrderRepo) ListLogs(ctx context.Context, orderID string) ([]domain.HistoryEntry, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, order_id, courier_id, action, details, at
        FROM order_logs
        WHERE order_id = $1
        ORDER BY at, id
    `, orderID)
	if err != nil {
		return nil, fmt.Errorf("list logs of %q: %w", orderID, err)
	}
	defer rows.Close()

	out := make([]domain.HistoryEntry, 0)
	for rows.Next() {
		var (
			e      domain.HistoryEntry
			action string
			raw    []byte
		)
		if err := rows.Scan(&e.ID, &e.OrderID, &e.CourierID, &action, &raw, &e.At); err != nil {
			return nil, err
		}
		e.Details, err = domain.DecodeHistoryDetails(domain.HistoryAction(action), raw)
		if err != nil {
			return nil, fmt.Errorf("decode log %s: %w", e.ID, err)
		}
		e.At = e.At.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *OrderRepo) query(ctx context.Context, q string, args ...any) ([]domain.DeliveryOrder, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DeliveryOrder, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}
