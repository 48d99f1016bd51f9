package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/ports/dispatchtx"
)

// DispatchRepo runs lifecycle transactions over orders, couriers and the order log.
type DispatchRepo struct {
	db *pgxpool.Pool
}

// NewDispatchRepo creates a new DispatchRepo.
func NewDispatchRepo(db *pgxpool.Pool) *DispatchRepo {
	return &DispatchRepo{db: db}
}

// WithTx opens a transaction and executes fn within it.
func (r *DispatchRepo) WithTx(ctx context.Context, fn func(tx dispatchtx.Repository) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				panic(rbErr)
			}
			panic(p)
		}
	}()

	if err := fn(&TxRepo{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// TxRepo represents transaction repository.
type TxRepo struct {
	tx pgx.Tx
}

// GetOrderForUpdate locks and returns the order, or nil when it does not exist.
func (r *TxRepo) GetOrderForUpdate(ctx context.Context, id string) (*domain.DeliveryOrder, error) {
	o, err := scanOrder(r.tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %q for update: %w", id, err)
	}
	return o, nil
}

// UpdateOrder writes every mutable order field.
func (r *TxRepo) UpdateOrder(ctx context.Context, o *domain.DeliveryOrder) error {
	storeLat, storeLng := latLng(o.StoreCoordinates)
	customerLat, customerLng := latLng(o.CustomerCoordinates)
	ct, err := r.tx.Exec(ctx, `
        UPDATE orders
        SET status = $2, courier_id = $3,
            store_lat = $4, store_lng = $5, customer_lat = $6, customer_lng = $7,
            accepted_at = $8, picked_up_at = $9, delivered_at = $10, cancelled_at = $11,
            cancel_reason = $12, rejection_reason = $13, updated_at = now()
        WHERE id = $1
    `, o.ID, string(o.Status), o.CourierID,
		storeLat, storeLng, customerLat, customerLng,
		o.AcceptedAt, o.PickedUpAt, o.DeliveredAt, o.CancelledAt,
		o.CancelReason, o.RejectionReason)
	if err != nil {
		return fmt.Errorf("update order %q: %w", o.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("order %q not found", o.ID)
	}
	return nil
}

// GetCourierForUpdate locks and returns the courier, or nil when it does not exist.
func (r *TxRepo) GetCourierForUpdate(ctx context.Context, id int64) (*domain.Courier, error) {
	c, err := scanCourier(r.tx.QueryRow(ctx, `SELECT `+courierColumns+` FROM couriers WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get courier %d for update: %w", id, err)
	}
	return c, nil
}

// UpdateCourier writes the lifecycle-owned courier fields.
func (r *TxRepo) UpdateCourier(ctx context.Context, c *domain.Courier) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE couriers
        SET status = $2, current_order_id = $3,
            total_deliveries = $4, total_earnings = $5, updated_at = now()
        WHERE id = $1
    `, c.ID, string(c.Status), c.CurrentOrderID, c.TotalDeliveries, c.TotalEarnings)
	if err != nil {
		return fmt.Errorf("update courier %d: %w", c.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("courier %d not found", c.ID)
	}
	return nil
}

// CreateLog appends a history entry.
func (r *TxRepo) CreateLog(ctx context.Context, e domain.HistoryEntry) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return fmt.Errorf("encode log details: %w", err)
	}
	_, err = r.tx.Exec(ctx, `
        INSERT INTO order_logs (id, order_id, courier_id, action, details, at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, e.ID, e.OrderID, e.CourierID, string(e.Action()), details, e.At)
	if err != nil {
		return fmt.Errorf("insert order log: %w", err)
	}
	return nil
}

var _ dispatchtx.Runner = (*DispatchRepo)(nil)
