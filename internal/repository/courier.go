package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

// CourierRepo represents courier repository.
type CourierRepo struct{ db *pgxpool.Pool }

// NewCourierRepo creates a new CourierRepo.
func NewCourierRepo(db *pgxpool.Pool) *CourierRepo { return &CourierRepo{db: db} }

// Get - returns courier by its ID.
func (r *CourierRepo) Get(ctx context.Context, id int64) (*domain.Courier, error) {
	c, err := scanCourier(r.db.QueryRow(ctx, `SELECT `+courierColumns+` FROM couriers WHERE id = $1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get courier %d: %w", id, err)
	}
	return c, nil
}

// GetCourier is Get under the name session and lifecycle callers use.
func (r *CourierRepo) GetCourier(ctx context.Context, id int64) (*domain.Courier, error) {
	return r.Get(ctx, id)
}

// List returns couriers ordered by id. If limit/offset are nil, returns the full list.
func (r *CourierRepo) List(ctx context.Context, limit, offset *int) ([]domain.Courier, error) {
	q := `SELECT ` + courierColumns + ` FROM couriers ORDER BY id`
	args := make([]any, 0, 2)
	if limit != nil {
		q += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, *limit)
	}
	if offset != nil {
		q += fmt.Sprintf(" OFFSET $%d", len(args)+1)
		args = append(args, *offset)
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	capacity := 0
	if limit != nil && *limit > 0 {
		capacity = *limit
	}
	out := make([]domain.Courier, 0, capacity)
	for rows.Next() {
		c, err := scanCourier(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Create - creates a new courier.
func (r *CourierRepo) Create(ctx context.Context, c *domain.Courier) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO couriers(name,phone,status,transport_type) VALUES($1,$2,$3,$4) RETURNING id`,
		c.Name, c.Phone, c.Status, c.TransportType).Scan(&id)
	if err != nil {
		if IsDuplicate(err) {
			return 0, apperr.ErrConflict
		}
		return 0, fmt.Errorf("create courier: %w", err)
	}
	return id, nil
}

// UpdatePartial applies a partial update to a courier and returns true if a row was affected.
// A status change is refused while the courier holds an active order.
func (r *CourierRepo) UpdatePartial(ctx context.Context, u domain.PartialCourierUpdate) (bool, error) {
	var status *string
	if u.Status != nil {
		s := string(*u.Status)
		status = &s
	}
	var transport *string
	if u.TransportType != nil {
		t := string(*u.TransportType)
		transport = &t
	}

	ct, err := r.db.Exec(ctx, `
        UPDATE couriers
        SET
            name           = COALESCE($2, name),
            phone          = COALESCE($3, phone),
            status         = COALESCE($4, status),
            transport_type = COALESCE($5, transport_type),
            updated_at     = now()
        WHERE id = $1
          AND ($4::text IS NULL OR current_order_id IS NULL)
    `, u.ID, u.Name, u.Phone, status, transport)
	if err != nil {
		if IsDuplicate(err) {
			return false, apperr.ErrConflict
		}
		return false, fmt.Errorf("update courier %d: %w", u.ID, err)
	}
	if ct.RowsAffected() > 0 {
		return true, nil
	}
	if u.Status == nil {
		return false, nil
	}
	c, err := r.Get(ctx, u.ID)
	if err != nil || c == nil {
		return false, err
	}
	return false, statusConflict(c)
}

// statusConflict explains a refused status change. The order may already be released by the
// time the courier is read back.
func statusConflict(c *domain.Courier) error {
	if c.CurrentOrderID == nil {
		return fmt.Errorf("courier %d changed concurrently: %w", c.ID, apperr.ErrConflict)
	}
	return fmt.Errorf("courier %d holds order %s: %w", c.ID, *c.CurrentOrderID, apperr.ErrConflict)
}

// UpdatePosition stores fix unless a newer one is already stored.
func (r *CourierRepo) UpdatePosition(ctx context.Context, courierID int64, fix domain.Fix) error {
	_, err := r.db.Exec(ctx, `
        UPDATE couriers
        SET last_lat = $2, last_lng = $3, last_fix_at = $4, updated_at = now()
        WHERE id = $1 AND (last_fix_at IS NULL OR last_fix_at <= $4)
    `, courierID, fix.Lat, fix.Lng, fix.At)
	if err != nil {
		return fmt.Errorf("update position of courier %d: %w", courierID, err)
	}
	return nil
}
