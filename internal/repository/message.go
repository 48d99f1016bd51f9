package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

// MessageRepo stores administrative messages.
type MessageRepo struct {
	db *pgxpool.Pool
}

// NewMessageRepo creates a new MessageRepo.
func NewMessageRepo(db *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{db: db}
}

// InsertMessage stores m. A duplicate id returns apperr.ErrConflict, an unknown courier apperr.ErrNotFound.
func (r *MessageRepo) InsertMessage(ctx context.Context, m *domain.AdminMessage) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO admin_messages (id, courier_id, title, body, priority, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, m.MessageID, m.CourierID, m.Title, m.Body, string(m.Priority), m.CreatedAt)
	switch {
	case err == nil:
		return nil
	case IsDuplicate(err):
		return apperr.ErrConflict
	case IsForeignKey(err):
		return fmt.Errorf("courier %d: %w", m.CourierID, apperr.ErrNotFound)
	default:
		return fmt.Errorf("insert message %q: %w", m.MessageID, err)
	}
}

// ListPendingMessages returns unconfirmed messages of courierID, oldest first.
func (r *MessageRepo) ListPendingMessages(ctx context.Context, courierID int64) ([]domain.AdminMessage, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, courier_id, title, body, priority, created_at
        FROM admin_messages
        WHERE courier_id = $1 AND acked_at IS NULL
        ORDER BY created_at, id
    `, courierID)
	if err != nil {
		return nil, fmt.Errorf("list messages of courier %d: %w", courierID, err)
	}
	defer rows.Close()

	out := make([]domain.AdminMessage, 0)
	for rows.Next() {
		var m domain.AdminMessage
		if err := rows.Scan(&m.MessageID, &m.CourierID, &m.Title, &m.Body, &m.Priority, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.CreatedAt = m.CreatedAt.UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

// AckMessage marks the message confirmed. Confirming twice is fine.
func (r *MessageRepo) AckMessage(ctx context.Context, messageID string, courierID int64) error {
	ct, err := r.db.Exec(ctx, `
        UPDATE admin_messages
        SET acked_at = COALESCE(acked_at, now())
        WHERE id = $1 AND courier_id = $2
    `, messageID, courierID)
	if err != nil {
		return fmt.Errorf("ack message %q: %w", messageID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("message %q: %w", messageID, apperr.ErrNotFound)
	}
	return nil
}
