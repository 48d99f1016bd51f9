package courier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

// DefaultTimeout bounds a single repository call.
const DefaultTimeout = 3 * time.Second

// Service manages courier profiles. Busy is owned by the delivery lifecycle and cannot be set here.
type Service struct {
	repo             Repository
	logger           logx.Logger
	operationTimeout time.Duration
}

// NewService creates a courier Service.
func NewService(r Repository, logger logx.Logger, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{repo: r, logger: logger, operationTimeout: timeout}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, apperr.ErrInvalid)...)
}

func validateCreate(c *domain.Courier) error {
	if c == nil {
		return invalid("courier is required")
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return invalid("name is required")
	}
	if !domain.ValidatePhone(c.Phone) {
		return invalid("phone %q", c.Phone)
	}
	if c.Status == "" {
		c.Status = domain.StatusOffline
	}
	if !c.Status.Valid() || c.Status == domain.StatusBusy {
		return invalid("status %q", c.Status)
	}
	if c.TransportType == "" {
		c.TransportType = domain.TransportTypeFoot
	}
	if !c.TransportType.Valid() {
		return invalid("transport type %q", c.TransportType)
	}
	return nil
}

func validateUpdate(u *domain.PartialCourierUpdate) error {
	if u.ID <= 0 {
		return invalid("id must be positive")
	}
	if u.Name == nil && u.Phone == nil && u.Status == nil && u.TransportType == nil {
		return invalid("nothing to update")
	}
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return invalid("name is required")
		}
		u.Name = &name
	}
	if u.Phone != nil && !domain.ValidatePhone(*u.Phone) {
		return invalid("phone %q", *u.Phone)
	}
	if u.Status != nil && (!u.Status.Valid() || *u.Status == domain.StatusBusy) {
		return invalid("status %q", *u.Status)
	}
	if u.TransportType != nil && !u.TransportType.Valid() {
		return invalid("transport type %q", *u.TransportType)
	}
	return nil
}

// Get retrieves a courier by its ID.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Courier, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("courier %d: %w", id, apperr.ErrNotFound)
	}
	return c, nil
}

// List returns couriers with optional pagination.
func (s *Service) List(ctx context.Context, limit, offset *int) ([]domain.Courier, error) {
	if (limit != nil && *limit < 0) || (offset != nil && *offset < 0) {
		return nil, invalid("negative pagination")
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.List(ctx, limit, offset)
}

// Create persists a new courier and returns its generated ID.
func (s *Service) Create(ctx context.Context, c *domain.Courier) (int64, error) {
	if err := validateCreate(c); err != nil {
		return 0, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return 0, err
	}
	s.logger.Info("courier created", logx.Int64("courier_id", id), logx.String("status", string(c.Status)))
	return id, nil
}

// UpdatePartial applies a partial update to a courier.
func (s *Service) UpdatePartial(ctx context.Context, u domain.PartialCourierUpdate) error {
	if err := validateUpdate(&u); err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	ok, err := s.repo.UpdatePartial(ctx, u)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("courier %d: %w", u.ID, apperr.ErrNotFound)
	}
	return nil
}
