package handlers

import (
	"context"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/service/session"
)

type registryUsecase struct {
	reg *session.Registry
}

// NewSessionUsecase exposes a session Registry as a sessionUsecase.
func NewSessionUsecase(reg *session.Registry) sessionUsecase {
	return &registryUsecase{reg: reg}
}

func (u *registryUsecase) Start(ctx context.Context, courierID int64) (bool, error) {
	_, started, err := u.reg.Start(ctx, courierID)
	return started, err
}

func (u *registryUsecase) Stop(courierID int64) error {
	return u.reg.Stop(courierID)
}

func (u *registryUsecase) Pending(courierID int64) ([]domain.NotificationItem, error) {
	s, err := u.reg.Get(courierID)
	if err != nil {
		return nil, err
	}
	return s.Queue().List(), nil
}

func (u *registryUsecase) AcceptOffer(ctx context.Context, courierID int64, itemID string) error {
	s, err := u.reg.Get(courierID)
	if err != nil {
		return err
	}
	return s.Queue().Accept(ctx, itemID)
}

func (u *registryUsecase) RejectOffer(ctx context.Context, courierID int64, itemID, reason string) error {
	s, err := u.reg.Get(courierID)
	if err != nil {
		return err
	}
	return s.Queue().Reject(ctx, itemID, reason)
}

func (u *registryUsecase) ConfirmMessage(ctx context.Context, courierID int64, itemID string) error {
	s, err := u.reg.Get(courierID)
	if err != nil {
		return err
	}
	return s.Queue().Confirm(ctx, itemID)
}

func (u *registryUsecase) ApplyFixes(ctx context.Context, courierID int64, fixes []domain.Fix) error {
	s, err := u.reg.Get(courierID)
	if err != nil {
		return err
	}
	return s.Tracker().ApplyBatch(ctx, fixes)
}

func (u *registryUsecase) Trail(courierID int64) ([]domain.Coordinates, error) {
	s, err := u.reg.Get(courierID)
	if err != nil {
		return nil, err
	}
	return s.Tracker().Trail(), nil
}
