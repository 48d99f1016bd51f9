package route

import (
	"context"
	"fmt"
	"strings"
	"time"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

// Planner loads a courier's orders and computes the route through them.
type Planner struct {
	orders           orderReader
	resolver         *Resolver
	optimizer        *Optimizer
	operationTimeout time.Duration
}

// NewPlanner creates a Planner.
func NewPlanner(orders orderReader, resolver *Resolver, optimizer *Optimizer, timeout time.Duration) *Planner {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Planner{orders: orders, resolver: resolver, optimizer: optimizer, operationTimeout: timeout}
}

// Plan computes a route from start through the given orders. Every order must be either
// assigned to courierID or still on offer, and not finished.
func (p *Planner) Plan(ctx context.Context, courierID int64, start domain.Coordinates, orderIDs []string) (domain.RoutePlan, error) {
	ids, err := normalizeIDs(orderIDs)
	if err != nil {
		return domain.RoutePlan{}, err
	}
	if len(ids) == 0 {
		return domain.RoutePlan{}, apperr.ErrEmptyStopSet
	}

	ctx, cancel := context.WithTimeout(ctx, p.operationTimeout)
	defer cancel()

	found, err := p.orders.ListOrders(ctx, domain.OrderFilter{IDs: ids})
	if err != nil {
		return domain.RoutePlan{}, fmt.Errorf("plan route: list orders: %w", err)
	}
	byID := make(map[string]domain.DeliveryOrder, len(found))
	for _, o := range found {
		byID[o.ID] = o
	}

	// keep the caller's order so ties resolve the same way on every call
	orders := make([]domain.DeliveryOrder, 0, len(ids))
	for _, id := range ids {
		o, ok := byID[id]
		if !ok {
			return domain.RoutePlan{}, fmt.Errorf("plan route: order %q: %w", id, apperr.ErrNotFound)
		}
		if o.Status.Terminal() {
			return domain.RoutePlan{}, fmt.Errorf("plan route: order %q is %s: %w", id, o.Status, apperr.ErrInvalid)
		}
		if o.Status != domain.OrderOffered && (o.CourierID == nil || *o.CourierID != courierID) {
			return domain.RoutePlan{}, fmt.Errorf("plan route: order %q belongs to another courier: %w", id, apperr.ErrConflict)
		}
		orders = append(orders, o)
	}

	stops := p.resolver.Resolve(ctx, orders)
	return p.optimizer.Optimize(start, stops)
}

func normalizeIDs(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, id := range raw {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, apperr.ErrInvalid
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}
