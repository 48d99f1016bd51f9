package app

import (
	"context"
	"errors"

	"go.uber.org/dig"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/config"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/repository"
	"courier-dispatch/internal/service/dispatch"
	"courier-dispatch/internal/transport/kafka"
)

// dispatchStore joins the order and message repositories into a dispatch.Store.
type dispatchStore struct {
	*repository.OrderRepo
	*repository.MessageRepo
}

func registerWorker(container *dig.Container) error {
	return provideAll(container,
		repository.NewOrderRepo,
		repository.NewMessageRepo,
		func(orders *repository.OrderRepo, messages *repository.MessageRepo) dispatch.Store {
			return dispatchStore{OrderRepo: orders, MessageRepo: messages}
		},
		dispatch.NewProcessor,
		makeDispatchHandler,
		newDispatchConsumer,
	)
}

// makeDispatchHandler marks events that will never succeed as permanent so the consumer skips them.
func makeDispatchHandler(p *dispatch.Processor) kafka.HandleFunc {
	return func(ctx context.Context, e dispatch.Event) error {
		err := p.Handle(ctx, e)
		if errors.Is(err, apperr.ErrInvalid) || errors.Is(err, apperr.ErrNotFound) {
			return kafka.Permanent(err)
		}
		return err
	}
}

func newDispatchConsumer(logger logx.Logger, cfg *config.Config, h kafka.HandleFunc) (*kafka.Consumer, error) {
	return kafka.NewConsumer(logger, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.DispatchTopic, h)
}
